// Package priority scores tickets by urgency and orders a dashboard.
//
// Scores are derived on read from a ticket's current fields and an
// evaluation instant; they are never stored.
package priority

import (
	"math"
	"sort"
	"time"

	"github.com/spec-kit/queuesmart/internal/domain"
)

const (
	criticalBonus   = 50
	highBonus       = 30
	housingBonus    = 10
	vulnerableBonus = 15

	// agingGrace is how old a ticket gets before it starts earning a point per hour.
	agingGrace = 24 * time.Hour
)

// ScoredTicket is a ticket with its transient priority score attached.
type ScoredTicket struct {
	domain.Ticket
	Score int
}

// Score returns the priority of t evaluated at now.
func Score(t domain.Ticket, now time.Time) int {
	score := 0

	switch t.Urgency {
	case domain.UrgencyCritical:
		score += criticalBonus
	case domain.UrgencyHigh:
		score += highBonus
	}

	if t.Category == domain.CategoryHousing {
		score += housingBonus
	}
	if t.CustomerVulnerable {
		score += vulnerableBonus
	}

	return score + AgeBonus(t.CreatedAt, now)
}

// AgeBonus is one point per full hour past the first day. A zero createdAt
// (missing or unparsable in the store) earns nothing.
func AgeBonus(createdAt, now time.Time) int {
	if createdAt.IsZero() {
		return 0
	}
	age := now.Sub(createdAt)
	if age <= agingGrace {
		return 0
	}
	return int(math.Floor((age - agingGrace).Hours()))
}

// Rank scores every ticket and orders them by descending score. Equal scores
// keep their input order.
func Rank(tickets []domain.Ticket, now time.Time) []ScoredTicket {
	scored := make([]ScoredTicket, len(tickets))
	for i, t := range tickets {
		scored[i] = ScoredTicket{Ticket: t, Score: Score(t, now)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

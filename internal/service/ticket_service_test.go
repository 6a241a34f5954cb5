package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/events"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

func TestTicketRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.customer(t, "Jane Roe", false)

	created := env.ticket(t, c.ID, domain.CategoryBenefits, domain.UrgencyMedium, nil)
	got, err := env.tickets.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Category != domain.CategoryBenefits || got.Urgency != domain.UrgencyMedium ||
		got.Description != "needs help with a form" || got.CustomerID != c.ID {
		t.Fatalf("got %+v", got)
	}
	if got.Status != domain.TicketStatusOpen || got.ClosedAt != nil {
		t.Fatalf("status = %s closed_at = %v", got.Status, got.ClosedAt)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, t0)
	}
}

func TestVulnerableHousingCriticalScoresSeventyFive(t *testing.T) {
	env := newTestEnv(t)
	c := env.customer(t, "John Doe", true)
	tk := env.ticket(t, c.ID, domain.CategoryHousing, domain.UrgencyCritical, nil)

	board, err := env.tickets.Dashboard(context.Background(), DashboardFilter{})
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(board) != 1 || board[0].ID != tk.ID {
		t.Fatalf("board = %+v", board)
	}
	if board[0].Score != 75 {
		t.Fatalf("score = %d, want 75", board[0].Score)
	}
}

func TestCreateTicketForMissingCustomer(t *testing.T) {
	env := newTestEnv(t)
	manager := env.member(t, "manager", domain.StaffRoleManager)

	_, err := env.tickets.Create(context.Background(), TicketCreateInput{
		CustomerID:  404,
		Category:    domain.CategoryOther,
		Description: "lost",
		Urgency:     domain.UrgencyLow,
	}, &manager.ID)
	wantCode(t, err, apperrors.CodeNotFound)
	if n := env.auditCount(t); n != 0 {
		t.Fatalf("failed create left %d audit entries", n)
	}
}

func TestCreateTicketValidatesBeforeStore(t *testing.T) {
	// A nil store panics on any access.
	tickets := NewTicketService(Dependencies{})

	_, err := tickets.Create(context.Background(), TicketCreateInput{
		CustomerID: 1,
		Category:   "Legal",
		Urgency:    domain.UrgencyLow,
	}, nil)
	wantCode(t, err, apperrors.CodeValidation)
	details := apperrors.ToDomainError(err).Details
	for _, field := range []string{"category", "description"} {
		if _, ok := details[field]; !ok {
			t.Errorf("details missing %q: %v", field, details)
		}
	}
}

func TestTicketCloseAndReopen(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.customer(t, "Jane Roe", false)
	tk := env.ticket(t, c.ID, domain.CategoryWellbeing, domain.UrgencyHigh, nil)

	env.clock.Advance(3 * time.Hour)
	ok, err := env.tickets.Update(ctx, tk.ID, domain.TicketUpdate{
		Status:     ptr(domain.TicketStatusClosed),
		Resolution: ptr(domain.ResolutionResolved),
	}, nil)
	if err != nil || !ok {
		t.Fatalf("close: ok=%v err=%v", ok, err)
	}
	closed, _ := env.tickets.Get(ctx, tk.ID)
	if closed.ClosedAt == nil || !closed.ClosedAt.Equal(t0.Add(3*time.Hour)) {
		t.Fatalf("closed_at = %v", closed.ClosedAt)
	}
	if closed.Resolution == nil || *closed.Resolution != domain.ResolutionResolved {
		t.Fatalf("resolution = %v", closed.Resolution)
	}

	env.clock.Advance(time.Hour)
	if ok, err := env.tickets.Update(ctx, tk.ID, domain.TicketUpdate{Status: ptr(domain.TicketStatusClosed)}, nil); err != nil || !ok {
		t.Fatalf("close again: ok=%v err=%v", ok, err)
	}
	again, _ := env.tickets.Get(ctx, tk.ID)
	if again.ClosedAt == nil || !again.ClosedAt.Equal(t0.Add(3*time.Hour)) {
		t.Fatalf("closing a closed ticket moved closed_at to %v", again.ClosedAt)
	}

	if ok, err := env.tickets.Update(ctx, tk.ID, domain.TicketUpdate{Status: ptr(domain.TicketStatusOpen)}, nil); err != nil || !ok {
		t.Fatalf("reopen: ok=%v err=%v", ok, err)
	}
	reopened, _ := env.tickets.Get(ctx, tk.ID)
	if reopened.Status != domain.TicketStatusOpen || reopened.ClosedAt != nil {
		t.Fatalf("reopened = %s closed_at=%v", reopened.Status, reopened.ClosedAt)
	}
}

func TestTicketUpdateOutcomes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.customer(t, "Jane Roe", false)
	tk := env.ticket(t, c.ID, domain.CategoryOther, domain.UrgencyLow, nil)
	if ok, err := env.tickets.Update(ctx, tk.ID, domain.TicketUpdate{Status: ptr(domain.TicketStatusInProgress)}, nil); err != nil || !ok {
		t.Fatalf("start: ok=%v err=%v", ok, err)
	}

	tests := []struct {
		name     string
		id       int64
		update   domain.TicketUpdate
		wantOK   bool
		wantCode string
	}{
		{name: "empty update", id: tk.ID, update: domain.TicketUpdate{}},
		{name: "missing ticket", id: 9999, update: domain.TicketUpdate{Status: ptr(domain.TicketStatusWaiting)}},
		{name: "in progress back to open", id: tk.ID, update: domain.TicketUpdate{Status: ptr(domain.TicketStatusOpen)}, wantOK: true},
		{name: "unknown status", id: tk.ID, update: domain.TicketUpdate{Status: ptr(domain.TicketStatus("Pending"))}, wantCode: apperrors.CodeValidation},
		{name: "unknown assignee", id: tk.ID, update: domain.TicketUpdate{AssignedStaffID: ptr(int64(77))}, wantCode: apperrors.CodeNotFound},
		{name: "same status", id: tk.ID, update: domain.TicketUpdate{Status: ptr(domain.TicketStatusOpen)}, wantOK: true},
		{name: "to waiting", id: tk.ID, update: domain.TicketUpdate{Status: ptr(domain.TicketStatusWaiting)}, wantOK: true},
		{name: "waiting back to open", id: tk.ID, update: domain.TicketUpdate{Status: ptr(domain.TicketStatusOpen)}, wantOK: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := env.tickets.Update(ctx, tc.id, tc.update, nil)
			if tc.wantCode != "" {
				wantCode(t, err, tc.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
		})
	}
}

func TestDashboardOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	vulnerable := env.customer(t, "Vee", true)
	plain := env.customer(t, "Pat", false)

	env.clock.Advance(-30 * time.Hour)
	old := env.ticket(t, plain.ID, domain.CategoryHousing, domain.UrgencyLow, nil) // 10 + 6
	env.clock.Advance(30 * time.Hour)
	critical := env.ticket(t, vulnerable.ID, domain.CategoryOther, domain.UrgencyCritical, nil) // 65
	high := env.ticket(t, plain.ID, domain.CategoryOther, domain.UrgencyHigh, nil)              // 30
	tie := env.ticket(t, plain.ID, domain.CategoryBenefits, domain.UrgencyHigh, nil)            // 30
	closed := env.ticket(t, plain.ID, domain.CategoryOther, domain.UrgencyCritical, nil)
	if _, err := env.tickets.Update(ctx, closed.ID, domain.TicketUpdate{Status: ptr(domain.TicketStatusClosed)}, nil); err != nil {
		t.Fatalf("close: %v", err)
	}

	board, err := env.tickets.Dashboard(ctx, DashboardFilter{})
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	wantIDs := []int64{critical.ID, high.ID, tie.ID, old.ID}
	wantScores := []int{65, 30, 30, 16}
	if len(board) != len(wantIDs) {
		t.Fatalf("board has %d tickets, want %d", len(board), len(wantIDs))
	}
	for i := range wantIDs {
		if board[i].ID != wantIDs[i] || board[i].Score != wantScores[i] {
			t.Errorf("board[%d] = #%d score %d, want #%d score %d", i, board[i].ID, board[i].Score, wantIDs[i], wantScores[i])
		}
	}

	withClosed, err := env.tickets.Dashboard(ctx, DashboardFilter{IncludeClosed: true})
	if err != nil || len(withClosed) != 5 {
		t.Fatalf("IncludeClosed: %d tickets, err %v", len(withClosed), err)
	}
	onlyClosed, err := env.tickets.Dashboard(ctx, DashboardFilter{Statuses: []domain.TicketStatus{domain.TicketStatusClosed}})
	if err != nil || len(onlyClosed) != 1 || onlyClosed[0].ID != closed.ID {
		t.Fatalf("closed filter = %+v, err %v", onlyClosed, err)
	}
	housing := domain.CategoryHousing
	onlyHousing, err := env.tickets.Dashboard(ctx, DashboardFilter{Category: &housing})
	if err != nil || len(onlyHousing) != 1 || onlyHousing[0].ID != old.ID {
		t.Fatalf("housing filter = %+v, err %v", onlyHousing, err)
	}
	if _, err := env.tickets.Dashboard(ctx, DashboardFilter{Statuses: []domain.TicketStatus{"Pending"}}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("bad status filter err = %v", err)
	}
}

func TestTicketSearch(t *testing.T) {
	env := newTestEnv(t)
	doe := env.customer(t, "John Doe", false)
	roe := env.customer(t, "Jane Roe", false)
	env.ticket(t, doe.ID, domain.CategoryOther, domain.UrgencyLow, nil)
	env.ticket(t, roe.ID, domain.CategoryOther, domain.UrgencyLow, nil)

	tests := []struct {
		term string
		want int
	}{
		{"doe", 1},
		{"FORM", 2},
		{"", 2},
		{"nothing", 0},
	}
	for _, tc := range tests {
		got, err := env.tickets.Search(context.Background(), tc.term)
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.term, err)
		}
		if len(got) != tc.want {
			t.Errorf("Search(%q) = %d tickets, want %d", tc.term, len(got), tc.want)
		}
	}
}

func TestAttributedMutationsAreAudited(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	staff := env.member(t, "amira", domain.StaffRoleStaff)
	c := env.customer(t, "Jane Roe", false)

	tk := env.ticket(t, c.ID, domain.CategoryOther, domain.UrgencyLow, &staff.ID)
	if _, err := env.tickets.Update(ctx, tk.ID, domain.TicketUpdate{Status: ptr(domain.TicketStatusWaiting)}, &staff.ID); err != nil {
		t.Fatalf("Update: %v", err)
	}
	entries, err := env.audit.List(ctx, AuditQuery{StaffID: &staff.ID})
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(entries))
	}
	if entries[0].Action != domain.ActionUpdateTicket || entries[1].Action != domain.ActionCreateTicket {
		t.Fatalf("actions = %s, %s", entries[0].Action, entries[1].Action)
	}

	ghost := int64(999)
	_, err = env.tickets.Create(ctx, TicketCreateInput{
		CustomerID:  c.ID,
		Category:    domain.CategoryOther,
		Description: "ghost",
		Urgency:     domain.UrgencyLow,
	}, &ghost)
	wantCode(t, err, apperrors.CodeValidation)
	all, _ := env.tickets.Search(ctx, "")
	if len(all) != 1 {
		t.Fatalf("ticket survived a failed audit write: %d tickets", len(all))
	}
}

func TestTicketEventsPublishedAfterCommit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.customer(t, "Jane Roe", false)
	tk := env.ticket(t, c.ID, domain.CategoryOther, domain.UrgencyLow, nil)
	if _, err := env.tickets.Update(ctx, tk.ID, domain.TicketUpdate{Status: ptr(domain.TicketStatus("Bogus"))}, nil); err == nil {
		t.Fatal("bogus status accepted")
	}
	if err := env.tickets.Delete(ctx, tk.ID, nil); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got := env.events.types()
	want := []events.EventType{events.EventCustomerCreated, events.EventTicketCreated, events.EventTicketDeleted}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestAssignmentWorkload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	staff := env.member(t, "amira", domain.StaffRoleStaff)
	c := env.customer(t, "Jane Roe", true)
	low := env.ticket(t, c.ID, domain.CategoryOther, domain.UrgencyLow, nil)
	crit := env.ticket(t, c.ID, domain.CategoryOther, domain.UrgencyCritical, nil)

	for _, id := range []int64{low.ID, crit.ID} {
		assigned, err := env.assignments.Assign(ctx, id, staff.ID, nil)
		if err != nil {
			t.Fatalf("Assign(%d): %v", id, err)
		}
		if assigned.AssignedStaffID == nil || *assigned.AssignedStaffID != staff.ID {
			t.Fatalf("assignee = %v", assigned.AssignedStaffID)
		}
	}
	load, err := env.assignments.Workload(ctx, staff.ID)
	if err != nil {
		t.Fatalf("Workload: %v", err)
	}
	if len(load) != 2 || load[0].ID != crit.ID {
		t.Fatalf("workload = %+v", load)
	}

	if _, err := env.assignments.Unassign(ctx, crit.ID, nil); err != nil {
		t.Fatalf("Unassign: %v", err)
	}
	load, _ = env.assignments.Workload(ctx, staff.ID)
	if len(load) != 1 || load[0].ID != low.ID {
		t.Fatalf("workload after unassign = %+v", load)
	}
	_, err = env.assignments.Assign(ctx, 9999, staff.ID, nil)
	wantCode(t, err, apperrors.CodeNotFound)
}

func TestConcurrentStatusUpdatesApplyInTurn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	actor := env.member(t, "rowan", domain.StaffRoleStaff)
	c := env.customer(t, "Jane Roe", false)
	tk := env.ticket(t, c.ID, domain.CategoryBenefits, domain.UrgencyMedium, nil)

	targets := []domain.TicketStatus{
		domain.TicketStatusInProgress,
		domain.TicketStatusWaiting,
		domain.TicketStatusClosed,
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusWaiting,
	}
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]error, len(targets))
	)
	for i, status := range targets {
		wg.Add(1)
		go func(i int, status domain.TicketStatus) {
			defer wg.Done()
			<-start
			ok, err := env.tickets.Update(ctx, tk.ID, domain.TicketUpdate{Status: &status}, &actor.ID)
			if err == nil && !ok {
				err = fmt.Errorf("update to %s reported no change", status)
			}
			results[i] = err
		}(i, status)
	}
	close(start)
	wg.Wait()
	for _, err := range results {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	entries, err := env.audit.List(ctx, AuditQuery{StaffID: &actor.ID})
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(entries) != len(targets) {
		t.Fatalf("%d audit entries, want %d", len(entries), len(targets))
	}
	// Entries come newest first; walk them oldest first and check that each
	// update started from the status the previous one left behind.
	from := domain.TicketStatusOpen
	for i := len(entries) - 1; i >= 0; i-- {
		_, transition, found := strings.Cut(entries[i].Detail, "status ")
		if !found {
			t.Fatalf("detail %q has no status change", entries[i].Detail)
		}
		prev, next, _ := strings.Cut(transition, " -> ")
		if domain.TicketStatus(prev) != from {
			t.Fatalf("entry %q starts from %q, want %q", entries[i].Detail, prev, from)
		}
		from = domain.TicketStatus(next)
	}

	final, err := env.tickets.Get(ctx, tk.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != from {
		t.Fatalf("final status %q, want %q from the last audited change", final.Status, from)
	}
}

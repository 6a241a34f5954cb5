package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

var t0 = time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T, lockTimeout time.Duration) *Store {
	t.Helper()
	store, err := Open(context.Background(), Config{
		Path:        filepath.Join(t.TempDir(), "queuesmart.db"),
		PoolSize:    4,
		LockTimeout: lockTimeout,
	}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCustomer(t *testing.T, s repository.Store, name string, vulnerable bool) *domain.Customer {
	t.Helper()
	c := &domain.Customer{Name: name, PreferredContact: domain.ContactPhone, Vulnerable: vulnerable, CreatedAt: t0}
	if err := s.Customers().Create(context.Background(), c); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return c
}

func mustStaff(t *testing.T, s repository.Store, username string) *domain.StaffAccount {
	t.Helper()
	st := &domain.StaffAccount{Username: username, PasswordHash: "x", Role: domain.StaffRoleStaff, CreatedAt: t0}
	if err := s.Staff().Create(context.Background(), st); err != nil {
		t.Fatalf("create staff: %v", err)
	}
	return st
}

func mustTicket(t *testing.T, s repository.Store, customerID int64, category domain.TicketCategory, created time.Time) *domain.Ticket {
	t.Helper()
	tk := &domain.Ticket{
		CustomerID:  customerID,
		Category:    category,
		Description: "needs help",
		Urgency:     domain.UrgencyLow,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   created,
	}
	if err := s.Tickets().Create(context.Background(), tk); err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return tk
}

func TestCustomerRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Second)

	in := &domain.Customer{
		Name:             "Jane Roe",
		Phone:            "07700 900123",
		Email:            "jane@example.org",
		PreferredContact: domain.ContactEmail,
		Vulnerable:       true,
		CreatedAt:        t0.Add(500 * time.Millisecond),
	}
	if err := s.Customers().Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if in.ID == 0 {
		t.Fatal("Create did not assign an id")
	}

	got, err := s.Customers().GetByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != in.Name || got.Phone != in.Phone || got.Email != in.Email ||
		got.PreferredContact != in.PreferredContact || !got.Vulnerable {
		t.Errorf("round trip = %+v, want %+v", got, in)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v truncated to the second", got.CreatedAt, t0)
	}

	got.Vulnerable = false
	got.Phone = "0161 496 0000"
	if err := s.Customers().Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, _ := s.Customers().GetByID(ctx, in.ID)
	if again.Vulnerable || again.Phone != "0161 496 0000" {
		t.Errorf("after update = %+v", again)
	}

	if _, err := s.Customers().GetByID(ctx, 999); !apperrors.IsNotFound(err) {
		t.Errorf("missing customer err = %v, want NOT_FOUND", err)
	}
	if err := s.Customers().Update(ctx, &domain.Customer{ID: 999, Name: "x"}); !apperrors.IsNotFound(err) {
		t.Errorf("update missing err = %v, want NOT_FOUND", err)
	}
}

func TestIDsIncrease(t *testing.T) {
	s := openTestStore(t, time.Second)
	a := mustCustomer(t, s, "A", false)
	b := mustCustomer(t, s, "B", false)
	if b.ID <= a.ID {
		t.Fatalf("ids %d then %d are not increasing", a.ID, b.ID)
	}
}

func TestCustomerSearch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Second)

	for _, c := range []*domain.Customer{
		{Name: "John Doe", Phone: "555-0100", Email: "jd@example.com"},
		{Name: "Mary Major", Phone: "555-0199", Email: "mary@doe.org"},
		{Name: "Richard 100% Roe", Phone: "", Email: ""},
		{Name: "Élise Müller", Phone: "555-0142", Email: "elise@example.com"},
	} {
		c.PreferredContact = domain.ContactPhone
		c.CreatedAt = t0
		if err := s.Customers().Create(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		term string
		want []string
	}{
		{"doe", []string{"John Doe", "Mary Major"}},
		{"DOE", []string{"John Doe", "Mary Major"}},
		{"0199", []string{"Mary Major"}},
		{"%", []string{"Richard 100% Roe"}},
		{"nobody", nil},
		{"élise", []string{"Élise Müller"}},
		{"ÉLISE", []string{"Élise Müller"}},
		{"MÜLLER", []string{"Élise Müller"}},
	}
	for _, tt := range tests {
		got, err := s.Customers().Search(ctx, tt.term)
		if err != nil {
			t.Fatalf("Search(%q): %v", tt.term, err)
		}
		var names []string
		for _, c := range got {
			names = append(names, c.Name)
		}
		if len(names) != len(tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.term, names, tt.want)
			continue
		}
		for i := range names {
			if names[i] != tt.want[i] {
				t.Errorf("Search(%q)[%d] = %q, want %q", tt.term, i, names[i], tt.want[i])
			}
		}
	}
}

func TestTicketJoinAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Second)
	c := mustCustomer(t, s, "John Doe", true)
	st := mustStaff(t, s, "alice")
	tk := mustTicket(t, s, c.ID, domain.CategoryHousing, t0)

	got, err := s.Tickets().GetByID(ctx, tk.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CustomerName != "John Doe" || !got.CustomerVulnerable {
		t.Errorf("joined fields = %q/%v", got.CustomerName, got.CustomerVulnerable)
	}
	if got.ClosedAt != nil || got.AssignedStaffID != nil || got.Resolution != nil {
		t.Errorf("optional fields set on a new ticket: %+v", got)
	}

	closedAt := t0.Add(3 * time.Hour)
	resolution := domain.ResolutionResolved
	got.Status = domain.TicketStatusClosed
	got.ClosedAt = &closedAt
	got.AssignedStaffID = &st.ID
	got.Resolution = &resolution
	if err := s.Tickets().Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	closed, _ := s.Tickets().GetByID(ctx, tk.ID)
	if closed.Status != domain.TicketStatusClosed || closed.ClosedAt == nil || !closed.ClosedAt.Equal(closedAt) {
		t.Errorf("closed ticket = %+v", closed)
	}
	if closed.AssignedStaffID == nil || *closed.AssignedStaffID != st.ID {
		t.Errorf("assignee = %v", closed.AssignedStaffID)
	}
	if closed.Resolution == nil || *closed.Resolution != domain.ResolutionResolved {
		t.Errorf("resolution = %v", closed.Resolution)
	}

	if n, _ := s.Tickets().CountForStaff(ctx, st.ID); n != 1 {
		t.Errorf("CountForStaff = %d", n)
	}
	if n, _ := s.Tickets().CountForCustomer(ctx, c.ID); n != 1 {
		t.Errorf("CountForCustomer = %d", n)
	}
}

func TestTicketListAndSearch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Second)
	john := mustCustomer(t, s, "John Doe", false)
	mary := mustCustomer(t, s, "Mary Major", false)

	a := mustTicket(t, s, john.ID, domain.CategoryHousing, t0)
	b := mustTicket(t, s, mary.ID, domain.CategoryBenefits, t0)
	c := mustTicket(t, s, mary.ID, domain.CategoryHousing, t0)

	closedAt := t0.Add(time.Hour)
	c.Status = domain.TicketStatusClosed
	c.ClosedAt = &closedAt
	if err := s.Tickets().Update(ctx, c); err != nil {
		t.Fatalf("close: %v", err)
	}

	housing := domain.CategoryHousing
	tests := []struct {
		name   string
		filter repository.TicketFilter
		want   []int64
	}{
		{"all", repository.TicketFilter{}, []int64{a.ID, b.ID, c.ID}},
		{"open only", repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusOpen}}, []int64{a.ID, b.ID}},
		{"housing", repository.TicketFilter{Category: &housing}, []int64{a.ID, c.ID}},
		{"mary", repository.TicketFilter{CustomerID: &mary.ID}, []int64{b.ID, c.ID}},
		{"mary housing open", repository.TicketFilter{
			CustomerID: &mary.ID,
			Category:   &housing,
			Statuses:   []domain.TicketStatus{domain.TicketStatusOpen},
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Tickets().List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List = %d tickets, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("List[%d] = %d, want %d", i, got[i].ID, tt.want[i])
				}
			}
		})
	}

	byName, err := s.Tickets().Search(ctx, "major")
	if err != nil || len(byName) != 2 {
		t.Fatalf("Search by customer name = %d tickets, err %v", len(byName), err)
	}
	byDesc, _ := s.Tickets().Search(ctx, "NEEDS")
	if len(byDesc) != 3 {
		t.Errorf("Search by description = %d tickets, want 3", len(byDesc))
	}

	elise := mustCustomer(t, s, "Élise Müller", false)
	d := mustTicket(t, s, elise.ID, domain.CategoryOther, t0)
	byAccent, err := s.Tickets().Search(ctx, "élise")
	if err != nil || len(byAccent) != 1 || byAccent[0].ID != d.ID {
		t.Errorf("Search(élise) = %v, err %v, want ticket %d", byAccent, err, d.ID)
	}
}

func TestForeignKeysAndUniqueness(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Second)
	c := mustCustomer(t, s, "John Doe", false)
	mustTicket(t, s, c.ID, domain.CategoryOther, t0)
	mustStaff(t, s, "alice")

	err := s.Tickets().Create(ctx, &domain.Ticket{
		CustomerID: 999, Category: domain.CategoryOther, Description: "x",
		Urgency: domain.UrgencyLow, Status: domain.TicketStatusOpen, CreatedAt: t0,
	})
	if !apperrors.HasCode(err, apperrors.CodeReferentialConflict) {
		t.Errorf("ticket for missing customer err = %v", err)
	}

	if err := s.Customers().Delete(ctx, c.ID); !apperrors.HasCode(err, apperrors.CodeReferentialConflict) {
		t.Errorf("delete referenced customer err = %v", err)
	}

	err = s.Staff().Create(ctx, &domain.StaffAccount{Username: "alice", PasswordHash: "y", Role: domain.StaffRoleManager, CreatedAt: t0})
	if !apperrors.HasCode(err, apperrors.CodeUniquenessConflict) {
		t.Errorf("duplicate username err = %v", err)
	}
}

func TestAppointmentsOrderedByStart(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Second)
	c := mustCustomer(t, s, "John Doe", false)
	st := mustStaff(t, s, "alice")

	for _, offset := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		appt := &domain.Appointment{CustomerID: c.ID, StaffID: st.ID, Start: t0.Add(offset), DurationMinutes: 30, Reason: "review"}
		if err := s.Appointments().Create(ctx, appt); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := s.Appointments().ListByStaff(ctx, st.ID)
	if err != nil {
		t.Fatalf("ListByStaff: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if !list[i-1].Start.Before(list[i].Start) {
			t.Errorf("appointments not ordered: %v then %v", list[i-1].Start, list[i].Start)
		}
	}
	if list[0].CustomerName != "John Doe" {
		t.Errorf("CustomerName = %q", list[0].CustomerName)
	}

	moved := list[0]
	moved.Start = t0.Add(5 * time.Hour)
	if err := s.Appointments().Update(ctx, &moved); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Appointments().GetByID(ctx, moved.ID)
	if !got.Start.Equal(moved.Start) {
		t.Errorf("Start = %v, want %v", got.Start, moved.Start)
	}

	if err := s.Appointments().Delete(ctx, moved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := s.Appointments().CountForStaff(ctx, st.ID); n != 2 {
		t.Errorf("CountForStaff = %d after delete", n)
	}
	if err := s.Appointments().Delete(ctx, moved.ID); !apperrors.IsNotFound(err) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestWithinTxRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Second)
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		c := &domain.Customer{Name: "Ghost", PreferredContact: domain.ContactPost, CreatedAt: t0}
		if err := tx.Customers().Create(ctx, c); err != nil {
			return err
		}
		if err := tx.Audit().Append(ctx, &domain.AuditEntry{StaffID: 1, Action: domain.ActionCreateCustomer, CreatedAt: t0}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx err = %v, want boom", err)
	}

	customers, _ := s.Customers().List(ctx)
	entries, _ := s.Audit().List(ctx, repository.AuditFilter{})
	if len(customers) != 0 || len(entries) != 0 {
		t.Fatalf("rolled back tx left %d customers and %d audit entries", len(customers), len(entries))
	}
}

func TestWithinTxNestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Second)

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.WithinTx(ctx, func(inner repository.Store) error {
			return inner.Customers().Create(ctx, &domain.Customer{Name: "Inner", PreferredContact: domain.ContactPost, CreatedAt: t0})
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})
	if err == nil {
		t.Fatal("expected outer error")
	}
	if customers, _ := s.Customers().List(ctx); len(customers) != 0 {
		t.Fatal("inner write survived the outer rollback")
	}
}

func TestWriterTimesOutWhileLockHeld(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, 100*time.Millisecond)

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.WithinTx(ctx, func(tx repository.Store) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Customers().Create(ctx, &domain.Customer{Name: "Late", PreferredContact: domain.ContactPost, CreatedAt: t0})
	})
	close(release)

	if !apperrors.IsRetryable(err) {
		t.Fatalf("blocked writer err = %v, want retryable STORE_UNAVAILABLE", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("lock holder: %v", err)
	}
}

func TestAuditListFilters(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Second)

	for i, staffID := range []int64{1, 2, 1, 1} {
		entry := &domain.AuditEntry{
			StaffID:   staffID,
			Action:    domain.ActionUpdateTicket,
			Detail:    "ticket",
			CreatedAt: t0.Add(time.Duration(i) * time.Hour),
		}
		if err := s.Audit().Append(ctx, entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	one := int64(1)
	from := t0.Add(time.Hour)
	to := t0.Add(3 * time.Hour)
	tests := []struct {
		name   string
		filter repository.AuditFilter
		want   int
	}{
		{"all", repository.AuditFilter{}, 4},
		{"staff 1", repository.AuditFilter{StaffID: &one}, 3},
		{"range", repository.AuditFilter{From: &from, To: &to}, 2},
		{"staff 1 in range", repository.AuditFilter{StaffID: &one, From: &from, To: &to}, 1},
		{"limited", repository.AuditFilter{Limit: 2}, 2},
	}
	for _, tt := range tests {
		got, err := s.Audit().List(ctx, tt.filter)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s: %d entries, want %d", tt.name, len(got), tt.want)
		}
	}

	all, _ := s.Audit().List(ctx, repository.AuditFilter{})
	if !all[0].CreatedAt.After(all[len(all)-1].CreatedAt) {
		t.Error("audit entries not newest first")
	}
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Second)
	c := mustCustomer(t, s, "John Doe", false)
	st := mustStaff(t, s, "alice")

	// 2025-01-06 is the first Monday of 2025, so it starts week 01.
	h1 := mustTicket(t, s, c.ID, domain.CategoryHousing, t0)
	h2 := mustTicket(t, s, c.ID, domain.CategoryHousing, t0)
	mustTicket(t, s, c.ID, domain.CategoryBenefits, time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC))

	for _, closing := range []struct {
		ticket *domain.Ticket
		after  time.Duration
	}{{h1, 3*time.Hour + 30*time.Minute}, {h2, 24 * time.Hour}} {
		at := closing.ticket.CreatedAt.Add(closing.after)
		closing.ticket.Status = domain.TicketStatusClosed
		closing.ticket.ClosedAt = &at
		if err := s.Tickets().Update(ctx, closing.ticket); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	weekly, err := s.Reports().WeeklyCategoryCounts(ctx)
	if err != nil {
		t.Fatalf("WeeklyCategoryCounts: %v", err)
	}
	wantWeekly := []domain.WeeklyCategoryCount{
		{Week: "2025-01", Category: domain.CategoryHousing, Count: 2},
		{Week: "2025-00", Category: domain.CategoryBenefits, Count: 1},
	}
	if len(weekly) != len(wantWeekly) {
		t.Fatalf("weekly = %+v", weekly)
	}
	for i := range weekly {
		if weekly[i] != wantWeekly[i] {
			t.Errorf("weekly[%d] = %+v, want %+v", i, weekly[i], wantWeekly[i])
		}
	}

	avg, err := s.Reports().AverageCloseTimes(ctx)
	if err != nil {
		t.Fatalf("AverageCloseTimes: %v", err)
	}
	if len(avg) != 1 || avg[0].Category != domain.CategoryHousing || avg[0].AvgHours != 13.75 {
		t.Errorf("avg = %+v, want Housing 13.75", avg)
	}

	day := func(d int) time.Time { return time.Date(2025, 2, d, 9, 0, 0, 0, time.UTC) }
	for _, start := range []time.Time{day(3), day(3).Add(time.Hour), day(4), day(5)} {
		appt := &domain.Appointment{CustomerID: c.ID, StaffID: st.ID, Start: start, DurationMinutes: 30}
		if err := s.Appointments().Create(ctx, appt); err != nil {
			t.Fatalf("appointment: %v", err)
		}
	}
	busiest, err := s.Reports().BusiestDates(ctx, 2)
	if err != nil {
		t.Fatalf("BusiestDates: %v", err)
	}
	want := []domain.DateCount{{Date: "2025-02-03", Count: 2}, {Date: "2025-02-04", Count: 1}}
	if len(busiest) != 2 || busiest[0] != want[0] || busiest[1] != want[1] {
		t.Errorf("busiest = %+v, want %+v", busiest, want)
	}
	if all, _ := s.Reports().BusiestDates(ctx, 0); len(all) != 3 {
		t.Errorf("default limit returned %d dates", len(all))
	}
}

func TestParseTimeTolerance(t *testing.T) {
	if got := parseTime("not a time"); !got.IsZero() {
		t.Errorf("parseTime(garbage) = %v, want zero", got)
	}
	if got := parseTime(formatTime(t0)); !got.Equal(t0) {
		t.Errorf("parseTime(formatTime) = %v", got)
	}
}

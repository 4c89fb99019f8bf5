package booking

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/zayas4k/barberbook/internal/model"
	"github.com/zayas4k/barberbook/internal/schedule"
	"github.com/zayas4k/barberbook/internal/storage"
)

// 2026-03-10 is a Tuesday; the pinned clock sits the day before so every
// slot on it is bookable.
var (
	testDay   = "2026-03-10"
	testClock = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, model.DefaultCatalog(), schedule.Default(time.UTC), nil, logger)
	svc.WithClock(func() time.Time { return testClock })
	return svc, store
}

func validRequest() CreateRequest {
	return CreateRequest{
		Name:    "Ana Rivera",
		Email:   "ana@example.com",
		Phone:   "787-555-0123",
		Service: "Corte clásico",
		Date:    testDay,
		Time:    "14:00",
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	if created.DurationMinutes != 45 || created.Price != 25 {
		t.Fatalf("catalog fields not copied: %+v", created)
	}
	if created.Created.IsZero() {
		t.Fatal("expected server-assigned created timestamp")
	}

	listed := svc.List(ctx)
	if len(listed) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(listed))
	}
	if listed[0] != created {
		t.Fatalf("listed booking differs from created: %+v vs %+v", listed[0], created)
	}
}

func TestCreate_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"empty name", func(r *CreateRequest) { r.Name = "" }},
		{"empty email", func(r *CreateRequest) { r.Email = "" }},
		{"malformed email", func(r *CreateRequest) { r.Email = "not-an-address" }},
		{"empty service", func(r *CreateRequest) { r.Service = "" }},
		{"unknown service", func(r *CreateRequest) { r.Service = "Tinte" }},
		{"empty date", func(r *CreateRequest) { r.Date = "" }},
		{"malformed date", func(r *CreateRequest) { r.Date = "10/03/2026" }},
		{"closed monday", func(r *CreateRequest) { r.Date = "2026-03-09" }},
		{"empty time", func(r *CreateRequest) { r.Time = "" }},
		{"off-grid time", func(r *CreateRequest) { r.Time = "10:07" }},
		{"before opening", func(r *CreateRequest) { r.Time = "09:45" }},
		{"after last start", func(r *CreateRequest) { r.Time = "19:15" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			req := validRequest()
			tc.mutate(&req)

			_, err := svc.Create(context.Background(), req)
			if !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := svc.List(context.Background()); len(got) != 0 {
				t.Fatalf("validation failure must not write to the store, found %d bookings", len(got))
			}
		})
	}
}

func TestCreate_RejectsPastAndTooSoonToday(t *testing.T) {
	svc, _ := newTestService(t)
	// Clock inside the business day: Tuesday 14:02.
	svc.WithClock(func() time.Time {
		return time.Date(2026, 3, 10, 14, 2, 0, 0, time.UTC)
	})

	for _, hhmm := range []string{"13:00", "14:00"} {
		req := validRequest()
		req.Time = hhmm
		if _, err := svc.Create(context.Background(), req); !IsValidation(err) {
			t.Fatalf("slot %s should be rejected, got %v", hhmm, err)
		}
	}

	req := validRequest()
	req.Time = "14:15"
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("14:15 is past the margin and should book: %v", err)
	}
}

func TestCreate_DoubleBookingGuard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const racers = 2
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, validRequest())
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case IsSlotTaken(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner and one conflict, got %d/%d", wins, conflicts)
	}
}

func TestCreate_OccupiedSlotConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validRequest()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, validRequest())
	if !IsSlotTaken(err) {
		t.Fatalf("expected slot conflict, got %v", err)
	}
}

func TestAvailableSlots_ExcludesBooked(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	before, err := svc.AvailableSlots(ctx, testDay, "Corte clásico")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(before) != 37 {
		t.Fatalf("expected full grid of 37, got %d", len(before))
	}

	if _, err := svc.Create(ctx, validRequest()); err != nil {
		t.Fatalf("create: %v", err)
	}

	after, err := svc.AvailableSlots(ctx, testDay, "Corte clásico")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(after) != 36 {
		t.Fatalf("expected 36 slots after booking, got %d", len(after))
	}
	for _, hhmm := range after {
		if hhmm == "14:00" {
			t.Fatal("booked slot still offered")
		}
	}
}

func TestAvailableSlots_ClosedDayEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	slots, err := svc.AvailableSlots(context.Background(), "2026-03-09", "Barba")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("closed monday should have no slots, got %d", len(slots))
	}
}

func TestMonthAvailability_Statuses(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	cfg := schedule.Default(time.UTC)

	// Fill 2026-03-10 completely and most of 2026-03-11.
	day10 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, hhmm := range cfg.DaySlots(day10, 45*time.Minute) {
		if err := store.Add(ctx, model.Booking{Date: "2026-03-10", Time: hhmm}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	day11 := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	for i, hhmm := range cfg.DaySlots(day11, 45*time.Minute) {
		if i >= 30 {
			break
		}
		if err := store.Add(ctx, model.Booking{Date: "2026-03-11", Time: hhmm}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	days, err := svc.MonthAvailability(ctx, 2026, time.March)
	if err != nil {
		t.Fatalf("month availability: %v", err)
	}
	if len(days) != 31 {
		t.Fatalf("march has 31 days, got %d", len(days))
	}

	byDate := map[string]DaySummary{}
	for _, d := range days {
		byDate[d.Date] = d
	}

	if got := byDate["2026-03-09"]; got.Status != "closed" || got.Open {
		t.Fatalf("monday should be closed: %+v", got)
	}
	if got := byDate["2026-03-10"]; got.Status != "full" || got.Free != 0 {
		t.Fatalf("fully booked day should be full: %+v", got)
	}
	if got := byDate["2026-03-11"]; got.Status != "limited" {
		t.Fatalf("day with 7/37 free should be limited: %+v", got)
	}
	if got := byDate["2026-03-12"]; got.Status != "available" || got.Free != 37 {
		t.Fatalf("untouched day should be available: %+v", got)
	}
}

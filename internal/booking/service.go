// Package booking implements the appointment operations behind the HTTP
// surface: availability computation, validated booking creation with a
// double-booking guard, and listing.
package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zayas4k/barberbook/internal/model"
	"github.com/zayas4k/barberbook/internal/schedule"
	"github.com/zayas4k/barberbook/internal/storage"
)

// Notifier receives finalized booking records for downstream collaborators
// (reminder emails, calendar export). Delivery is best-effort and never
// blocks or fails a booking.
type Notifier interface {
	BookingCreated(ctx context.Context, b model.Booking)
}

type Service struct {
	store    storage.Store
	catalog  model.Catalog
	schedule schedule.Config
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(store storage.Store, catalog model.Catalog, cfg schedule.Config, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		schedule: cfg,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service clock. Tests use it to pin "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Catalog() model.Catalog {
	return s.catalog
}

// CreateRequest carries the caller's submission. Nothing here is ambient
// state: every call names its own date, time, and service.
type CreateRequest struct {
	Name    string
	Email   string
	Phone   string
	Service string
	Date    string // YYYY-MM-DD
	Time    string // HH:MM
}

// Create validates the request, confirms the slot is still free, and
// persists the booking. Validation failures surface as *ValidationError
// with no storage write; a lost slot race surfaces storage.ErrSlotTaken.
func (s *Service) Create(ctx context.Context, req CreateRequest) (model.Booking, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Service = strings.TrimSpace(req.Service)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)

	if req.Name == "" {
		return model.Booking{}, invalid("name", "required")
	}
	if req.Email == "" {
		return model.Booking{}, invalid("email", "required")
	}
	if at := strings.Index(req.Email, "@"); at < 1 || at == len(req.Email)-1 {
		return model.Booking{}, invalid("email", "not an email address")
	}
	if req.Service == "" {
		return model.Booking{}, invalid("service", "required")
	}
	svc, ok := s.catalog.Find(req.Service)
	if !ok {
		return model.Booking{}, invalid("service", "unknown service")
	}
	if req.Date == "" {
		return model.Booking{}, invalid("date", "required")
	}
	day, err := s.schedule.ParseDateKey(req.Date)
	if err != nil {
		return model.Booking{}, invalid("date", "must be YYYY-MM-DD")
	}
	if req.Time == "" {
		return model.Booking{}, invalid("time", "required")
	}
	if !s.schedule.IsOpen(day) {
		return model.Booking{}, invalid("date", "shop is closed that day")
	}
	if !containsSlot(s.schedule.DaySlots(day, svc.Duration()), req.Time) {
		return model.Booking{}, invalid("time", "not a bookable start time")
	}
	start, err := s.schedule.SlotTime(day, req.Time)
	if err != nil {
		return model.Booking{}, invalid("time", "must be HH:MM")
	}
	now := s.now()
	if !start.After(now.Add(s.schedule.MinLead)) {
		return model.Booking{}, invalid("time", "start time is in the past")
	}

	// Re-check occupancy before committing. The store's conditional insert
	// below is what actually decides a race; this read only turns the
	// common case into a cheap early conflict.
	booked, err := s.store.Booked(ctx, req.Date)
	if err != nil {
		return model.Booking{}, err
	}
	if _, taken := booked[req.Time]; taken {
		return model.Booking{}, storage.ErrSlotTaken
	}

	b := model.Booking{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Service:         svc.Name,
		DurationMinutes: svc.DurationMinutes,
		Price:           svc.Price,
		Date:            req.Date,
		Time:            req.Time,
		Created:         now.UTC(),
	}
	if err := s.store.Add(ctx, b); err != nil {
		return model.Booking{}, err
	}

	s.logger.Info("booking created",
		"booking_id", b.ID, "date", b.Date, "time", b.Time, "service", b.Service)

	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, b)
	}
	return b, nil
}

// List returns all persisted bookings. A store read failure degrades to an
// empty list rather than failing the call; the store is treated as a
// best-effort record of demand on the read path.
func (s *Service) List(ctx context.Context) []model.Booking {
	bookings, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("booking list unavailable, returning empty", "err", err)
		return nil
	}
	return bookings
}

// AvailableSlots returns the bookable HH:MM start times for a date and
// service. A closed day yields an empty list. A store read failure degrades
// to an optimistic empty booked set (logged): briefly over-offering beats
// hiding the whole day.
func (s *Service) AvailableSlots(ctx context.Context, dateKey, serviceName string) ([]string, error) {
	svc, ok := s.catalog.Find(strings.TrimSpace(serviceName))
	if !ok {
		return nil, invalid("service", "unknown service")
	}
	day, err := s.schedule.ParseDateKey(strings.TrimSpace(dateKey))
	if err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}
	if !s.schedule.IsOpen(day) {
		return []string{}, nil
	}

	booked, err := s.store.Booked(ctx, dateKey)
	if err != nil {
		s.logger.Warn("booked set unavailable, treating as empty", "date", dateKey, "err", err)
		booked = map[string]struct{}{}
	}
	return s.schedule.Available(day, s.schedule.DaySlots(day, svc.Duration()), booked, s.now()), nil
}

// DaySummary describes one calendar tile: open/closed plus how much of the
// day's grid is still free.
type DaySummary struct {
	Date   string `json:"date"`
	Open   bool   `json:"open"`
	Total  int    `json:"total"`
	Free   int    `json:"free"`
	Status string `json:"status"` // closed | full | limited | available
}

// baseSummaryDuration matches the widget's base density when counting a
// day's grid for the calendar badges.
const baseSummaryDuration = 45 * time.Minute

// MonthAvailability returns a summary for every day of the given month,
// feeding the calendar's closed/full/limited/available badges. A day is
// "limited" when under 35% of its grid remains free.
func (s *Service) MonthAvailability(ctx context.Context, year int, month time.Month) ([]DaySummary, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, s.schedule.Location)
	days := first.AddDate(0, 1, -1).Day()

	out := make([]DaySummary, 0, days)
	for d := 1; d <= days; d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, s.schedule.Location)
		sum := DaySummary{Date: s.schedule.DateKey(day), Open: s.schedule.IsOpen(day)}
		if !sum.Open {
			sum.Status = "closed"
			out = append(out, sum)
			continue
		}

		slots := s.schedule.DaySlots(day, baseSummaryDuration)
		booked, err := s.store.Booked(ctx, sum.Date)
		if err != nil {
			s.logger.Warn("booked set unavailable, treating as empty", "date", sum.Date, "err", err)
			booked = map[string]struct{}{}
		}
		sum.Total = len(slots)
		sum.Free = sum.Total - len(booked)
		if sum.Free < 0 {
			sum.Free = 0
		}
		switch {
		case sum.Free == 0:
			sum.Status = "full"
		case float64(sum.Free) < float64(sum.Total)*0.35:
			sum.Status = "limited"
		default:
			sum.Status = "available"
		}
		out = append(out, sum)
	}
	return out, nil
}

func containsSlot(slots []string, hhmm string) bool {
	for _, s := range slots {
		if s == hhmm {
			return true
		}
	}
	return false
}

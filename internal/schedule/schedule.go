// Package schedule computes appointment start times for the shop's fixed
// business hours: which days are open, which HH:MM starts exist on the
// booking grid, and which of those are still bookable given the clock and
// the already-booked set.
package schedule

import (
	"fmt"
	"time"
)

// Config describes the shop's opening pattern. All calculations happen in
// Location; dates and times cross the API as strings (YYYY-MM-DD, HH:MM).
type Config struct {
	Location *time.Location
	OpenDays map[time.Weekday]bool

	// OpenHour..LastStartHour is the start-time window. LastStartHour is
	// inclusive: an appointment may begin at closing time and run past it.
	OpenHour      int
	LastStartHour int

	SlotStep time.Duration

	// MinLead is the same-day safety margin: a slot today is offered only
	// if it starts strictly after now+MinLead.
	MinLead time.Duration
}

// Default returns the shop's standing hours: Tuesday through Saturday,
// starts from 10:00 to 19:00 on a 15-minute grid, 5-minute lead margin.
func Default(loc *time.Location) Config {
	return Config{
		Location: loc,
		OpenDays: map[time.Weekday]bool{
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
			time.Saturday:  true,
		},
		OpenHour:      10,
		LastStartHour: 19,
		SlotStep:      15 * time.Minute,
		MinLead:       5 * time.Minute,
	}
}

// IsOpen reports whether the shop takes appointments on day's weekday.
func (c Config) IsOpen(day time.Time) bool {
	return c.OpenDays[day.In(c.Location).Weekday()]
}

// DaySlots returns every start time on the booking grid for the given day,
// in order, as HH:MM strings. The result is the same for every call with the
// same inputs.
//
// serviceDuration determines the appointment's end downstream but does not
// change slot spacing: a 90-minute service is still offered every SlotStep.
// That mirrors the shop's walk-in style scheduling and is intentional here;
// overlap between long services is accepted, not prevented.
//
// Callers must gate on IsOpen before presenting these as bookable.
func (c Config) DaySlots(day time.Time, serviceDuration time.Duration) []string {
	day = day.In(c.Location)
	start := time.Date(day.Year(), day.Month(), day.Day(), c.OpenHour, 0, 0, 0, c.Location)
	last := time.Date(day.Year(), day.Month(), day.Day(), c.LastStartHour, 0, 0, 0, c.Location)

	// Align to the grid in case OpenHour ever lands off-step.
	if rem := start.Sub(start.Truncate(time.Hour)) % c.SlotStep; rem != 0 {
		start = start.Add(c.SlotStep - rem)
	}

	var slots []string
	for t := start; !t.After(last); t = t.Add(c.SlotStep) {
		slots = append(slots, t.Format("15:04"))
	}
	return slots
}

// Available filters all down to the bookable subset: booked times are
// removed, and when day is today (in the business timezone) so is every
// slot that does not start strictly after now+MinLead. Input order is
// preserved and inputs are never mutated.
func (c Config) Available(day time.Time, all []string, booked map[string]struct{}, now time.Time) []string {
	sameDay := isSameDay(day.In(c.Location), now.In(c.Location))
	cutoff := now.Add(c.MinLead)

	out := make([]string, 0, len(all))
	for _, hhmm := range all {
		if _, taken := booked[hhmm]; taken {
			continue
		}
		if sameDay {
			start, err := c.SlotTime(day, hhmm)
			if err != nil || !start.After(cutoff) {
				continue
			}
		}
		out = append(out, hhmm)
	}
	return out
}

// SlotTime resolves a HH:MM slot on the given day to an instant in the
// business timezone.
func (c Config) SlotTime(day time.Time, hhmm string) (time.Time, error) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	day = day.In(c.Location)
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, c.Location), nil
}

// DateKey formats a day as the store's YYYY-MM-DD key.
func (c Config) DateKey(day time.Time) string {
	return day.In(c.Location).Format("2006-01-02")
}

// ParseDateKey parses a YYYY-MM-DD key into midnight of that day in the
// business timezone.
func (c Config) ParseDateKey(key string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", key, c.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", key, err)
	}
	return day, nil
}

func isSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

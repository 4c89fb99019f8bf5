package model

import "time"

// Booking is a confirmed appointment. Records are immutable once created;
// there is no update or cancel operation.
//
// JSON field names match the bookings.json layout the widget's original
// server wrote, so an existing file keeps loading.
type Booking struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Service         string    `json:"service"`
	DurationMinutes int       `json:"duration"`
	Price           float64   `json:"price"`
	Date            string    `json:"date"` // YYYY-MM-DD, business timezone
	Time            string    `json:"time"` // HH:MM, 24-hour
	Created         time.Time `json:"created"`
}

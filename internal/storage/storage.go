// Package storage persists bookings behind a pluggable Store. Keys are
// YYYY-MM-DD date strings; slot times are HH:MM. Implementations must make
// Add a conditional insert: the same (date, time) pair can be stored once.
package storage

import (
	"context"
	"errors"

	"github.com/zayas4k/barberbook/internal/model"
)

// ErrSlotTaken is returned by Add when the (date, time) pair is already
// booked. It is the double-booking guard: of two racing inserts for one
// slot, exactly one sees this error.
var ErrSlotTaken = errors.New("time slot already booked")

type Store interface {
	// Booked returns the set of booked HH:MM start times for a date key.
	// A date with no bookings yields an empty set, not an error.
	Booked(ctx context.Context, dateKey string) (map[string]struct{}, error)

	// Add inserts a booking, failing with ErrSlotTaken when its slot is
	// occupied. The membership check and the insert are one atomic step.
	Add(ctx context.Context, b model.Booking) error

	// List returns every stored booking in insertion order.
	List(ctx context.Context) ([]model.Booking, error)
}

func IsSlotTaken(err error) bool {
	return errors.Is(err, ErrSlotTaken)
}

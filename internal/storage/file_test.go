package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zayas4k/barberbook/internal/model"
)

func testBooking(date, hhmm string) model.Booking {
	return model.Booking{
		ID:              "b-" + date + "-" + hhmm,
		Name:            "Luis Ortiz",
		Email:           "luis@example.com",
		Service:         "Barba",
		DurationMinutes: 30,
		Price:           15,
		Date:            date,
		Time:            hhmm,
		Created:         time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.json")
	store := NewFile(path)
	ctx := context.Background()

	if err := store.Add(ctx, testBooking("2026-03-10", "10:00")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, testBooking("2026-03-10", "10:15")); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A fresh handle over the same file sees the same data.
	reopened := NewFile(path)
	bookings, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bookings))
	}
	if bookings[0].Time != "10:00" || bookings[1].Time != "10:15" {
		t.Fatalf("insertion order lost: %+v", bookings)
	}

	booked, err := reopened.Booked(ctx, "2026-03-10")
	if err != nil {
		t.Fatalf("booked: %v", err)
	}
	if _, ok := booked["10:00"]; !ok {
		t.Fatal("10:00 missing from booked set")
	}
	if len(booked) != 2 {
		t.Fatalf("expected 2 booked times, got %d", len(booked))
	}
}

func TestFile_RejectsDuplicateSlot(t *testing.T) {
	store := NewFile(filepath.Join(t.TempDir(), "bookings.json"))
	ctx := context.Background()

	if err := store.Add(ctx, testBooking("2026-03-10", "10:00")); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := store.Add(ctx, testBooking("2026-03-10", "10:00"))
	if !IsSlotTaken(err) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// Same time on a different day is a different slot.
	if err := store.Add(ctx, testBooking("2026-03-11", "10:00")); err != nil {
		t.Fatalf("add other day: %v", err)
	}
}

func TestFile_MissingFileReadsEmpty(t *testing.T) {
	store := NewFile(filepath.Join(t.TempDir(), "bookings.json"))
	ctx := context.Background()

	bookings, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bookings) != 0 {
		t.Fatalf("expected no bookings, got %d", len(bookings))
	}

	booked, err := store.Booked(ctx, "2026-03-10")
	if err != nil {
		t.Fatalf("booked: %v", err)
	}
	if len(booked) != 0 {
		t.Fatalf("expected empty set, got %d", len(booked))
	}
}

func TestFile_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFile(path)
	ctx := context.Background()

	if _, err := store.List(ctx); err == nil {
		t.Fatal("expected error listing a corrupt store")
	}
	// A write must not clobber the unreadable file.
	if err := store.Add(ctx, testBooking("2026-03-10", "10:00")); err == nil {
		t.Fatal("expected error adding to a corrupt store")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "{not json" {
		t.Fatal("corrupt store was overwritten")
	}
}

func TestMemory_AddBookedList(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Add(ctx, testBooking("2026-03-10", "11:30")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, testBooking("2026-03-10", "11:30")); !IsSlotTaken(err) {
		t.Fatal("expected ErrSlotTaken on duplicate")
	}

	booked, err := store.Booked(ctx, "2026-03-10")
	if err != nil {
		t.Fatalf("booked: %v", err)
	}
	if _, ok := booked["11:30"]; !ok || len(booked) != 1 {
		t.Fatalf("unexpected booked set: %v", booked)
	}

	empty, err := store.Booked(ctx, "2026-03-12")
	if err != nil {
		t.Fatalf("booked: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("date without bookings should be empty, got %v", empty)
	}

	bookings, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings))
	}
}

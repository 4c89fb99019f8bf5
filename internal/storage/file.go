package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zayas4k/barberbook/internal/model"
)

// File stores bookings as one flat JSON array, the format the widget's
// original server kept in bookings.json.
//
// The whole file is the unit of persistence: every write re-reads it,
// appends, and atomically replaces it, with one mutex serializing the
// read-modify-write sequence. A missing file reads as no bookings; a file
// that exists but does not parse is an error, so a corrupt store is never
// silently overwritten.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Booked(_ context.Context, dateKey string) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bookings, err := f.load()
	if err != nil {
		return nil, err
	}
	times := map[string]struct{}{}
	for _, b := range bookings {
		if b.Date == dateKey {
			times[b.Time] = struct{}{}
		}
	}
	return times, nil
}

func (f *File) Add(_ context.Context, booking model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	bookings, err := f.load()
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if b.Date == booking.Date && b.Time == booking.Time {
			return ErrSlotTaken
		}
	}
	return f.save(append(bookings, booking))
}

func (f *File) List(_ context.Context) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) load() ([]model.Booking, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	var bookings []model.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return bookings, nil
}

// save writes to a temp file in the same directory and renames it over the
// store, so readers never observe a partial write.
func (f *File) save(bookings []model.Booking) error {
	data, err := json.MarshalIndent(bookings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bookings: %w", err)
	}
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".bookings-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

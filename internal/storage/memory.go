package storage

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/zayas4k/barberbook/internal/model"
	"github.com/zayas4k/barberbook/internal/schedule"
)

// Memory is the demo store. Everything lives in process memory and is gone
// on restart, like the widget's localStorage variant.
type Memory struct {
	mu    sync.RWMutex
	byDay map[string]map[string]model.Booking
	order []model.Booking
}

func NewMemory() *Memory {
	return &Memory{byDay: map[string]map[string]model.Booking{}}
}

func (m *Memory) Booked(_ context.Context, dateKey string) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	times := make(map[string]struct{}, len(m.byDay[dateKey]))
	for hhmm := range m.byDay[dateKey] {
		times[hhmm] = struct{}{}
	}
	return times, nil
}

func (m *Memory) Add(_ context.Context, b model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := m.byDay[b.Date]
	if day == nil {
		day = map[string]model.Booking{}
		m.byDay[b.Date] = day
	}
	if _, taken := day[b.Time]; taken {
		return ErrSlotTaken
	}
	day[b.Time] = b
	m.order = append(m.order, b)
	return nil
}

func (m *Memory) List(_ context.Context) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Booking, len(m.order))
	copy(out, m.order)
	return out, nil
}

// SeedDemo marks 0-7 random slots busy on each of the next ten days so a
// fresh demo instance shows believable demand. Seeded slots carry no
// personal data.
func (m *Memory) SeedDemo(cfg schedule.Config, now time.Time) {
	rng := rand.New(rand.NewSource(now.UnixNano()))
	for i := 0; i < 10; i++ {
		day := now.In(cfg.Location).AddDate(0, 0, i)
		if !cfg.IsOpen(day) {
			continue
		}
		slots := cfg.DaySlots(day, 45*time.Minute)
		busy := rng.Intn(8)
		for j := 0; j < busy && j < len(slots); j++ {
			_ = m.Add(context.Background(), model.Booking{
				Date: cfg.DateKey(day),
				Time: slots[j],
			})
		}
	}
}

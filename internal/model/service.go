package model

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Service is a static catalog entry selectable by the widget.
type Service struct {
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration"`
	Price           float64 `json:"price"`
}

func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Catalog is the set of bookable services. Definitions are configuration,
// not data: they never change through the API.
type Catalog []Service

// DefaultCatalog mirrors the service menu the widget ships with.
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "Corte clásico", DurationMinutes: 45, Price: 25},
		{Name: "Corte + barba", DurationMinutes: 60, Price: 35},
		{Name: "Barba", DurationMinutes: 30, Price: 15},
		{Name: "Corte niño", DurationMinutes: 30, Price: 20},
		{Name: "Cejas", DurationMinutes: 15, Price: 10},
	}
}

// LoadCatalog reads a service catalog from a JSON file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	for _, s := range c {
		if s.Name == "" || s.DurationMinutes <= 0 || s.Price < 0 {
			return nil, fmt.Errorf("invalid service entry %q in %s", s.Name, path)
		}
	}
	return c, nil
}

// Find returns the service with the given name.
func (c Catalog) Find(name string) (Service, bool) {
	for _, s := range c {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

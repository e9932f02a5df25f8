// Package pricing holds the location price multipliers used to compute the
// final price of a booking.
package pricing

import (
	"math"
	"sort"
	"strings"
)

// FallbackMultiplier applies to non-blank locations missing from the table.
const FallbackMultiplier = 1.5

// Table is an immutable location -> multiplier lookup. The zero value is an
// empty table.
type Table struct {
	multipliers map[string]float64
}

func NewTable(multipliers map[string]float64) Table {
	m := make(map[string]float64, len(multipliers))
	for k, v := range multipliers {
		m[k] = v
	}
	return Table{multipliers: m}
}

// DefaultTable returns the studio's coverage area.
func DefaultTable() Table {
	return NewTable(map[string]float64{
		"Colombo":      1.0,
		"Gampaha":      1.1,
		"Kalutara":     1.2,
		"Kandy":        1.3,
		"Galle":        1.4,
		"Matara":       1.5,
		"Negombo":      1.1,
		"Anuradhapura": 1.6,
		"Jaffna":       1.8,
		"Trincomalee":  1.7,
		"Batticaloa":   1.7,
		"Ratnapura":    1.4,
		"Badulla":      1.5,
		"Kurunegala":   1.3,
		"Puttalam":     1.4,
	})
}

// TotalPrice scales basePrice by the location multiplier. Known locations are
// rounded half-up to a whole currency unit; the fallback for unknown
// locations is left unrounded.
func (t Table) TotalPrice(basePrice float64, location string) float64 {
	if strings.TrimSpace(location) == "" {
		return basePrice
	}

	m, ok := t.multipliers[location]
	if !ok {
		return basePrice * FallbackMultiplier
	}
	return math.Floor(basePrice*m + 0.5)
}

func (t Table) IsKnown(location string) bool {
	if strings.TrimSpace(location) == "" {
		return false
	}
	_, ok := t.multipliers[location]
	return ok
}

// Multipliers returns a copy of the table.
func (t Table) Multipliers() map[string]float64 {
	out := make(map[string]float64, len(t.multipliers))
	for k, v := range t.multipliers {
		out[k] = v
	}
	return out
}

func (t Table) Locations() []string {
	out := make([]string, 0, len(t.multipliers))
	for k := range t.multipliers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package storage

import (
	"context"
	"strings"
	"sync"
)

// builtinDistributions are the comparable prices shipped with the binary, in THB.
var builtinDistributions = map[string][]float64{
	"mobile-tablet": {3500, 4500, 5900, 6900, 7500, 8200, 8900, 9900, 11900, 14900, 18900},
	"laptop":        {6500, 8900, 10500, 12900, 15900, 18500, 21900, 25900, 32900, 45900},
	"camera":        {2500, 3900, 5500, 7900, 9500, 12500, 15900, 19900, 26500, 38000},
	"fashion":       {150, 250, 350, 450, 590, 790, 990, 1290, 1890, 2990},
	"home-living":   {200, 350, 500, 800, 1200, 1500, 2200, 3500, 5900, 9900},
}

var builtinRegionMultipliers = map[string]float64{
	"bangkok":    1.15,
	"chiang-mai": 0.95,
	"phuket":     1.10,
	"khon-kaen":  0.90,
}

// MemoryReference serves reference prices from memory. It is safe for
// concurrent use and hands out copies, so callers may modify what they get.
type MemoryReference struct {
	mu          sync.RWMutex
	dists       map[string][]float64
	multipliers map[string]float64
}

// NewMemoryReference returns a store seeded with the built-in tables.
func NewMemoryReference() *MemoryReference {
	return NewMemoryReferenceFrom(builtinDistributions, builtinRegionMultipliers)
}

// NewMemoryReferenceFrom returns a store holding copies of dists and multipliers.
func NewMemoryReferenceFrom(dists map[string][]float64, multipliers map[string]float64) *MemoryReference {
	m := &MemoryReference{
		dists:       make(map[string][]float64, len(dists)),
		multipliers: make(map[string]float64, len(multipliers)),
	}
	for k, v := range dists {
		m.dists[categoryKey(k)] = append([]float64(nil), v...)
	}
	for k, v := range multipliers {
		m.multipliers[categoryKey(k)] = v
	}
	return m
}

// Distribution returns the prices for category, or nil when it is unknown.
func (m *MemoryReference) Distribution(_ context.Context, category string) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.dists[categoryKey(category)]
	if !ok {
		return nil, nil
	}
	return append([]float64(nil), d...), nil
}

func (m *MemoryReference) RegionMultipliers(_ context.Context) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]float64, len(m.multipliers))
	for k, v := range m.multipliers {
		out[k] = v
	}
	return out, nil
}

// SetDistribution replaces the prices for one category.
func (m *MemoryReference) SetDistribution(category string, prices []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dists[categoryKey(category)] = append([]float64(nil), prices...)
}

// Categories lists the known categories in no particular order.
func (m *MemoryReference) Categories() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.dists))
	for k := range m.dists {
		out = append(out, k)
	}
	return out
}

func categoryKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

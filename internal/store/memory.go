package store

import (
	"context"
	"sync"
	"time"

	"MarketPulse/internal/model"
)

// MemoryCache is an in-process ChangeCache used when no database is configured.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]float64
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]float64)}
}

func cacheKey(symbol string, start, end time.Time) string {
	return symbol + "|" + start.Format(model.DateLayout) + "|" + end.Format(model.DateLayout)
}

func (m *MemoryCache) Lookup(_ context.Context, symbols []string, start, end time.Time) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		if v, ok := m.data[cacheKey(sym, start, end)]; ok {
			out[sym] = v
		}
	}
	return out, nil
}

func (m *MemoryCache) Store(_ context.Context, changes map[string]float64, start, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sym, v := range changes {
		if v == 0 {
			continue
		}
		k := cacheKey(sym, start, end)
		if _, exists := m.data[k]; !exists {
			m.data[k] = v
		}
	}
	return nil
}

// Len returns the number of cached entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

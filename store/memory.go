package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rustyeddy/marginscan/internal/id"
	"github.com/rustyeddy/marginscan/market"
)

type MemoryStore struct {
	mu            sync.RWMutex
	positions     map[string]market.Position
	equity        float64
	hasEquity     bool
	initialEquity float64
}

// NewMemory returns an empty store whose balance reads as initialEquity until
// SetEquity is called.
func NewMemory(initialEquity float64) *MemoryStore {
	return &MemoryStore{
		positions:     make(map[string]market.Position),
		initialEquity: initialEquity,
	}
}

func (s *MemoryStore) Positions(ctx context.Context) ([]market.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]market.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, p)
	}
	sortByKey(out)
	return out, nil
}

func (s *MemoryStore) AddPosition(ctx context.Context, p market.Position) (market.Position, error) {
	if err := p.Validate(); err != nil {
		return market.Position{}, fmt.Errorf("add position: %w", err)
	}
	if p.ID == "" {
		p.ID = id.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[p.Key()] = p
	return p, nil
}

func (s *MemoryStore) RemovePosition(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.positions[key]; !ok {
		return fmt.Errorf("remove position %q: %w", key, ErrPositionNotFound)
	}
	delete(s.positions, key)
	return nil
}

func (s *MemoryStore) Equity(ctx context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasEquity {
		return s.initialEquity, nil
	}
	return s.equity, nil
}

func (s *MemoryStore) SetEquity(ctx context.Context, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.equity = amount
	s.hasEquity = true
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = make(map[string]market.Position)
	s.equity = 0
	s.hasEquity = false
	return nil
}

func (s *MemoryStore) Close() error { return nil }

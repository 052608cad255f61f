// internal/store/memory.go
//
// Per-day session persistence.
//
// A Record is everything needed to rebuild a player's board for one date:
// the game.State (guesses, marks, hints, resolved target, finished flag) and
// when play started. Records are keyed by (player, date).
//
// Two implementations:
//   - memory: map guarded by RWMutex; lost on restart (tests, dev).
//   - SQLite (sqlite.go): the state serialized as JSON in daily_sessions.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordle/daily/internal/game"
)

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("store: not found")

// Record is one player's game for one date.
type Record struct {
	PlayerID  string     `json:"playerId"`
	State     game.State `json:"state"`
	StartedAt time.Time  `json:"startedAt"`
}

// Store defines the persistence interface for daily sessions.
type Store interface {
	// Save persists or replaces the record for (rec.PlayerID, rec.State.Date).
	Save(ctx context.Context, rec Record) error

	// Get retrieves the record for playerID on date, or ErrNotFound.
	Get(ctx context.Context, playerID, date string) (Record, error)
}

type key struct{ player, date string }

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex
	records map[key]Record
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{records: make(map[key]Record)}
}

func (m *memory) Save(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key{rec.PlayerID, rec.State.Date}] = rec
	return nil
}

func (m *memory) Get(ctx context.Context, playerID, date string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.records[key{playerID, date}]; ok {
		return rec, nil
	}
	return Record{}, ErrNotFound
}

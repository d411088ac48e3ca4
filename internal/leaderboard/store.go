// Package leaderboard persists finished-game scores and serves the top list.
package leaderboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"scalpr/internal/game"
	"scalpr/internal/ids"
)

const DefaultTopLimit = 10

// Entry is one persisted score row.
type Entry struct {
	ID        string    `json:"id"`
	Initials  string    `json:"initials"`
	Money     int       `json:"money"`
	Days      int       `json:"days"`
	Bought    int       `json:"bought"`
	Sold      int       `json:"sold"`
	CreatedAt time.Time `json:"created_at"`
}

// Store accepts finished-game scores and serves the ranked top list. A
// failing store must never disturb a running game; callers treat errors as
// notification material only.
type Store interface {
	Submit(ctx context.Context, score game.Score) (Entry, error)
	Top(ctx context.Context, limit int) ([]Entry, error)
}

// sortDescending orders entries by money, richest first, ties broken by
// recency. Backends are only trusted for the candidate set, not its order.
func sortDescending(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Money != entries[j].Money {
			return entries[i].Money > entries[j].Money
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// MemoryStore keeps scores in memory. It backs tests and DB-less deploys.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Submit(_ context.Context, score game.Score) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := Entry{
		ID:        ids.New(),
		Initials:  score.Initials,
		Money:     score.Money,
		Days:      score.Days,
		Bought:    score.Bought,
		Sold:      score.Sold,
		CreatedAt: time.Now().UTC(),
	}
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *MemoryStore) Top(_ context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	sortDescending(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

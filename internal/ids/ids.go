// Package ids hands out sortable identifiers for leaderboard rows.
package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a ULID. IDs created by the same process sort in creation order.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID stamped with the given time. Tests use it to pin ids.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

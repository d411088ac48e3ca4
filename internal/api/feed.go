package api

import (
	"sync"
	"time"

	"scalpr/internal/game"
)

const feedCapacity = 100

// Event is one notification emitted by a session, kept for polling clients
// and pushed to websocket watchers.
type Event struct {
	Seq      int64         `json:"seq"`
	Kind     string        `json:"kind"`
	Title    string        `json:"title,omitempty"`
	Message  string        `json:"message"`
	Severity game.Severity `json:"severity,omitempty"`
	At       time.Time     `json:"at"`
}

// feed implements game.Notifier. It keeps a capped ring of recent events and
// mirrors each one to the session's hub. Safe for concurrent use; the
// session may call it from any of its entry points.
type feed struct {
	mu     sync.Mutex
	seq    int64
	events []Event
	hub    *Hub
}

func newFeed(hub *Hub) *feed {
	return &feed{hub: hub}
}

func (f *feed) Notify(message string, severity game.Severity) {
	f.push(Event{Kind: "notice", Message: message, Severity: severity})
}

func (f *feed) Modal(title, message string) {
	f.push(Event{Kind: "modal", Title: title, Message: message})
}

func (f *feed) push(e Event) {
	f.mu.Lock()
	f.seq++
	e.Seq = f.seq
	e.At = time.Now().UTC()
	f.events = append(f.events, e)
	if len(f.events) > feedCapacity {
		f.events = f.events[len(f.events)-feedCapacity:]
	}
	f.mu.Unlock()

	if f.hub != nil {
		f.hub.Broadcast(e)
	}
}

// Since returns retained events with a sequence greater than seq.
func (f *feed) Since(seq int64) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, e := range f.events {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

package game

import (
	"sync"

	"github.com/lawnchairsociety/dragogauntlet/internal/level"
)

// Event types pushed to subscribers.
const (
	EventLevel    = "level"
	EventTerrain  = "terrain"
	EventFrame    = "frame"
	EventGameOver = "game_over"
)

// Event is one message for the presentation side. Level carries the full
// document on level and terrain events; Frame is set on every event.
type Event struct {
	Type  string
	Level *level.Document
	Frame *Snapshot
}

// subscriberBuffer bounds how far a slow subscriber may lag before events
// are dropped for it.
const subscriberBuffer = 64

// broadcaster fans events out to subscriber channels without blocking the
// simulation.
type broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan Event)}
}

func (b *broadcaster) subscribe() (int, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[b.nextID] = ch
	return b.nextID, ch
}

func (b *broadcaster) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

func (b *broadcaster) send(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *broadcaster) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

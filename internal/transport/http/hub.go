package http

import (
	"context"
	"log"
	"sync"

	"buzzquiz-service/internal/app"
	"buzzquiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Hub is an in-process pub/sub keyed by game code. It implements
// app.Notifier: on a change signal it re-fetches the game once (concurrent
// signals for the same code coalesce through singleflight) and fans the
// snapshot out to every subscriber.
type Hub struct {
	store app.GameStore
	sf    singleflight.Group

	mu   sync.RWMutex
	subs map[string]map[chan domain.GameSnapshot]struct{}
}

func NewHub(store app.GameStore) *Hub {
	return &Hub{
		store: store,
		subs:  make(map[string]map[chan domain.GameSnapshot]struct{}),
	}
}

// Subscribe returns a channel receiving snapshots for the given game code.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *Hub) Subscribe(code string) (<-chan domain.GameSnapshot, func()) {
	ch := make(chan domain.GameSnapshot, 8)
	h.mu.Lock()
	if h.subs[code] == nil {
		h.subs[code] = make(map[chan domain.GameSnapshot]struct{})
	}
	h.subs[code][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[code]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, code)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// GameChanged satisfies app.Notifier. The signal carries no payload; the hub
// fetches the current state itself and pushes it to subscribers.
func (h *Hub) GameChanged(code string) {
	go h.publish(code)
}

func (h *Hub) publish(code string) {
	h.mu.RLock()
	hasSubs := len(h.subs[code]) > 0
	h.mu.RUnlock()
	if !hasSubs {
		return
	}

	result, err, _ := h.sf.Do(code, func() (interface{}, error) {
		game, err := h.store.LoadGame(context.Background(), code)
		if err != nil {
			return domain.GameSnapshot{}, err
		}
		return game.Snapshot(), nil
	})
	if err != nil {
		log.Printf("hub: refetch game %s: %v", code, err)
		return
	}
	snap := result.(domain.GameSnapshot)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[code] {
		select {
		case ch <- snap:
		default:
			// Slow subscriber: drop the stale snapshot in favor of this one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

package app

import "sync"

// codeLocks hands out one mutex per game code so concurrent buzzer presses
// for the same game serialize into a first-wins outcome. Locks are created
// lazily and kept for the life of the process; games are few and short-lived
// relative to it, so no expiry is needed.
type codeLocks struct {
	locks sync.Map // code -> *sync.Mutex
}

func (l *codeLocks) forCode(code string) *sync.Mutex {
	if mu, ok := l.locks.Load(code); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := l.locks.LoadOrStore(code, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

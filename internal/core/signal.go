package core

import (
	"context"
	"sync"
)

// Signal is the wakeup primitive between registry mutators and room
// list watchers. Notify wakes every goroutine currently waiting and
// nothing else: there is no queue, a notify with no waiters is simply
// lost, and a burst of notifies while a watcher is busy collapses into
// a single wake.
//
// It works by handing out one shared channel per cycle. Wake returns
// the current cycle's channel and Notify closes it while installing a
// fresh one. Closing reaches every holder at once, and a channel
// obtained after Notify belongs to the next cycle, so a late waiter
// blocks until the next mutation.
type Signal struct {
	mu sync.Mutex
	ch chan struct{}
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

// Wake returns the channel the next Notify closes. Grab it before
// reading shared state, so a change landing between the read and the
// wait still wakes you.
func (s *Signal) Wake() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch
}

// Notify wakes all current waiters exactly once.
func (s *Signal) Notify() {
	s.mu.Lock()
	close(s.ch)
	s.ch = make(chan struct{})
	s.mu.Unlock()
}

// Wait blocks until the next Notify or until ctx ends. It reads the
// cycle channel at call time, so changes before the call are not seen;
// a loop that must not miss changes landing during its own work holds
// a Wake channel across that work and selects on it, instead of
// calling Wait afterwards.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.Wake():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

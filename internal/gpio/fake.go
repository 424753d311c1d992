package gpio

import (
	"fmt"
	"sync"
	"time"
)

// FakeWatcher is a test double that records edge handlers and lets tests
// fire edges directly.
type FakeWatcher struct {
	mu sync.Mutex

	handlers map[int]EdgeHandler

	// Levels contains scripted pin levels returned by Value().
	Levels map[int]bool

	// WatchError, if set, will be returned by OnRisingEdge for FailPin
	// (or for every pin if FailPin is 0).
	WatchError error
	FailPin    int

	// ReadError, if set, will be returned by Value().
	ReadError error

	closeCalls int
}

// NewFakeWatcher creates a FakeWatcher with no registered handlers.
func NewFakeWatcher() *FakeWatcher {
	return &FakeWatcher{
		handlers: make(map[int]EdgeHandler),
		Levels:   make(map[int]bool),
	}
}

// OnRisingEdge records handler for pin.
func (f *FakeWatcher) OnRisingEdge(pin int, handler EdgeHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.WatchError != nil && (f.FailPin == 0 || f.FailPin == pin) {
		return f.WatchError
	}
	if _, ok := f.handlers[pin]; ok {
		return fmt.Errorf("request pin %d: already watched", pin)
	}
	f.handlers[pin] = handler
	return nil
}

// Watched reports whether a handler is registered for pin.
func (f *FakeWatcher) Watched(pin int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.handlers[pin]
	return ok
}

// Trigger fires a rising edge on pin at the given time, calling the
// registered handler synchronously. Returns false if nothing watches pin.
func (f *FakeWatcher) Trigger(pin int, at time.Time) bool {
	f.mu.Lock()
	h, ok := f.handlers[pin]
	f.mu.Unlock()
	if !ok {
		return false
	}
	h(pin, at)
	return true
}

// Value returns the scripted level for pin.
func (f *FakeWatcher) Value(pin int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return f.Levels[pin], nil
}

// Close counts teardown calls and drops all handlers.
func (f *FakeWatcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	f.handlers = make(map[int]EdgeHandler)
	return nil
}

// CloseCalls returns how many times Close was called.
func (f *FakeWatcher) CloseCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

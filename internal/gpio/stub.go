//go:build !linux

package gpio

import (
	"errors"
	"time"
)

// RealWatcher is not available on non-Linux platforms.
type RealWatcher struct{}

// NewRealWatcher returns an error on non-Linux platforms.
func NewRealWatcher(chipName string, bounce time.Duration) (*RealWatcher, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// OnRisingEdge is not implemented on non-Linux platforms.
func (w *RealWatcher) OnRisingEdge(pin int, handler EdgeHandler) error {
	return errors.New("gpio: not supported")
}

// Value is not implemented on non-Linux platforms.
func (w *RealWatcher) Value(pin int) (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (w *RealWatcher) Close() error {
	return nil
}

//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealWatcher watches GPIO lines on actual hardware using the Linux GPIO character device.
type RealWatcher struct {
	mu     sync.Mutex
	chip   *gpiocdev.Chip
	bounce time.Duration
	lines  map[int]*gpiocdev.Line
}

// NewRealWatcher opens the named chip. bounce is the kernel debounce period
// requested for every watched line (0 disables it).
func NewRealWatcher(chipName string, bounce time.Duration) (*RealWatcher, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}
	return &RealWatcher{
		chip:   chip,
		bounce: bounce,
		lines:  make(map[int]*gpiocdev.Line),
	}, nil
}

// OnRisingEdge requests pin as input with pull-down and rising-edge events.
// The handler runs on the line's event goroutine.
func (w *RealWatcher) OnRisingEdge(pin int, handler EdgeHandler) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.chip == nil {
		return fmt.Errorf("request pin %d: watcher closed", pin)
	}
	if _, ok := w.lines[pin]; ok {
		return fmt.Errorf("request pin %d: already watched", pin)
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			// evt.Timestamp is CLOCK_MONOTONIC since boot; the bridge wants wall time.
			handler(evt.Offset, time.Now())
		}),
	}
	if w.bounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(w.bounce))
	}

	line, err := w.chip.RequestLine(pin, opts...)
	if err != nil {
		return fmt.Errorf("request pin %d: %w", pin, err)
	}
	w.lines[pin] = line
	return nil
}

// Value returns true if the line is high (button pressed).
func (w *RealWatcher) Value(pin int) (bool, error) {
	w.mu.Lock()
	line, ok := w.lines[pin]
	w.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("read pin %d: not watched", pin)
	}

	raw, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return raw == 1, nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (w *RealWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for pin, line := range w.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
		delete(w.lines, pin)
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		w.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

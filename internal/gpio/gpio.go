// Package gpio provides rising-edge detection on GPIO inputs with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// EdgeHandler is called for every rising edge detected on pin.
// It may run on a goroutine owned by the hardware layer, concurrently
// with handlers for other pins.
type EdgeHandler func(pin int, at time.Time)

// Watcher delivers rising-edge events for input pins.
type Watcher interface {
	// OnRisingEdge configures pin as an input with pull-down bias
	// (idle = low, pressed = high) and registers handler for its
	// rising edges.
	OnRisingEdge(pin int, handler EdgeHandler) error

	// Value returns the current logical level of a watched pin.
	Value(pin int) (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPin1 = 18 // Button 1
	DefaultPin2 = 19 // Button 2
)

// DefaultBounce is the kernel-level bounce suppression applied to each line.
const DefaultBounce = 300 * time.Millisecond

// DefaultChip is the GPIO character device carrying the header pins.
const DefaultChip = "gpiochip0"

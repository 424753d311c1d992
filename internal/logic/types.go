// Package logic contains the pure press-filtering logic for the button bridge.
// This package has NO external dependencies (no GPIO, HTTP, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// ButtonChannel identifies one physical input. Defined at startup, never changed.
type ButtonChannel struct {
	ID  int // logical button number reported upstream (1 or 2)
	Pin int // BCM pin number
}

// PressEvent is a single accepted (non-bounced) press.
type PressEvent struct {
	Button int
	Time   time.Time
}

// Seconds returns the press time as float seconds since the Unix epoch.
func (e PressEvent) Seconds() float64 {
	return float64(e.Time.UnixNano()) / float64(time.Second)
}

// Policy selects how the debounce window is shared between channels.
type Policy string

const (
	// PolicyGlobal shares one "last accepted press" time across every channel,
	// so a press on one button suppresses the other within the window.
	PolicyGlobal Policy = "global"
	// PolicyPerChannel keeps one "last accepted press" time per button.
	PolicyPerChannel Policy = "per-channel"
)

// PressCounts tracks accepted and suppressed edges for one button.
type PressCounts struct {
	Accepted   int
	Suppressed int
}

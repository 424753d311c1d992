package logic

import (
	"fmt"
	"sync"
	"time"
)

// DefaultWindow is the software debounce window applied to accepted presses.
const DefaultWindow = 300 * time.Millisecond

// globalKey is the map key used for the shared timestamp under PolicyGlobal.
const globalKey = 0

// Debouncer decides whether an edge is a new press or a bounce of the
// previous one. It is safe for concurrent use: edge handlers for different
// pins may call Accept at the same time.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	policy Policy
	last   map[int]time.Time
	counts map[int]PressCounts
}

// NewDebouncer creates a Debouncer with the given window and policy.
// An empty policy means PolicyGlobal.
func NewDebouncer(window time.Duration, policy Policy) *Debouncer {
	if policy == "" {
		policy = PolicyGlobal
	}
	return &Debouncer{
		window: window,
		policy: policy,
		last:   make(map[int]time.Time),
		counts: make(map[int]PressCounts),
	}
}

// Accept reports whether an edge on button at now is a new press.
// The first edge after startup is always accepted. Later edges are accepted
// only if at least the window has elapsed since the last accepted press
// (on any button under PolicyGlobal, on the same button otherwise).
func (d *Debouncer) Accept(button int, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := d.key(button)
	c := d.counts[button]

	last, seen := d.last[key]
	if seen && now.Sub(last) < d.window {
		c.Suppressed++
		d.counts[button] = c
		return false
	}

	d.last[key] = now
	c.Accepted++
	d.counts[button] = c
	return true
}

func (d *Debouncer) key(button int) int {
	if d.policy == PolicyPerChannel {
		return button
	}
	return globalKey
}

// Window returns the configured debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Policy returns the configured sharing policy.
func (d *Debouncer) Policy() Policy {
	return d.policy
}

// Counts returns a copy of the per-button accepted/suppressed counts.
func (d *Debouncer) Counts() map[int]PressCounts {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[int]PressCounts, len(d.counts))
	for k, v := range d.counts {
		out[k] = v
	}
	return out
}

// ParsePolicy converts a flag value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyGlobal, PolicyPerChannel:
		return Policy(s), nil
	case "":
		return PolicyGlobal, nil
	}
	return "", fmt.Errorf("unknown debounce policy %q (want %q or %q)", s, PolicyGlobal, PolicyPerChannel)
}

// Package status provides a thread-safe status tracker for the button-bridge daemon.
// It is read by the HTTP status page and the MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-bridge/internal/logic"
)

// NetworkInfo contains network state as written by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Buttons    []logic.ButtonChannel
	URL        string
	TimeoutMs  int64
	DebounceMs int64
	BounceMs   int64
	Policy     string
	Broker     string
	HTTPAddr   string
}

// ButtonStatus is the per-button view of presses seen so far.
type ButtonStatus struct {
	ID         int
	Pin        int
	Accepted   int
	Suppressed int
	LastPress  time.Time // zero until the first accepted press
}

// DeliveryCounts tracks outcomes of press reports to the remote service.
type DeliveryCounts struct {
	Delivered int // HTTP 200
	Rejected  int // any other status
	Failed    int // transport error
}

// Health is the outcome of the startup health check.
type Health struct {
	Status     string
	StatusCode int
	Error      string
	CheckedAt  time.Time
}

// Outcome classifies a single delivery attempt.
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	OutcomeRejected
	OutcomeFailed
)

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Buttons       []ButtonStatus
	Delivery      DeliveryCounts
	LastError     string
	Health        Health
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	buttons := make([]ButtonStatus, len(cfg.Buttons))
	for i, ch := range cfg.Buttons {
		buttons[i] = ButtonStatus{ID: ch.ID, Pin: ch.Pin}
	}
	return &Tracker{
		snap: Snapshot{
			Buttons:   buttons,
			StartTime: startTime,
			Health:    Health{Status: "UNKNOWN"},
			Config:    cfg,
		},
	}
}

// RecordPress stores the time of an accepted press and the debouncer's
// current counts for every known button.
func (t *Tracker) RecordPress(event logic.PressEvent, counts map[int]logic.PressCounts) {
	t.mu.Lock()
	for i := range t.snap.Buttons {
		b := &t.snap.Buttons[i]
		if b.ID == event.Button {
			b.LastPress = event.Time
		}
	}
	t.setCountsLocked(counts)
	t.mu.Unlock()
}

// SetCounts replaces the accepted/suppressed counts for every known button.
func (t *Tracker) SetCounts(counts map[int]logic.PressCounts) {
	t.mu.Lock()
	t.setCountsLocked(counts)
	t.mu.Unlock()
}

func (t *Tracker) setCountsLocked(counts map[int]logic.PressCounts) {
	for i := range t.snap.Buttons {
		b := &t.snap.Buttons[i]
		c := counts[b.ID]
		b.Accepted = c.Accepted
		b.Suppressed = c.Suppressed
	}
}

// RecordDelivery counts a delivery outcome. errMsg is kept as LastError
// for failed outcomes.
func (t *Tracker) RecordDelivery(outcome Outcome, errMsg string) {
	t.mu.Lock()
	switch outcome {
	case OutcomeDelivered:
		t.snap.Delivery.Delivered++
	case OutcomeRejected:
		t.snap.Delivery.Rejected++
		t.snap.LastError = errMsg
	case OutcomeFailed:
		t.snap.Delivery.Failed++
		t.snap.LastError = errMsg
	}
	t.mu.Unlock()
}

// SetHealth stores the result of the startup health check.
func (t *Tracker) SetHealth(h Health) {
	t.mu.Lock()
	t.snap.Health = h
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Buttons = append([]ButtonStatus(nil), t.snap.Buttons...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// Package bridge turns debounced GPIO rising edges into press reports for the
// remote HTTP service.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sweeney/button-bridge/internal/gpio"
	"github.com/sweeney/button-bridge/internal/logic"
	"github.com/sweeney/button-bridge/internal/mqtt"
	"github.com/sweeney/button-bridge/internal/notify"
	"github.com/sweeney/button-bridge/internal/status"
)

// SetupError is returned when a button's pin could not be configured.
// It is the only fatal error of the bridge.
type SetupError struct {
	Button int
	Pin    int
	Err    error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup button %d on pin %d: %v", e.Button, e.Pin, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Bridge forwards accepted presses from the configured channels to a Notifier.
type Bridge struct {
	channels  []logic.ButtonChannel
	debouncer *logic.Debouncer
	notifier  notify.Notifier
	mirror    mqtt.Publisher
	tracker   *status.Tracker

	// mu orders debounce decisions with the counts pushed to tracker.
	mu sync.Mutex
}

// Option configures optional collaborators of a Bridge.
type Option func(*Bridge)

// WithMirror publishes every accepted press to p as well.
func WithMirror(p mqtt.Publisher) Option {
	return func(b *Bridge) { b.mirror = p }
}

// WithTracker records presses, delivery outcomes and health in t.
func WithTracker(t *status.Tracker) Option {
	return func(b *Bridge) { b.tracker = t }
}

// New creates a Bridge. The debouncer is shared by every channel's handler.
func New(channels []logic.ButtonChannel, debouncer *logic.Debouncer, notifier notify.Notifier, opts ...Option) *Bridge {
	b := &Bridge{
		channels:  channels,
		debouncer: debouncer,
		notifier:  notifier,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Channels returns the configured button channels.
func (b *Bridge) Channels() []logic.ButtonChannel {
	return b.channels
}

// Start registers a rising-edge handler for every channel on w.
func (b *Bridge) Start(w gpio.Watcher) error {
	for _, ch := range b.channels {
		ch := ch
		err := w.OnRisingEdge(ch.Pin, func(_ int, at time.Time) {
			b.HandleEdge(ch, at)
		})
		if err != nil {
			return &SetupError{Button: ch.ID, Pin: ch.Pin, Err: err}
		}
		log.Printf("gpio: button %d on pin %d (rising edge, pull-down)", ch.ID, ch.Pin)
	}
	return nil
}

// HandleEdge processes one rising edge of ch observed at at. Bounces are
// dropped silently; accepted presses are delivered synchronously. Nothing
// escapes back into the caller: every failure is logged and discarded.
func (b *Bridge) HandleEdge(ch logic.ButtonChannel, at time.Time) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("press: button %d: recovered: %v", ch.ID, r)
		}
	}()

	event := logic.PressEvent{Button: ch.ID, Time: at}
	if !b.accept(event) {
		return
	}
	log.Printf("press: button %d (pin %d)", ch.ID, ch.Pin)

	b.deliver(event)

	if b.mirror != nil {
		if err := b.mirror.Publish(event); err != nil {
			log.Printf("mqtt: publish error: %v", err)
		}
	}
}

// accept runs the debouncer and records its counts in the tracker as one step,
// so the tracker always holds the counts of the latest decision.
func (b *Bridge) accept(event logic.PressEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	ok := b.debouncer.Accept(event.Button, event.Time)
	if b.tracker == nil {
		return ok
	}
	counts := b.debouncer.Counts()
	if ok {
		b.tracker.RecordPress(event, counts)
	} else {
		b.tracker.SetCounts(counts)
	}
	return ok
}

func (b *Bridge) deliver(event logic.PressEvent) {
	err := b.notifier.SendPress(context.Background(), event)

	var statusErr *notify.StatusError
	switch {
	case err == nil:
		log.Printf("press: button %d delivered", event.Button)
		b.record(status.OutcomeDelivered, "")
	case errors.As(err, &statusErr):
		log.Printf("press: button %d delivery error: status %d", event.Button, statusErr.StatusCode)
		b.record(status.OutcomeRejected, err.Error())
	default:
		log.Printf("press: button %d connection error: %v", event.Button, err)
		b.record(status.OutcomeFailed, err.Error())
	}
}

func (b *Bridge) record(outcome status.Outcome, msg string) {
	if b.tracker != nil {
		b.tracker.RecordDelivery(outcome, msg)
	}
}

// CheckHealth probes the remote service once and logs the outcome.
// The result never gates startup.
func (b *Bridge) CheckHealth(ctx context.Context) notify.HealthResult {
	res := b.notifier.CheckHealth(ctx)

	switch res.Status {
	case notify.HealthOK:
		log.Printf("health: remote service reachable and healthy")
	case notify.HealthUnhealthy:
		log.Printf("health: remote service reachable but unhealthy (status %d)", res.StatusCode)
	default:
		log.Printf("health: remote service unreachable: %v", res.Err)
	}

	if b.tracker != nil {
		h := status.Health{
			Status:     string(res.Status),
			StatusCode: res.StatusCode,
			CheckedAt:  time.Now(),
		}
		if res.Err != nil {
			h.Error = res.Err.Error()
		}
		b.tracker.SetHealth(h)
	}
	return res
}

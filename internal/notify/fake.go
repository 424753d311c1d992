package notify

import (
	"context"
	"sync"

	"github.com/sweeney/button-bridge/internal/logic"
)

// FakeNotifier records presses for test assertions.
type FakeNotifier struct {
	mu sync.Mutex

	// Presses contains every press passed to SendPress, including failed ones.
	Presses []logic.PressEvent

	// SendError, if set, will be returned by SendPress.
	SendError error

	// Health is returned by CheckHealth.
	Health HealthResult

	// HealthChecks counts CheckHealth calls.
	HealthChecks int

	// OnSend, if set, is called before SendPress returns.
	OnSend func(logic.PressEvent)
}

// NewFakeNotifier creates a FakeNotifier that reports a healthy service.
func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{
		Health: HealthResult{Status: HealthOK, StatusCode: 200},
	}
}

// SendPress records the press.
func (f *FakeNotifier) SendPress(ctx context.Context, event logic.PressEvent) error {
	f.mu.Lock()
	f.Presses = append(f.Presses, event)
	err := f.SendError
	onSend := f.OnSend
	f.mu.Unlock()

	if onSend != nil {
		onSend(event)
	}
	return err
}

// CheckHealth returns the scripted health result.
func (f *FakeNotifier) CheckHealth(ctx context.Context) HealthResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.HealthChecks++
	return f.Health
}

// Sent returns a copy of the recorded presses.
func (f *FakeNotifier) Sent() []logic.PressEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]logic.PressEvent(nil), f.Presses...)
}

// Reset clears recorded presses.
func (f *FakeNotifier) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Presses = nil
	f.SendError = nil
	f.HealthChecks = 0
	f.OnSend = nil
}

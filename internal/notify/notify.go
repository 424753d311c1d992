// Package notify delivers button presses to the remote HTTP service.
package notify

import (
	"context"
	"fmt"

	"github.com/sweeney/button-bridge/internal/logic"
)

// Paths on the remote service.
const (
	PathPress  = "/physical-button-press"
	PathHealth = "/health"
)

// Notifier reports presses and checks reachability of the remote service.
type Notifier interface {
	// SendPress delivers a single press. Returns *StatusError for a non-200
	// response and *TransportError when the request could not complete.
	SendPress(ctx context.Context, event logic.PressEvent) error

	// CheckHealth probes the service once.
	CheckHealth(ctx context.Context) HealthResult
}

// PressPayload is the JSON body of a press report.
type PressPayload struct {
	Button    int     `json:"button"`
	Timestamp float64 `json:"timestamp"` // seconds since epoch
}

// NewPressPayload builds the wire payload for event.
func NewPressPayload(event logic.PressEvent) PressPayload {
	return PressPayload{
		Button:    event.Button,
		Timestamp: event.Seconds(),
	}
}

// HealthStatus classifies the outcome of a health check.
type HealthStatus string

const (
	HealthUnknown     HealthStatus = "UNKNOWN"
	HealthOK          HealthStatus = "HEALTHY"
	HealthUnhealthy   HealthStatus = "UNHEALTHY"
	HealthUnreachable HealthStatus = "UNREACHABLE"
)

// HealthResult is the outcome of a single health check.
type HealthResult struct {
	Status     HealthStatus
	StatusCode int   // set for HealthOK and HealthUnhealthy
	Err        error // set for HealthUnreachable
}

func (r HealthResult) String() string {
	switch r.Status {
	case HealthOK, HealthUnhealthy:
		return fmt.Sprintf("%s (status %d)", r.Status, r.StatusCode)
	case HealthUnreachable:
		return fmt.Sprintf("%s (%v)", r.Status, r.Err)
	}
	return string(r.Status)
}

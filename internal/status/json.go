package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Buttons       []ButtonJSON `json:"buttons"`
	Delivery      DeliveryJSON `json:"delivery"`
	Health        HealthJSON   `json:"health"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ButtonJSON is the JSON representation of one button.
type ButtonJSON struct {
	ID         int    `json:"id"`
	Pin        int    `json:"pin"`
	Accepted   int    `json:"accepted"`
	Suppressed int    `json:"suppressed"`
	LastPress  string `json:"last_press,omitempty"`
}

// DeliveryJSON is the JSON representation of delivery counts.
type DeliveryJSON struct {
	Delivered int    `json:"delivered"`
	Rejected  int    `json:"rejected"`
	Failed    int    `json:"failed"`
	LastError string `json:"last_error,omitempty"`
}

// HealthJSON is the JSON representation of the startup health check.
type HealthJSON struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
	CheckedAt  string `json:"checked_at,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	URL        string `json:"url"`
	TimeoutMs  int64  `json:"timeout_ms"`
	DebounceMs int64  `json:"debounce_ms"`
	BounceMs   int64  `json:"bounce_ms"`
	Policy     string `json:"debounce_policy"`
	Broker     string `json:"broker,omitempty"`
	HTTPAddr   string `json:"http_addr"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	buttons := make([]ButtonJSON, len(snap.Buttons))
	for i, b := range snap.Buttons {
		buttons[i] = ButtonJSON{
			ID:         b.ID,
			Pin:        b.Pin,
			Accepted:   b.Accepted,
			Suppressed: b.Suppressed,
			LastPress:  formatTime(b.LastPress),
		}
	}

	health := snap.Health.Status
	if health == "" {
		health = "UNKNOWN"
	}

	return StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Buttons:       buttons,
		Delivery: DeliveryJSON{
			Delivered: snap.Delivery.Delivered,
			Rejected:  snap.Delivery.Rejected,
			Failed:    snap.Delivery.Failed,
			LastError: snap.LastError,
		},
		Health: HealthJSON{
			Status:     health,
			StatusCode: snap.Health.StatusCode,
			Error:      snap.Health.Error,
			CheckedAt:  formatTime(snap.Health.CheckedAt),
		},
		MQTT: MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			URL:        snap.Config.URL,
			TimeoutMs:  snap.Config.TimeoutMs,
			DebounceMs: snap.Config.DebounceMs,
			BounceMs:   snap.Config.BounceMs,
			Policy:     snap.Config.Policy,
			Broker:     snap.Config.Broker,
			HTTPAddr:   snap.Config.HTTPAddr,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

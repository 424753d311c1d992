package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/button-bridge/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	event := logic.PressEvent{
		Button: 1,
		Time:   time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Press.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Press.Timestamp)
	}
	if parsed.Press.Button != 1 {
		t.Errorf("unexpected button: %d", parsed.Press.Button)
	}
	if parsed.Press.Epoch != float64(event.Time.Unix()) {
		t.Errorf("unexpected epoch: %f", parsed.Press.Epoch)
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	event := logic.PressEvent{
		Button: 2,
		Time:   time.Date(2026, 2, 2, 22, 18, 12, 500_000_000, time.UTC),
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"press":{"timestamp":"2026-02-02T22:18:12.5Z","epoch":1770070692.5,"button":2}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	event := logic.PressEvent{
		Button: 1,
		Time:   time.Date(2026, 2, 2, 23, 18, 12, 0, loc),
	}

	payload, _ := FormatPayload(event)
	var parsed Payload
	json.Unmarshal(payload, &parsed)

	if parsed.Press.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Press.Timestamp)
	}
}

func TestTopic(t *testing.T) {
	if Topic != "home/buttons/bridge/presses" {
		t.Errorf("unexpected topic: %s", Topic)
	}
}

func TestTopicSystem(t *testing.T) {
	if TopicSystem != "home/buttons/bridge/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Timestamp != "2026-02-03T10:30:45Z" {
		t.Errorf("unexpected timestamp: %s", parsed.System.Timestamp)
	}
	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("unexpected event: %s", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("unexpected reason: %s", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "OFFLINE",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"OFFLINE"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	event := logic.PressEvent{Button: 1, Time: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)}
	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := f.Published()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Button != 1 {
		t.Errorf("unexpected button: %d", got[0].Button)
	}
	if len(f.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker unavailable")

	err := f.Publish(logic.PressEvent{Button: 1, Time: time.Now()})
	if err == nil {
		t.Error("expected error")
	}
	if len(f.Published()) != 0 {
		t.Error("failed publish should not be recorded")
	}
}

func TestFakePublisherPublishSystem(t *testing.T) {
	f := NewFakePublisher()

	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGINT",
		Retained:  true,
	}
	if err := f.PublishSystem(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(f.SystemEvents))
	}
	if f.SystemEvents[0].Reason != "SIGINT" {
		t.Errorf("unexpected reason: %s", f.SystemEvents[0].Reason)
	}
	if len(f.SystemPayloads) != 1 {
		t.Fatalf("expected 1 system payload, got %d", len(f.SystemPayloads))
	}
}

func TestFakePublisherPublishSystemError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystemError = errors.New("not connected")

	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected error")
	}
	if len(f.SystemEvents) != 0 {
		t.Error("failed system publish should not be recorded")
	}
}

func TestFakePublisherCloseAndReset(t *testing.T) {
	f := NewFakePublisher()
	f.Connected = true
	f.Publish(logic.PressEvent{Button: 2, Time: time.Now()})
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()

	if !f.Closed {
		t.Error("expected Closed=true")
	}
	if !f.IsConnected() {
		t.Error("expected IsConnected=true")
	}

	f.Reset()

	if f.Closed || f.IsConnected() {
		t.Error("Reset should clear Closed and Connected")
	}
	if len(f.Published()) != 0 || len(f.SystemEvents) != 0 {
		t.Error("Reset should clear recorded events")
	}
}

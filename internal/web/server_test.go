package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/button-bridge/internal/logic"
	"github.com/sweeney/button-bridge/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Buttons:    []logic.ButtonChannel{{ID: 1, Pin: 18}, {ID: 2, Pin: 19}},
		URL:        "http://144.178.100.238:65500",
		TimeoutMs:  5000,
		DebounceMs: 300,
		BounceMs:   300,
		Policy:     "global",
		Broker:     "tcp://192.168.1.200:1883",
		HTTPAddr:   ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	at := time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)
	tr.RecordPress(logic.PressEvent{Button: 1, Time: at}, map[int]logic.PressCounts{1: {Accepted: 5, Suppressed: 2}})
	tr.RecordDelivery(status.OutcomeDelivered, "")
	tr.SetHealth(status.Health{Status: "HEALTHY", StatusCode: 200})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if len(sj.Status.Buttons) != 2 {
		t.Fatalf("Buttons: got %d, want 2", len(sj.Status.Buttons))
	}
	if sj.Status.Buttons[0].Accepted != 5 {
		t.Errorf("Buttons[0].Accepted: got %d, want 5", sj.Status.Buttons[0].Accepted)
	}
	if sj.Status.Buttons[0].Suppressed != 2 {
		t.Errorf("Buttons[0].Suppressed: got %d, want 2", sj.Status.Buttons[0].Suppressed)
	}
	if sj.Status.Buttons[0].LastPress != "2026-01-01T00:05:00Z" {
		t.Errorf("Buttons[0].LastPress: got %q", sj.Status.Buttons[0].LastPress)
	}
	if sj.Status.Delivery.Delivered != 1 {
		t.Errorf("Delivery.Delivered: got %d, want 1", sj.Status.Delivery.Delivered)
	}
	if sj.Status.Health.Status != "HEALTHY" {
		t.Errorf("Health.Status: got %q, want HEALTHY", sj.Status.Health.Status)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Config.URL != "http://144.178.100.238:65500" {
		t.Errorf("Config.URL: got %q", sj.Status.Config.URL)
	}
	if sj.Status.Config.DebounceMs != 300 {
		t.Errorf("Config.DebounceMs: got %d, want 300", sj.Status.Config.DebounceMs)
	}
}

func TestJSONUnknownHealthBeforeCheck(t *testing.T) {
	ts, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Health.Status != "UNKNOWN" {
		t.Errorf("Health before check: got %q, want UNKNOWN", sj.Status.Health.Status)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.RecordDelivery(status.OutcomeFailed, "send press: connection refused")

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"GPIO 18", "GPIO 19", "never", "send press: connection refused"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %q in HTML", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.Delivery.Failed != 0 {
		t.Error("expected no failed deliveries initially")
	}

	tr.RecordDelivery(status.OutcomeFailed, "send press: timeout")
	tr.SetMQTTConnected(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if sj2.Status.Delivery.Failed != 1 {
		t.Errorf("Delivery.Failed: got %d, want 1", sj2.Status.Delivery.Failed)
	}
	if sj2.Status.Delivery.LastError != "send press: timeout" {
		t.Errorf("Delivery.LastError: got %q", sj2.Status.Delivery.LastError)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

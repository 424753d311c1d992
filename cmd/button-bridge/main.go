// Command button-bridge forwards debounced GPIO button presses to a remote HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweeney/button-bridge/internal/bridge"
	"github.com/sweeney/button-bridge/internal/gpio"
	"github.com/sweeney/button-bridge/internal/logic"
	"github.com/sweeney/button-bridge/internal/mqtt"
	"github.com/sweeney/button-bridge/internal/notify"
	"github.com/sweeney/button-bridge/internal/status"
	"github.com/sweeney/button-bridge/internal/web"
)

// DefaultURL is the base URL of the service receiving press reports.
const DefaultURL = "http://144.178.100.238:65500"

type options struct {
	pin1, pin2 int
	url        string
	timeout    time.Duration
	debounce   time.Duration
	bounce     time.Duration
	idle       time.Duration
	policy     string
	broker     string
	httpAddr   string
	envFile    string
	printState bool
}

func main() {
	var o options
	flag.IntVar(&o.pin1, "pin1", gpio.DefaultPin1, "BCM pin number for button 1")
	flag.IntVar(&o.pin2, "pin2", gpio.DefaultPin2, "BCM pin number for button 2")
	flag.StringVar(&o.url, "url", DefaultURL, "Base URL of the press-report service")
	flag.DurationVar(&o.timeout, "timeout", notify.DefaultTimeout, "Timeout for each HTTP request")
	flag.DurationVar(&o.debounce, "debounce", logic.DefaultWindow, "Software debounce window")
	flag.DurationVar(&o.bounce, "bounce", gpio.DefaultBounce, "Kernel bounce suppression per line (0 to disable)")
	flag.DurationVar(&o.idle, "idle", 100*time.Millisecond, "Idle loop interval")
	flag.StringVar(&o.policy, "debounce-policy", string(logic.PolicyGlobal), `Debounce scope: "global" or "per-channel"`)
	flag.StringVar(&o.broker, "broker", "", "MQTT broker address for mirroring presses (empty to disable)")
	flag.StringVar(&o.httpAddr, "http", "", "HTTP status address (empty to disable)")
	flag.StringVar(&o.envFile, "env-file", "/run/pi-helper.env", "pi-helper network env file")
	flag.BoolVar(&o.printState, "print-state", false, "Print current button levels and exit")

	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// mirror is an MQTT publisher that also reports its connection state.
type mirror interface {
	mqtt.Publisher
	mqtt.ConnectionStatus
}

// Hardware and broker constructors, replaced in tests.
var (
	openWatcher = func(bounce time.Duration) (gpio.Watcher, error) {
		w, err := gpio.NewRealWatcher(gpio.DefaultChip, bounce)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	openMirror = func(broker string) (mirror, error) {
		p, err := mqtt.NewRealPublisher(broker)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
)

func (o options) channels() []logic.ButtonChannel {
	return []logic.ButtonChannel{
		{ID: 1, Pin: o.pin1},
		{ID: 2, Pin: o.pin2},
	}
}

func run(o options) error {
	channels := o.channels()

	if o.printState {
		return printState(channels, o.bounce)
	}

	client, err := notify.NewClient(o.url, o.timeout)
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	policy, err := logic.ParsePolicy(o.policy)
	if err != nil {
		return err
	}
	debouncer := logic.NewDebouncer(o.debounce, policy)

	tracker := status.NewTracker(time.Now(), status.Config{
		Buttons:    channels,
		URL:        client.BaseURL(),
		TimeoutMs:  o.timeout.Milliseconds(),
		DebounceMs: o.debounce.Milliseconds(),
		BounceMs:   o.bounce.Milliseconds(),
		Policy:     string(policy),
		Broker:     o.broker,
		HTTPAddr:   o.httpAddr,
	})
	if net := readNetworkInfo(o.envFile); net != nil {
		tracker.SetNetwork(net)
	}

	watcher, err := openWatcher(o.bounce)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}

	opts := []bridge.Option{bridge.WithTracker(tracker)}

	// The mirror is optional: a broker that cannot be reached is logged and skipped.
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if o.broker != "" {
		m, err := openMirror(o.broker)
		if err != nil {
			log.Printf("mqtt: %v, continuing without mirror", err)
		} else {
			defer m.Close()
			publisher, mqttStatus = m, m
			opts = append(opts, bridge.WithMirror(m))
			tracker.SetMQTTConnected(m.IsConnected())
		}
	}

	b := bridge.New(channels, debouncer, client, opts...)

	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("mqtt: failed to publish startup event: %v", err)
		}
	}

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: url=%s timeout=%v debounce=%v policy=%s pins=%d,%d",
		client.BaseURL(), o.timeout, o.debounce, policy, o.pin1, o.pin2)

	ticker := time.NewTicker(o.idle)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return serve(watcher, b, publisher, mqttStatus, tracker, ticker.C, sigCh)
}

// serve owns watcher from here on: it is closed exactly once, whichever way serve returns.
func serve(watcher gpio.Watcher, b *bridge.Bridge, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, tick <-chan time.Time, sig <-chan os.Signal) error {
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Printf("gpio: teardown: %v", err)
		} else {
			log.Printf("gpio: released")
		}
	}()

	if err := b.Start(watcher); err != nil {
		return err
	}

	b.CheckHealth(context.Background())

	for {
		select {
		case s := <-sig:
			name := signalName(s)
			log.Printf("received %s, shutting down", name)
			if publisher != nil {
				publishShutdown(publisher, mqttStatus, tracker, name)
			}
			return nil

		case <-tick:
			if tracker != nil && mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}
	}
}

func publishShutdown(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, reason string) {
	event := mqtt.SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		event.Timestamp = snap.Now
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", reason)
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("mqtt: failed to publish shutdown event: %v", err)
	} else {
		log.Printf("mqtt: published shutdown event")
	}
}

func printState(channels []logic.ButtonChannel, bounce time.Duration) error {
	watcher, err := openWatcher(bounce)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer watcher.Close()

	return writeState(os.Stdout, watcher, channels)
}

func writeState(out io.Writer, w gpio.Watcher, channels []logic.ButtonChannel) error {
	for _, ch := range channels {
		if err := w.OnRisingEdge(ch.Pin, func(int, time.Time) {}); err != nil {
			return &bridge.SetupError{Button: ch.ID, Pin: ch.Pin, Err: err}
		}
	}
	for _, ch := range channels {
		high, err := w.Value(ch.Pin)
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Fprintf(out, "button %d (GPIO %d): %s\n", ch.ID, ch.Pin, levelString(high))
	}
	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func levelString(high bool) string {
	if high {
		return "PRESSED"
	}
	return "RELEASED"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

// readNetworkInfo reads pi-helper's env file, falling back to the process
// environment for any variable the file does not set. Returns nil when
// no network status is known.
func readNetworkInfo(envFile string) *status.NetworkInfo {
	var vals map[string]string
	if envFile != "" {
		if m, err := godotenv.Read(envFile); err == nil {
			vals = m
		}
	}
	get := func(key string) string {
		if v, ok := vals[key]; ok {
			return v
		}
		return os.Getenv(key)
	}

	s := get(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       get(envNetworkType),
		IP:         get(envNetworkIP),
		Status:     s,
		Gateway:    get(envNetworkGateway),
		WifiStatus: get(envNetworkWifiStatus),
		SSID:       get(envNetworkWifiSSID),
	}
}

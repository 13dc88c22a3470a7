// Command buttond scans GPIO buttons at a fixed interval, classifies presses
// into gestures (click, double click, long press) and publishes them to MQTT,
// with an HTTP status page.
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

	"github.com/sweeney/multibutton/internal/button"
	"github.com/sweeney/multibutton/internal/conf"
	"github.com/sweeney/multibutton/internal/gpio"
	"github.com/sweeney/multibutton/internal/mqtt"
	"github.com/sweeney/multibutton/internal/status"
	"github.com/sweeney/multibutton/internal/web"
)

// overrides are the flag values layered on top of the config file. Zero
// values (or -1 for counters) mean "keep the file's setting".
type overrides struct {
	poll        time.Duration
	clickWindow time.Duration
	longPress   time.Duration
	debounce    int
	heartbeat   time.Duration
	broker      string
	httpAddr    string
	backend     string
}

func main() {
	configPath := flag.String("config", conf.DefaultPath, "INI config file")
	poll := flag.Duration("poll", 0, "GPIO polling interval (overrides config)")
	debounce := flag.Int("debounce", -1, "debounce depth in samples, 0-7 (overrides config)")
	clickWindow := flag.Duration("click-window", 0, "multi-click window (overrides config)")
	longPress := flag.Duration("long-press", 0, "long-press threshold (overrides config)")
	heartbeat := flag.Duration("heartbeat", -1, "heartbeat interval, 0 to disable (overrides config)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address, "off" to disable (overrides config)`)
	backend := flag.String("backend", "", "GPIO backend: cdev or periph (overrides config)")
	printState := flag.Bool("print-state", false, "print current button states and exit")

	flag.Parse()

	cfg, err := conf.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyOverrides(cfg, overrides{
		poll:        *poll,
		clickWindow: *clickWindow,
		longPress:   *longPress,
		debounce:    *debounce,
		heartbeat:   *heartbeat,
		broker:      *broker,
		httpAddr:    *httpAddr,
		backend:     *backend,
	})

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func applyOverrides(cfg *conf.Config, o overrides) {
	if o.poll > 0 {
		cfg.Timing.Poll = o.poll
	}
	if o.clickWindow > 0 {
		cfg.Timing.ClickWindow = o.clickWindow
	}
	if o.longPress > 0 {
		cfg.Timing.LongPress = o.longPress
	}
	if o.debounce >= 0 {
		cfg.Timing.Debounce = uint8(o.debounce)
	}
	if o.heartbeat >= 0 {
		cfg.Timing.Heartbeat = o.heartbeat
	}
	if o.broker != "" {
		cfg.MQTT.Broker = o.broker
	}
	switch o.httpAddr {
	case "":
	case "off":
		cfg.HTTP.Addr = ""
	default:
		cfg.HTTP.Addr = o.httpAddr
	}
	if o.backend != "" {
		cfg.GPIO.Backend = o.backend
	}
}

func run(cfg *conf.Config, printState bool) error {
	if len(cfg.Buttons) == 0 {
		return fmt.Errorf("no buttons configured")
	}

	reader, err := openReader(cfg)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	if printState {
		return printStates(cfg, reader, os.Stdout)
	}

	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, "buttond")
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), statusConfig(cfg))
	for i, bc := range cfg.Buttons {
		tracker.Register(bc.Name, uint8(i))
	}

	reg, buttons, err := buildButtons(cfg, reader, publisher, time.Now)
	if err != nil {
		return err
	}

	// Publish startup event with a full status snapshot
	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: %d buttons poll=%v debounce=%d click-window=%v long-press=%v broker=%s",
		len(cfg.Buttons), cfg.Timing.Poll, cfg.Timing.Debounce,
		cfg.Timing.ClickWindow, cfg.Timing.LongPress, cfg.MQTT.Broker)

	ticker := time.NewTicker(cfg.Timing.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(reg, buttons, publisher, publisher, tracker, cfg.Timing.Heartbeat, time.Now, ticker.C, sigCh)
}

// namedButton ties a configured name to its running state machine.
type namedButton struct {
	name string
	btn  *button.Button
}

// publishedEvents are the gestures forwarded to MQTT. LongPressHold fires
// every tick while held and would flood the broker, so it stays unattached
// and only shows up in the status counters.
var publishedEvents = []button.Event{
	button.EventPressDown,
	button.EventPressUp,
	button.EventPressRepeat,
	button.EventSingleClick,
	button.EventDoubleClick,
	button.EventLongPressStart,
}

// buildButtons constructs one state machine per configured input, attaches
// the publishing callbacks, and registers everything with a fresh registry.
func buildButtons(cfg *conf.Config, reader gpio.Reader, publisher mqtt.Publisher, now func() time.Time) (*button.Registry, []namedButton, error) {
	reg := button.NewRegistry()
	bcfg := cfg.ButtonConfig()

	buttons := make([]namedButton, 0, len(cfg.Buttons))
	for i, bc := range cfg.Buttons {
		name := bc.Name
		btn, err := button.New(levelFunc(reader, bc.Active), bc.Active, uint8(i), bcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("button %q: %w", name, err)
		}

		for _, ev := range publishedEvents {
			ev := ev
			btn.Attach(ev, func(b *button.Button) {
				pressed, _ := b.IsPressed()
				log.Printf("event: %s button=%s repeat=%d", ev, name, b.RepeatCount())
				err := publisher.Publish(mqtt.GestureEvent{
					Timestamp: now(),
					Button:    name,
					ID:        b.ID(),
					Event:     ev,
					Repeat:    b.RepeatCount(),
					Pressed:   pressed,
				})
				if err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			})
		}

		if err := reg.Start(btn); err != nil {
			return nil, nil, fmt.Errorf("start button %q: %w", name, err)
		}
		buttons = append(buttons, namedButton{name: name, btn: btn})
	}
	return reg, buttons, nil
}

// levelFunc adapts a gpio.Reader to the core's LevelFunc. On a read error
// it logs and repeats the last good level, so a transient failure cannot
// synthesize an edge.
func levelFunc(reader gpio.Reader, active button.Level) button.LevelFunc {
	last := button.High
	if active == button.High {
		last = button.Low
	}
	return func(id uint8) button.Level {
		v, err := reader.Level(id)
		if err != nil {
			log.Printf("gpio read error (id %d): %v", id, err)
			return last
		}
		last = v
		return v
	}
}

func runLoop(reg *button.Registry, buttons []namedButton, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName(s),
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", event.Reason)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			reg.Drive()

			if tracker != nil {
				for _, nb := range buttons {
					pressed, _ := nb.btn.IsPressed()
					tracker.Observe(nb.btn.ID(), nb.btn.LastEvent(), pressed, nb.btn.RepeatCount())
				}
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if heartbeat > 0 && now().Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = now()
				hb := mqtt.SystemEvent{Timestamp: lastHeartbeat, Event: "HEARTBEAT"}
				if tracker != nil {
					snap := tracker.Snapshot()
					hb.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
					log.Printf("heartbeat: uptime=%v", snap.Uptime().Truncate(time.Second))
				}
				if err := publisher.PublishSystem(hb); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

func openReader(cfg *conf.Config) (gpio.Reader, error) {
	inputs := cfg.Inputs()
	switch cfg.GPIO.Backend {
	case conf.BackendPeriph:
		return gpio.NewPeriphReader(inputs)
	case conf.BackendCdev, "":
		return gpio.NewCdevReader(cfg.GPIO.Chip, inputs)
	}
	return nil, fmt.Errorf("unknown gpio backend %q", cfg.GPIO.Backend)
}

// printStates samples each configured button once and prints its state.
func printStates(cfg *conf.Config, reader gpio.Reader, w io.Writer) error {
	for i, bc := range cfg.Buttons {
		level, err := reader.Level(uint8(i))
		if err != nil {
			return fmt.Errorf("read button %q: %w", bc.Name, err)
		}
		state := "released"
		if level == bc.Active {
			state = "pressed"
		}
		fmt.Fprintf(w, "%s: %s\n", bc.Name, state)
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

func statusConfig(cfg *conf.Config) status.Config {
	return status.Config{
		PollMs:        cfg.Timing.Poll.Milliseconds(),
		DebounceTicks: int64(cfg.Timing.Debounce),
		ClickWindowMs: cfg.Timing.ClickWindow.Milliseconds(),
		LongPressMs:   cfg.Timing.LongPress.Milliseconds(),
		HeartbeatMs:   cfg.Timing.Heartbeat.Milliseconds(),
		Broker:        cfg.MQTT.Broker,
		HTTPAddr:      cfg.HTTP.Addr,
		Backend:       cfg.GPIO.Backend,
	}
}

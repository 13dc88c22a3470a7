// Package conf loads buttond configuration from an INI file, merged over
// built-in defaults. A missing file is not an error; the defaults apply.
package conf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/sweeney/multibutton/internal/button"
	"github.com/sweeney/multibutton/internal/gpio"
)

// DefaultPath is where buttond looks for its config unless told otherwise.
const DefaultPath = "/etc/buttond.conf"

// Backend names for the [gpio] backend key.
const (
	BackendCdev   = "cdev"
	BackendPeriph = "periph"
)

// Config is the daemon configuration.
type Config struct {
	Timing  Timing
	MQTT    MQTT
	HTTP    HTTP
	GPIO    GPIO
	Buttons []Button
}

// Timing holds the scan and gesture timing constants.
type Timing struct {
	Poll        time.Duration
	ClickWindow time.Duration
	LongPress   time.Duration
	Debounce    uint8 // consecutive samples, 0-7
	RepeatMax   uint8
	Heartbeat   time.Duration // 0 disables
}

// MQTT holds broker settings.
type MQTT struct {
	Broker string
}

// HTTP holds the status server settings.
type HTTP struct {
	Addr string // empty disables
}

// GPIO selects the hardware backend.
type GPIO struct {
	Chip    string
	Backend string // cdev or periph
}

// Button describes one configured input.
type Button struct {
	Name   string
	Pin    int
	Active button.Level
}

// Defaults returns the built-in configuration: reference timings, local
// broker, status page on :8080, character-device backend, no buttons.
func Defaults() *Config {
	return &Config{
		Timing: Timing{
			Poll:        button.DefaultTickInterval,
			ClickWindow: button.DefaultClickWindow,
			LongPress:   button.DefaultLongPress,
			Debounce:    button.DefaultDebounceTicks,
			RepeatMax:   button.DefaultRepeatMax,
			Heartbeat:   15 * time.Minute,
		},
		MQTT: MQTT{Broker: "tcp://127.0.0.1:1883"},
		HTTP: HTTP{Addr: ":8080"},
		GPIO: GPIO{Chip: gpio.DefaultChip, Backend: BackendCdev},
	}
}

// Load reads the INI file at path over the defaults. A nonexistent file
// returns the defaults; a malformed one returns an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	timing := f.Section("timing")
	cfg.Timing.Poll = timing.Key("poll").MustDuration(cfg.Timing.Poll)
	cfg.Timing.ClickWindow = timing.Key("click_window").MustDuration(cfg.Timing.ClickWindow)
	cfg.Timing.LongPress = timing.Key("long_press").MustDuration(cfg.Timing.LongPress)
	cfg.Timing.Heartbeat = timing.Key("heartbeat").MustDuration(cfg.Timing.Heartbeat)
	cfg.Timing.Debounce = uint8(timing.Key("debounce").MustUint(uint(cfg.Timing.Debounce)))
	cfg.Timing.RepeatMax = uint8(timing.Key("repeat_max").MustUint(uint(cfg.Timing.RepeatMax)))

	cfg.MQTT.Broker = f.Section("mqtt").Key("broker").MustString(cfg.MQTT.Broker)
	cfg.HTTP.Addr = f.Section("http").Key("addr").MustString(cfg.HTTP.Addr)

	sec := f.Section("gpio")
	cfg.GPIO.Chip = sec.Key("chip").MustString(cfg.GPIO.Chip)
	cfg.GPIO.Backend = sec.Key("backend").In(cfg.GPIO.Backend, []string{BackendCdev, BackendPeriph})

	for _, child := range f.ChildSections("button") {
		name := strings.TrimPrefix(child.Name(), "button.")
		pin, err := child.Key("pin").Int()
		if err != nil {
			return nil, fmt.Errorf("button %q: missing or invalid pin: %w", name, err)
		}
		if pin < 0 {
			return nil, fmt.Errorf("button %q: negative pin %d", name, pin)
		}
		active, err := ParseActive(child.Key("active").MustString("low"))
		if err != nil {
			return nil, fmt.Errorf("button %q: %w", name, err)
		}
		cfg.Buttons = append(cfg.Buttons, Button{Name: name, Pin: pin, Active: active})
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Timing.Poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.Timing.Poll)
	}
	if c.Timing.ClickWindow < c.Timing.Poll || c.Timing.LongPress < c.Timing.Poll {
		return fmt.Errorf("click_window (%v) and long_press (%v) must be at least one poll interval (%v)",
			c.Timing.ClickWindow, c.Timing.LongPress, c.Timing.Poll)
	}
	seen := make(map[string]bool, len(c.Buttons))
	pins := make(map[int]string, len(c.Buttons))
	for _, b := range c.Buttons {
		if b.Name == "" {
			return fmt.Errorf("button with empty name")
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate button name %q", b.Name)
		}
		seen[b.Name] = true
		if other, ok := pins[b.Pin]; ok {
			return fmt.Errorf("buttons %q and %q share pin %d", other, b.Name, b.Pin)
		}
		pins[b.Pin] = b.Name
	}
	return nil
}

// ParseActive converts "high"/"low" into a level.
func ParseActive(s string) (button.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "1":
		return button.High, nil
	case "low", "0":
		return button.Low, nil
	}
	return button.Low, fmt.Errorf("invalid active level %q (want high or low)", s)
}

// Inputs converts the configured buttons into GPIO input requests, assigning
// ids by position.
func (c *Config) Inputs() []gpio.Input {
	out := make([]gpio.Input, len(c.Buttons))
	for i, b := range c.Buttons {
		out[i] = gpio.Input{ID: uint8(i), Pin: b.Pin, Active: b.Active}
	}
	return out
}

// ButtonConfig converts the timing section into the core's Config.
func (c *Config) ButtonConfig() button.Config {
	return button.Config{
		TickInterval:  c.Timing.Poll,
		ClickWindow:   c.Timing.ClickWindow,
		LongPress:     c.Timing.LongPress,
		DebounceTicks: c.Timing.Debounce,
		RepeatMax:     c.Timing.RepeatMax,
	}
}

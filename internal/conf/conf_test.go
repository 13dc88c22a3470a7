package conf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/multibutton/internal/button"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buttond.conf")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Defaults()
	if cfg.Timing != def.Timing {
		t.Errorf("Timing = %+v, want defaults %+v", cfg.Timing, def.Timing)
	}
	if cfg.GPIO.Backend != BackendCdev {
		t.Errorf("Backend = %q, want %q", cfg.GPIO.Backend, BackendCdev)
	}
	if len(cfg.Buttons) != 0 {
		t.Errorf("Buttons = %v, want none", cfg.Buttons)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
[timing]
poll = 10ms
click_window = 400ms
long_press = 1500ms
debounce = 5
repeat_max = 7
heartbeat = 1m

[mqtt]
broker = tcp://broker.local:1883

[http]
addr = :9090

[gpio]
chip = gpiochip1
backend = periph

[button.power]
pin = 26
active = low

[button.select]
pin = 16
active = high
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Timing.Poll != 10*time.Millisecond {
		t.Errorf("Poll = %v, want 10ms", cfg.Timing.Poll)
	}
	if cfg.Timing.ClickWindow != 400*time.Millisecond {
		t.Errorf("ClickWindow = %v, want 400ms", cfg.Timing.ClickWindow)
	}
	if cfg.Timing.LongPress != 1500*time.Millisecond {
		t.Errorf("LongPress = %v, want 1.5s", cfg.Timing.LongPress)
	}
	if cfg.Timing.Debounce != 5 {
		t.Errorf("Debounce = %d, want 5", cfg.Timing.Debounce)
	}
	if cfg.Timing.RepeatMax != 7 {
		t.Errorf("RepeatMax = %d, want 7", cfg.Timing.RepeatMax)
	}
	if cfg.Timing.Heartbeat != time.Minute {
		t.Errorf("Heartbeat = %v, want 1m", cfg.Timing.Heartbeat)
	}
	if cfg.MQTT.Broker != "tcp://broker.local:1883" {
		t.Errorf("Broker = %q", cfg.MQTT.Broker)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.HTTP.Addr)
	}
	if cfg.GPIO.Chip != "gpiochip1" || cfg.GPIO.Backend != BackendPeriph {
		t.Errorf("GPIO = %+v", cfg.GPIO)
	}

	if len(cfg.Buttons) != 2 {
		t.Fatalf("got %d buttons, want 2", len(cfg.Buttons))
	}
	power := cfg.Buttons[0]
	if power.Name != "power" || power.Pin != 26 || power.Active != button.Low {
		t.Errorf("power = %+v", power)
	}
	sel := cfg.Buttons[1]
	if sel.Name != "select" || sel.Pin != 16 || sel.Active != button.High {
		t.Errorf("select = %+v", sel)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "[timing]\npoll = 20ms\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timing.Poll != 20*time.Millisecond {
		t.Errorf("Poll = %v, want 20ms", cfg.Timing.Poll)
	}
	if cfg.Timing.ClickWindow != button.DefaultClickWindow {
		t.Errorf("ClickWindow = %v, want default %v", cfg.Timing.ClickWindow, button.DefaultClickWindow)
	}
}

func TestLoadRejectsMissingPin(t *testing.T) {
	path := writeConfig(t, "[button.power]\nactive = low\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "pin") {
		t.Errorf("err = %v, want missing-pin error", err)
	}
}

func TestLoadRejectsBadActive(t *testing.T) {
	path := writeConfig(t, "[button.power]\npin = 5\nactive = sideways\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid active level")
	}
}

func TestLoadRejectsDuplicatePin(t *testing.T) {
	path := writeConfig(t, "[button.a]\npin = 5\n\n[button.b]\npin = 5\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "pin 5") {
		t.Errorf("err = %v, want shared-pin error", err)
	}
}

func TestLoadRejectsSubPollThresholds(t *testing.T) {
	path := writeConfig(t, "[timing]\npoll = 10ms\nclick_window = 5ms\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for click_window below poll interval")
	}
}

func TestParseActive(t *testing.T) {
	for in, want := range map[string]button.Level{
		"high": button.High, "HIGH": button.High, "1": button.High,
		"low": button.Low, " Low ": button.Low, "0": button.Low,
	} {
		got, err := ParseActive(in)
		if err != nil {
			t.Errorf("ParseActive(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseActive(%q) = %d, want %d", in, got, want)
		}
	}
	if _, err := ParseActive("banana"); err == nil {
		t.Error("expected error for invalid level name")
	}
}

func TestInputsAssignIDsByPosition(t *testing.T) {
	cfg := Defaults()
	cfg.Buttons = []Button{
		{Name: "a", Pin: 4, Active: button.Low},
		{Name: "b", Pin: 17, Active: button.High},
	}
	in := cfg.Inputs()
	if len(in) != 2 {
		t.Fatalf("got %d inputs, want 2", len(in))
	}
	if in[0].ID != 0 || in[0].Pin != 4 || in[0].Active != button.Low {
		t.Errorf("input 0 = %+v", in[0])
	}
	if in[1].ID != 1 || in[1].Pin != 17 || in[1].Active != button.High {
		t.Errorf("input 1 = %+v", in[1])
	}
}

func TestButtonConfig(t *testing.T) {
	cfg := Defaults()
	bc := cfg.ButtonConfig()
	if bc.TickInterval != cfg.Timing.Poll ||
		bc.ClickWindow != cfg.Timing.ClickWindow ||
		bc.LongPress != cfg.Timing.LongPress ||
		bc.DebounceTicks != cfg.Timing.Debounce ||
		bc.RepeatMax != cfg.Timing.RepeatMax {
		t.Errorf("ButtonConfig = %+v, does not mirror %+v", bc, cfg.Timing)
	}
}

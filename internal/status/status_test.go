package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/multibutton/internal/button"
)

var testConfig = Config{
	PollMs:        5,
	DebounceTicks: 3,
	ClickWindowMs: 300,
	LongPressMs:   1000,
	HeartbeatMs:   60000,
	Broker:        "tcp://broker:1883",
	HTTPAddr:      ":8080",
	Backend:       "cdev",
}

func TestTrackerRegisterAndSnapshot(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig)
	tr.SetClock(func() time.Time { return start.Add(90 * time.Second) })
	tr.Register("power", 0)
	tr.Register("select", 1)

	snap := tr.Snapshot()
	if len(snap.Buttons) != 2 {
		t.Fatalf("got %d buttons, want 2", len(snap.Buttons))
	}
	if snap.Buttons[0].Name != "power" || snap.Buttons[0].LastEvent != button.EventNone {
		t.Errorf("button 0 = %+v", snap.Buttons[0])
	}
	if snap.Config != testConfig {
		t.Errorf("Config = %+v", snap.Config)
	}
	if snap.Uptime() != 90*time.Second {
		t.Errorf("Uptime = %v, want 90s", snap.Uptime())
	}
}

func TestTrackerObserve(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig)
	tr.Register("power", 0)

	tr.Observe(0, button.EventPressDown, true, 1)
	tr.Observe(0, button.EventNone, true, 1)
	tr.Observe(0, button.EventPressUp, false, 1)
	tr.Observe(0, button.EventSingleClick, false, 1)

	snap := tr.Snapshot()
	b := snap.Buttons[0]
	if b.Pressed {
		t.Error("Pressed = true, want false after release")
	}
	// The sentinel must not overwrite the last real event.
	if b.LastEvent != button.EventSingleClick {
		t.Errorf("LastEvent = %s, want single_click", b.LastEvent)
	}
	if b.Counts.PressDown != 1 || b.Counts.PressUp != 1 || b.Counts.SingleClick != 1 {
		t.Errorf("Counts = %+v", b.Counts)
	}
	if b.Counts.DoubleClick != 0 {
		t.Errorf("DoubleClick = %d, want 0", b.Counts.DoubleClick)
	}
}

func TestTrackerObserveUnknownID(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig)
	tr.Register("power", 0)
	tr.Observe(9, button.EventPressDown, true, 1) // silently ignored

	snap := tr.Snapshot()
	if snap.Buttons[0].Counts.PressDown != 0 {
		t.Errorf("unknown id leaked into counts: %+v", snap.Buttons[0].Counts)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig)
	tr.Register("power", 0)

	snap := tr.Snapshot()
	snap.Buttons[0].Counts.PressDown = 99

	if got := tr.Snapshot().Buttons[0].Counts.PressDown; got != 0 {
		t.Errorf("mutating a snapshot leaked into the tracker: %d", got)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig)
	if tr.Snapshot().MQTTConnected {
		t.Error("initial MQTTConnected = true, want false")
	}
	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("MQTTConnected = false after SetMQTTConnected(true)")
	}
}

func TestEventCountsAdd(t *testing.T) {
	var c EventCounts
	events := []button.Event{
		button.EventPressDown, button.EventPressUp, button.EventPressRepeat,
		button.EventSingleClick, button.EventDoubleClick,
		button.EventLongPressStart, button.EventLongPressHold,
		button.EventLongPressHold,
		button.EventNone, // ignored
	}
	for _, ev := range events {
		c.Add(ev)
	}
	want := EventCounts{
		PressDown: 1, PressUp: 1, PressRepeat: 1,
		SingleClick: 1, DoubleClick: 1,
		LongPressStart: 1, LongPressHold: 2,
	}
	if c != want {
		t.Errorf("counts = %+v, want %+v", c, want)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig)
	tr.SetClock(func() time.Time { return start.Add(2 * time.Minute) })
	tr.Register("power", 0)
	tr.Observe(0, button.EventLongPressStart, true, 1)
	tr.SetMQTTConnected(true)

	payload := FormatStatusEvent(tr.Snapshot(), "HEARTBEAT", "")

	var outer map[string]any
	if err := json.Unmarshal(payload, &outer); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, ok := outer["system"].(map[string]any)
	if !ok {
		t.Fatalf("payload missing system object: %s", payload)
	}
	if got["event"] != "HEARTBEAT" {
		t.Errorf("event = %v", got["event"])
	}
	if got["uptime_seconds"] != float64(120) {
		t.Errorf("uptime_seconds = %v, want 120", got["uptime_seconds"])
	}
	if got["mqtt_connected"] != true {
		t.Errorf("mqtt_connected = %v", got["mqtt_connected"])
	}
	if _, ok := got["reason"]; ok {
		t.Error("empty reason should be omitted")
	}

	buttons, ok := got["buttons"].([]any)
	if !ok || len(buttons) != 1 {
		t.Fatalf("buttons = %v", got["buttons"])
	}
	b := buttons[0].(map[string]any)
	if b["name"] != "power" || b["last_event"] != "long_press_start" || b["pressed"] != true {
		t.Errorf("button = %v", b)
	}
}

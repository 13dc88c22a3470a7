// Package status provides a thread-safe status tracker for the buttond
// daemon. It is read by HTTP handlers and by the heartbeat publisher.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/multibutton/internal/button"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs        int64
	DebounceTicks int64
	ClickWindowMs int64
	LongPressMs   int64
	HeartbeatMs   int64
	Broker        string
	HTTPAddr      string
	Backend       string
}

// EventCounts tracks the number of each gesture since startup.
type EventCounts struct {
	PressDown      int
	PressUp        int
	PressRepeat    int
	SingleClick    int
	DoubleClick    int
	LongPressStart int
	LongPressHold  int
}

// Add increments the counter for ev; the sentinel is ignored.
func (c *EventCounts) Add(ev button.Event) {
	switch ev {
	case button.EventPressDown:
		c.PressDown++
	case button.EventPressUp:
		c.PressUp++
	case button.EventPressRepeat:
		c.PressRepeat++
	case button.EventSingleClick:
		c.SingleClick++
	case button.EventDoubleClick:
		c.DoubleClick++
	case button.EventLongPressStart:
		c.LongPressStart++
	case button.EventLongPressHold:
		c.LongPressHold++
	}
}

// ButtonStatus is the tracked state of one configured button.
type ButtonStatus struct {
	Name      string
	ID        uint8
	Pressed   bool
	LastEvent button.Event
	Repeat    uint8
	Counts    EventCounts
}

// Snapshot is a point-in-time view of daemon state. It is a value type,
// safe to use after the lock is released.
type Snapshot struct {
	Buttons       []ButtonStatus
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu      sync.RWMutex
	start   time.Time
	cfg     Config
	buttons []ButtonStatus
	byID    map[uint8]int
	mqtt    bool
	now     func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
// Buttons must be registered with Register before they are observed.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		start: startTime,
		cfg:   cfg,
		byID:  make(map[uint8]int),
		now:   time.Now,
	}
}

// Register adds a button to the tracked set. Last registration wins for a
// duplicate id.
func (t *Tracker) Register(name string, id uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.byID[id]; ok {
		t.buttons[i] = ButtonStatus{Name: name, ID: id, LastEvent: button.EventNone}
		return
	}
	t.byID[id] = len(t.buttons)
	t.buttons = append(t.buttons, ButtonStatus{Name: name, ID: id, LastEvent: button.EventNone})
}

// Observe records one tick's outcome for a button. Called from the drive
// loop after each Registry.Drive. Event counts only move on real events.
func (t *Tracker) Observe(id uint8, ev button.Event, pressed bool, repeat uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.byID[id]
	if !ok {
		return
	}
	b := &t.buttons[i]
	b.Pressed = pressed
	b.Repeat = repeat
	if ev != button.EventNone {
		b.LastEvent = ev
		b.Counts.Add(ev)
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.mqtt = connected
	t.mu.Unlock()
}

// SetClock overrides the time source. For tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	buttons := make([]ButtonStatus, len(t.buttons))
	copy(buttons, t.buttons)
	return Snapshot{
		Buttons:       buttons,
		StartTime:     t.start,
		Now:           t.now(),
		MQTTConnected: t.mqtt,
		Config:        t.cfg,
	}
}

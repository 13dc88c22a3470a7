// Package button contains pure gesture-detection logic for polled digital
// inputs. This package has NO external dependencies (no GPIO, MQTT, OS, or
// time.Sleep). Time is expressed in ticks of a fixed polling interval; the
// caller owns the scheduling that turns wall time into ticks.
package button

import (
	"errors"
	"time"
)

// Level is a logical input level as sampled from hardware.
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// LevelFunc reads the current raw level of a physical input. The id is the
// identifier given to New and selects which input to sample. Implementations
// must be synchronous and non-blocking; they are called once per tick.
type LevelFunc func(id uint8) Level

// Event is a detected button gesture.
type Event uint8

const (
	EventPressDown Event = iota
	EventPressUp
	EventPressRepeat
	EventSingleClick
	EventDoubleClick
	EventLongPressStart
	EventLongPressHold
	eventCount
	// EventNone is the sentinel recorded on ticks where nothing fired.
	EventNone
)

// String returns the snake_case name used in logs and payloads.
func (e Event) String() string {
	switch e {
	case EventPressDown:
		return "press_down"
	case EventPressUp:
		return "press_up"
	case EventPressRepeat:
		return "press_repeat"
	case EventSingleClick:
		return "single_click"
	case EventDoubleClick:
		return "double_click"
	case EventLongPressStart:
		return "long_press_start"
	case EventLongPressHold:
		return "long_press_hold"
	case EventNone:
		return "none"
	}
	return "unknown"
}

// State is a gesture state machine state.
type State uint8

const (
	StateIdle State = iota
	StatePressed
	StateReleased
	StateRepeat
	StateLongHold
)

// Callback handles a dispatched event. It runs synchronously inside
// Registry.Drive; a slow callback delays every other registered button.
type Callback func(*Button)

var (
	// ErrNilButton is returned when an operation is given a nil button.
	ErrNilButton = errors.New("button: nil button")
	// ErrNilReader is returned by New when no level reader is supplied.
	ErrNilReader = errors.New("button: nil level reader")
	// ErrInvalidEvent is returned by Attach/Detach for an event outside the
	// dispatchable set.
	ErrInvalidEvent = errors.New("button: invalid event")
	// ErrAlreadyStarted is returned by Registry.Start for a button that is
	// already registered.
	ErrAlreadyStarted = errors.New("button: already started")
)

// Default timings, taken from the reference hardware setup: a 5ms scan tick,
// three agreeing samples to accept a level change, a 300ms multi-click
// window and a 1s long-press threshold.
const (
	DefaultTickInterval  = 5 * time.Millisecond
	DefaultClickWindow   = 300 * time.Millisecond
	DefaultLongPress     = time.Second
	DefaultDebounceTicks = 3
	DefaultRepeatMax     = 15

	maxDebounceTicks = 7
)

// Config holds the timing constants for a button. Durations are converted to
// tick counts once at construction; they are not consulted again afterwards.
type Config struct {
	// TickInterval is the fixed interval at which Registry.Drive is called.
	TickInterval time.Duration
	// ClickWindow is how long after a release a further press still counts
	// toward the same multi-click sequence.
	ClickWindow time.Duration
	// LongPress is how long a press must be held before it becomes a long
	// press instead of a click.
	LongPress time.Duration
	// DebounceTicks is the number of consecutive disagreeing samples needed
	// to accept a level change (0-7; 0 disables debouncing).
	DebounceTicks uint8
	// RepeatMax caps the consecutive-press counter.
	RepeatMax uint8
}

// withDefaults fills zero fields and clamps the debounce depth.
func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.ClickWindow <= 0 {
		c.ClickWindow = DefaultClickWindow
	}
	if c.LongPress <= 0 {
		c.LongPress = DefaultLongPress
	}
	if c.DebounceTicks > maxDebounceTicks {
		c.DebounceTicks = maxDebounceTicks
	}
	if c.RepeatMax == 0 {
		c.RepeatMax = DefaultRepeatMax
	}
	return c
}

// Button is the per-input debounce and gesture state machine. Construct it
// with New, register it with a Registry, and it is stepped once per
// Registry.Drive call. A Button is not safe for concurrent use; the single
// goroutine that calls Drive owns it.
type Button struct {
	read      LevelFunc
	callbacks [eventCount]Callback

	id     uint8
	active Level // level that means "pressed"
	level  Level // last debounced, accepted level

	state    State
	event    Event
	ticks    uint16 // ticks spent in the current state
	repeat   uint8  // consecutive press cycles within the click window
	debounce uint8  // consecutive samples disagreeing with level

	shortTicks    uint16
	longTicks     uint16
	debounceTicks uint8
	repeatMax     uint8
}

// New creates a button that samples its raw level through read. The active
// level is the one that means "pressed"; the stable level starts at its
// opposite, so a button held during startup still produces a PressDown once
// the level is accepted.
func New(read LevelFunc, active Level, id uint8, cfg Config) (*Button, error) {
	if read == nil {
		return nil, ErrNilReader
	}
	cfg = cfg.withDefaults()
	b := &Button{
		read:          read,
		id:            id,
		active:        active,
		level:         inactive(active),
		state:         StateIdle,
		event:         EventNone,
		shortTicks:    uint16(cfg.ClickWindow / cfg.TickInterval),
		longTicks:     uint16(cfg.LongPress / cfg.TickInterval),
		debounceTicks: cfg.DebounceTicks,
		repeatMax:     cfg.RepeatMax,
	}
	return b, nil
}

func inactive(active Level) Level {
	if active == Low {
		return High
	}
	return Low
}

// ID returns the identifier passed to the level reader.
func (b *Button) ID() uint8 {
	if b == nil {
		return 0
	}
	return b.id
}

// Attach registers cb for ev, replacing any previous callback for that
// event. Attaching nil is equivalent to Detach.
func (b *Button) Attach(ev Event, cb Callback) error {
	if b == nil {
		return ErrNilButton
	}
	if ev >= eventCount {
		return ErrInvalidEvent
	}
	b.callbacks[ev] = cb
	return nil
}

// Detach removes the callback for ev, if any.
func (b *Button) Detach(ev Event) error {
	if b == nil {
		return ErrNilButton
	}
	if ev >= eventCount {
		return ErrInvalidEvent
	}
	b.callbacks[ev] = nil
	return nil
}

// LastEvent returns the event recorded on the most recent tick, or EventNone
// if nothing fired on that tick (or b is nil).
func (b *Button) LastEvent() Event {
	if b == nil {
		return EventNone
	}
	return b.event
}

// RepeatCount returns the consecutive-press counter, or 0 if b is nil.
func (b *Button) RepeatCount() uint8 {
	if b == nil {
		return 0
	}
	return b.repeat
}

// IsPressed reports whether the debounced level matches the active level.
// ok is false if b is nil, in which case pressed is meaningless.
func (b *Button) IsPressed() (pressed, ok bool) {
	if b == nil {
		return false, false
	}
	return b.level == b.active, true
}

// Reset forces the state machine back to idle and clears all counters and
// the recorded event. The debounced level and the callback table are kept,
// and registration with a Registry is unaffected.
func (b *Button) Reset() {
	if b == nil {
		return
	}
	b.state = StateIdle
	b.event = EventNone
	b.ticks = 0
	b.repeat = 0
	b.debounce = 0
}

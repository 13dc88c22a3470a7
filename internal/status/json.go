package status

import (
	"encoding/json"
	"time"
)

// statusPayload wraps a snapshot-bearing lifecycle event in the same outer
// object as every other message on the system topic.
type statusPayload struct {
	System statusEvent `json:"system"`
}

// statusEvent is the JSON shape of a lifecycle event carrying a full status
// snapshot (STARTUP, SHUTDOWN, HEARTBEAT system messages).
type statusEvent struct {
	Timestamp     string       `json:"timestamp"`
	Event         string       `json:"event"`
	Reason        string       `json:"reason,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	Buttons       []buttonJSON `json:"buttons"`
	MQTTConnected bool         `json:"mqtt_connected"`
	Config        configJSON   `json:"config"`
}

type buttonJSON struct {
	Name      string     `json:"name"`
	ID        uint8      `json:"id"`
	Pressed   bool       `json:"pressed"`
	LastEvent string     `json:"last_event"`
	Repeat    uint8      `json:"repeat"`
	Counts    countsJSON `json:"counts"`
}

type countsJSON struct {
	PressDown      int `json:"press_down"`
	PressUp        int `json:"press_up"`
	PressRepeat    int `json:"press_repeat"`
	SingleClick    int `json:"single_click"`
	DoubleClick    int `json:"double_click"`
	LongPressStart int `json:"long_press_start"`
	LongPressHold  int `json:"long_press_hold"`
}

type configJSON struct {
	PollMs        int64  `json:"poll_ms"`
	DebounceTicks int64  `json:"debounce_ticks"`
	ClickWindowMs int64  `json:"click_window_ms"`
	LongPressMs   int64  `json:"long_press_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr"`
	Backend       string `json:"backend"`
}

// FormatStatusEvent renders a snapshot as the payload of a lifecycle event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	se := statusEvent{
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Event:         event,
		Reason:        reason,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		Buttons:       buttonsJSON(snap),
		MQTTConnected: snap.MQTTConnected,
		Config: configJSON{
			PollMs:        snap.Config.PollMs,
			DebounceTicks: snap.Config.DebounceTicks,
			ClickWindowMs: snap.Config.ClickWindowMs,
			LongPressMs:   snap.Config.LongPressMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			HTTPAddr:      snap.Config.HTTPAddr,
			Backend:       snap.Config.Backend,
		},
	}
	data, _ := json.Marshal(statusPayload{System: se})
	return data
}

func buttonsJSON(snap Snapshot) []buttonJSON {
	out := make([]buttonJSON, len(snap.Buttons))
	for i, b := range snap.Buttons {
		out[i] = buttonJSON{
			Name:      b.Name,
			ID:        b.ID,
			Pressed:   b.Pressed,
			LastEvent: b.LastEvent.String(),
			Repeat:    b.Repeat,
			Counts: countsJSON{
				PressDown:      b.Counts.PressDown,
				PressUp:        b.Counts.PressUp,
				PressRepeat:    b.Counts.PressRepeat,
				SingleClick:    b.Counts.SingleClick,
				DoubleClick:    b.Counts.DoubleClick,
				LongPressStart: b.Counts.LongPressStart,
				LongPressHold:  b.Counts.LongPressHold,
			},
		}
	}
	return out
}

package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/multibutton/internal/status"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Buttons       []ButtonJSON `json:"buttons"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Config        ConfigJSON   `json:"config"`
}

// ButtonJSON is the JSON representation of one tracked button.
type ButtonJSON struct {
	Name      string     `json:"name"`
	ID        uint8      `json:"id"`
	Pressed   bool       `json:"pressed"`
	LastEvent string     `json:"last_event"`
	Repeat    uint8      `json:"repeat"`
	Counts    CountsJSON `json:"event_counts"`
}

// CountsJSON is the JSON representation of per-button event counts.
type CountsJSON struct {
	PressDown      int `json:"press_down"`
	PressUp        int `json:"press_up"`
	PressRepeat    int `json:"press_repeat"`
	SingleClick    int `json:"single_click"`
	DoubleClick    int `json:"double_click"`
	LongPressStart int `json:"long_press_start"`
	LongPressHold  int `json:"long_press_hold"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs        int64  `json:"poll_ms"`
	DebounceTicks int64  `json:"debounce_ticks"`
	ClickWindowMs int64  `json:"click_window_ms"`
	LongPressMs   int64  `json:"long_press_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr"`
	Backend       string `json:"backend"`
}

func formatJSON(snap status.Snapshot) []byte {
	buttons := make([]ButtonJSON, len(snap.Buttons))
	for i, b := range snap.Buttons {
		buttons[i] = ButtonJSON{
			Name:      b.Name,
			ID:        b.ID,
			Pressed:   b.Pressed,
			LastEvent: b.LastEvent.String(),
			Repeat:    b.Repeat,
			Counts: CountsJSON{
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

	sj := StatusJSON{
		Status: StatusInner{
			Buttons:       buttons,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
			Config: ConfigJSON{
				PollMs:        snap.Config.PollMs,
				DebounceTicks: snap.Config.DebounceTicks,
				ClickWindowMs: snap.Config.ClickWindowMs,
				LongPressMs:   snap.Config.LongPressMs,
				HeartbeatMs:   snap.Config.HeartbeatMs,
				Broker:        snap.Config.Broker,
				HTTPAddr:      snap.Config.HTTPAddr,
				Backend:       snap.Config.Backend,
			},
		},
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}

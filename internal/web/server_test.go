package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/multibutton/internal/button"
	"github.com/sweeney/multibutton/internal/status"
)

func newTestServer(t *testing.T) (*Server, string, *status.Tracker) {
	t.Helper()

	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tracker := status.NewTracker(start, status.Config{
		PollMs:        5,
		DebounceTicks: 3,
		ClickWindowMs: 300,
		LongPressMs:   1000,
		Broker:        "tcp://broker:1883",
		HTTPAddr:      ":0",
		Backend:       "cdev",
	})
	tracker.SetClock(func() time.Time { return start.Add(time.Minute) })
	tracker.Register("power", 0)

	srv := New(":0", tracker)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	return srv, "http://" + ln.Addr().String(), tracker
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestIndexHTML(t *testing.T) {
	_, base, tracker := newTestServer(t)
	tracker.Observe(0, button.EventSingleClick, false, 1)

	resp, body := get(t, base+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	for _, want := range []string{"power", "single_click", "buttond", "tcp://broker:1883"} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestIndexJSON(t *testing.T) {
	_, base, tracker := newTestServer(t)
	tracker.Observe(0, button.EventPressDown, true, 1)
	tracker.Observe(0, button.EventLongPressStart, true, 1)
	tracker.SetMQTTConnected(true)

	resp, body := get(t, base+"/index.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var sj StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("unmarshal: %v\nbody: %s", err, body)
	}
	if len(sj.Status.Buttons) != 1 {
		t.Fatalf("buttons = %+v", sj.Status.Buttons)
	}
	b := sj.Status.Buttons[0]
	if b.Name != "power" || !b.Pressed || b.LastEvent != "long_press_start" {
		t.Errorf("button = %+v", b)
	}
	if b.Counts.PressDown != 1 || b.Counts.LongPressStart != 1 {
		t.Errorf("counts = %+v", b.Counts)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("mqtt.connected = false, want true")
	}
	if sj.Status.UptimeSeconds != 60 {
		t.Errorf("uptime_seconds = %d, want 60", sj.Status.UptimeSeconds)
	}
	if sj.Status.Config.PollMs != 5 || sj.Status.Config.Backend != "cdev" {
		t.Errorf("config = %+v", sj.Status.Config)
	}
}

func TestUnknownPath(t *testing.T) {
	_, base, _ := newTestServer(t)
	resp, _ := get(t, base+"/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestIndexHTMLEscapesNames(t *testing.T) {
	_, base, tracker := newTestServer(t)
	tracker.Register("<script>alert(1)</script>", 1)

	_, body := get(t, base+"/")
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("button name was not HTML-escaped")
	}
}

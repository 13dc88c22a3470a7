package gpio

import (
	"fmt"

	"github.com/sweeney/multibutton/internal/button"
)

// FakeReader is a test double that returns scripted levels per input id.
// Each Level call for an id consumes the next scripted sample; once a
// script is exhausted, the last sample repeats.
type FakeReader struct {
	samples map[uint8][]button.Level
	index   map[uint8]int

	// Closed tracks if Close was called.
	Closed bool

	// ReadError, if set, is returned by every Level call.
	ReadError error
}

// NewFakeReader creates an empty FakeReader; script inputs with Script.
func NewFakeReader() *FakeReader {
	return &FakeReader{
		samples: make(map[uint8][]button.Level),
		index:   make(map[uint8]int),
	}
}

// Script appends samples for the given input id.
func (f *FakeReader) Script(id uint8, samples ...button.Level) {
	f.samples[id] = append(f.samples[id], samples...)
}

// Level returns the next scripted sample for id.
func (f *FakeReader) Level(id uint8) (button.Level, error) {
	if f.ReadError != nil {
		return button.Low, f.ReadError
	}
	s, ok := f.samples[id]
	if !ok || len(s) == 0 {
		return button.Low, fmt.Errorf("no samples configured for input id %d", id)
	}
	i := f.index[id]
	if i < len(s)-1 {
		f.index[id] = i + 1
	}
	return s[i], nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Rewind resets every script to its beginning.
func (f *FakeReader) Rewind() {
	f.index = make(map[uint8]int)
	f.Closed = false
}

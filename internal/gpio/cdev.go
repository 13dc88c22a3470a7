//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/multibutton/internal/button"
)

// CdevReader reads input lines from actual hardware using the Linux GPIO
// character device.
type CdevReader struct {
	chip  *gpiocdev.Chip
	lines map[uint8]*gpiocdev.Line
}

// NewCdevReader opens the named chip and requests each input as a biased
// input line. Active-low inputs get a pull-up, active-high a pull-down, so
// an unpressed button rests at its inactive level.
func NewCdevReader(chipName string, inputs []Input) (*CdevReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	r := &CdevReader{
		chip:  chip,
		lines: make(map[uint8]*gpiocdev.Line, len(inputs)),
	}

	for _, in := range inputs {
		opts := []gpiocdev.LineReqOption{gpiocdev.AsInput}
		if in.Active == button.Low {
			opts = append(opts, gpiocdev.WithPullUp)
		} else {
			opts = append(opts, gpiocdev.WithPullDown)
		}
		line, err := chip.RequestLine(in.Pin, opts...)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request pin %d: %w", in.Pin, err)
		}
		r.lines[in.ID] = line
	}

	return r, nil
}

// Level returns the current raw level of the line registered under id.
func (r *CdevReader) Level(id uint8) (button.Level, error) {
	line, ok := r.lines[id]
	if !ok {
		return button.Low, fmt.Errorf("gpio: no line for input id %d", id)
	}
	v, err := line.Value()
	if err != nil {
		return button.Low, fmt.Errorf("read input id %d: %w", id, err)
	}
	if v != 0 {
		return button.High, nil
	}
	return button.Low, nil
}

// Close releases all requested lines and the chip.
func (r *CdevReader) Close() error {
	var errs []error
	for id, line := range r.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input id %d: %w", id, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

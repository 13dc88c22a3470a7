package gpio

import (
	"fmt"
	"strconv"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/sweeney/multibutton/internal/button"
)

// PeriphReader reads input lines through periph.io host drivers. It is an
// alternative to the character-device backend for boards periph supports.
type PeriphReader struct {
	pins map[uint8]pgpio.PinIO
}

// NewPeriphReader initializes the periph host and configures each input as
// a pulled input pin. Pins are looked up in the registry by BCM number.
func NewPeriphReader(inputs []Input) (*PeriphReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	pins := make(map[uint8]pgpio.PinIO, len(inputs))
	for _, in := range inputs {
		name := strconv.Itoa(in.Pin)
		p := gpioreg.ByName(name)
		if p == nil {
			p = gpioreg.ByName("GPIO" + name)
		}
		if p == nil {
			return nil, fmt.Errorf("gpio: no pin %d in periph registry", in.Pin)
		}
		pull := pgpio.PullDown
		if in.Active == button.Low {
			pull = pgpio.PullUp
		}
		if err := p.In(pull, pgpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure pin %s: %w", p.Name(), err)
		}
		pins[in.ID] = p
	}

	return &PeriphReader{pins: pins}, nil
}

// Level returns the current raw level of the pin registered under id.
func (r *PeriphReader) Level(id uint8) (button.Level, error) {
	p, ok := r.pins[id]
	if !ok {
		return button.Low, fmt.Errorf("gpio: no pin for input id %d", id)
	}
	if p.Read() == pgpio.High {
		return button.High, nil
	}
	return button.Low, nil
}

// Close halts all configured pins.
func (r *PeriphReader) Close() error {
	var errs []error
	for id, p := range r.pins {
		if err := p.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt input id %d: %w", id, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// Package gpio provides raw level reading for button inputs with hardware
// abstraction. The cdev implementation uses the Linux GPIO character device,
// the periph implementation uses periph.io host drivers, and the fake
// implementation allows testing without hardware.
package gpio

import "github.com/sweeney/multibutton/internal/button"

// Reader samples the raw level of configured input lines.
type Reader interface {
	// Level returns the current raw level of the input registered under id.
	Level(id uint8) (button.Level, error)

	// Close releases hardware resources.
	Close() error
}

// Input describes one physical input line to request.
type Input struct {
	// ID is the identifier the button core passes back when sampling.
	ID uint8
	// Pin is the line offset (BCM numbering on Raspberry Pi).
	Pin int
	// Active is the level that means "pressed"; it selects the bias so the
	// idle line rests at the opposite level.
	Active button.Level
}

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"

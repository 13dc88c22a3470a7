//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/multibutton/internal/button"
)

// CdevReader is not available on non-Linux platforms.
type CdevReader struct{}

// NewCdevReader returns an error on non-Linux platforms.
func NewCdevReader(chipName string, inputs []Input) (*CdevReader, error) {
	return nil, errors.New("gpio: character device not supported on this platform (requires Linux)")
}

// Level is not implemented on non-Linux platforms.
func (r *CdevReader) Level(id uint8) (button.Level, error) {
	return button.Low, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *CdevReader) Close() error {
	return nil
}

//go:build !tinygo && !cgo

package hal

import (
	"context"
	"errors"
	"time"
)

// WindowConfig controls the desktop emulator window.
type WindowConfig struct {
	Scale      int
	Knob       *uint16
	PanelDelay time.Duration
}

func RunWindow(_ func(context.Context, HAL) error, _ WindowConfig) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}

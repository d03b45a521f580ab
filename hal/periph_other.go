//go:build !linux && !tinygo

package hal

import "errors"

type PeriphConfig struct {
	KnobADC bool
	Knob    uint16
}

func DefaultPeriphConfig() PeriphConfig { return PeriphConfig{Knob: DefaultKnob} }

type PeriphHAL struct{ HAL }

func (h *PeriphHAL) Close() error { return nil }

func NewPeriph(PeriphConfig) (*PeriphHAL, error) {
	return nil, errors.New("periph: board backend is linux only")
}

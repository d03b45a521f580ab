//go:build tinygo && baremetal

package hal

import (
	"machine"
)

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetPeriod(period uint64) error
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

// pwmTone drives the piezo with a 50% duty square wave at the note frequency.
type pwmTone struct {
	pin     machine.Pin
	pwm     pwmDevice
	ch      uint8
	started bool
}

func newPWMTone(pin machine.Pin) *pwmTone {
	return &pwmTone{pin: pin, pwm: pwmForPin(pin)}
}

func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

func (t *pwmTone) Play(hz uint32) error {
	if t.pwm == nil {
		return ErrNotImplemented
	}
	if hz == 0 {
		return t.Stop()
	}
	period := uint64(1e9) / uint64(hz)
	if !t.started {
		if err := t.pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
			return err
		}
		ch, err := t.pwm.Channel(t.pin)
		if err != nil {
			return err
		}
		t.ch = ch
		t.started = true
	} else if err := t.pwm.SetPeriod(period); err != nil {
		return err
	}
	t.pwm.Set(t.ch, t.pwm.Top()/2)
	t.pwm.Enable(true)
	return nil
}

func (t *pwmTone) Stop() error {
	if t.pwm == nil || !t.started {
		return nil
	}
	t.pwm.Set(t.ch, 0)
	return nil
}

//go:build tinygo && baremetal

package hal

import (
	"machine"
)

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

// machinePin adapts a machine.Pin to GPIOPin. Pull-ups are internal on
// inputs that ask for one.
type machinePin struct {
	pin    machine.Pin
	name   string
	pullUp bool
}

func (p machinePin) Name() string { return p.name }

func (p machinePin) Caps() GPIOCaps {
	caps := GPIOCapInput | GPIOCapOutput
	if p.pullUp {
		caps |= GPIOCapPullUp
	}
	return caps
}

func (p machinePin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := checkPinConfig(p.name, p.Caps(), mode, pull); err != nil {
		return err
	}
	cfg := machine.PinConfig{Mode: machine.PinInput}
	switch {
	case mode == GPIOModeOutput:
		cfg.Mode = machine.PinOutput
	case pull == GPIOPullUp:
		cfg.Mode = machine.PinInputPullup
	}
	p.pin.Configure(cfg)
	return nil
}

func (p machinePin) Read() (bool, error) { return p.pin.Get(), nil }

func (p machinePin) Write(level bool) error {
	p.pin.Set(level)
	return nil
}

package hal

import (
	"errors"
	"fmt"
)

var ErrBadPinout = errors.New("hal: bad pinout")

// PinMatrix is a KeyMatrix on plain GPIO. Output lines are active-low and
// inputs read low while their switch is closed.
type PinMatrix struct {
	out []GPIOPin
	in  []GPIOPin
}

// NewPinMatrix configures the output lines high (idle) and the inputs with a
// pull-up where the pin has one; the board provides external pull-ups otherwise.
func NewPinMatrix(out, in []GPIOPin) (*PinMatrix, error) {
	if len(out) == 0 || len(in) == 0 || len(in) > 8 {
		return nil, fmt.Errorf("%w: matrix needs outputs and 1-8 inputs", ErrBadPinout)
	}
	for _, p := range out {
		if err := p.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
			return nil, err
		}
		if err := p.Write(true); err != nil {
			return nil, err
		}
	}
	for _, p := range in {
		pull := GPIOPullNone
		if p.Caps()&GPIOCapPullUp != 0 {
			pull = GPIOPullUp
		}
		if err := p.Configure(GPIOModeInput, pull); err != nil {
			return nil, err
		}
	}
	return &PinMatrix{out: out, in: in}, nil
}

func (m *PinMatrix) Lines() int { return len(m.out) }

// Select releases every other line before pulling the requested one low.
func (m *PinMatrix) Select(line int) error {
	if line < 0 || line >= len(m.out) {
		return fmt.Errorf("%w: matrix line %d", ErrBadPinout, line)
	}
	for i, p := range m.out {
		if i == line {
			continue
		}
		if err := p.Write(true); err != nil {
			return err
		}
	}
	return m.out[line].Write(false)
}

func (m *PinMatrix) Sense() (uint8, error) {
	var bits uint8
	for i, p := range m.in {
		level, err := p.Read()
		if err != nil {
			return 0, err
		}
		if !level {
			bits |= 1 << i
		}
	}
	return bits, nil
}

// PinSegments is a SegmentBus on plain GPIO: eight segment lines a..g, dp
// (active high) and active-high digit commons.
type PinSegments struct {
	seg   [8]GPIOPin
	digit []GPIOPin
}

func NewPinSegments(seg [8]GPIOPin, digit []GPIOPin) (*PinSegments, error) {
	if len(digit) == 0 {
		return nil, fmt.Errorf("%w: no digit lines", ErrBadPinout)
	}
	for _, p := range seg {
		if p == nil {
			return nil, fmt.Errorf("%w: missing segment line", ErrBadPinout)
		}
		if err := p.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
			return nil, err
		}
	}
	for _, p := range digit {
		if err := p.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
			return nil, err
		}
	}
	s := &PinSegments{seg: seg, digit: digit}
	if err := s.DisableDigits(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PinSegments) Digits() int { return len(s.digit) }

func (s *PinSegments) SetSegments(pattern uint8) error {
	for i, p := range s.seg {
		if err := p.Write(pattern&(0x80>>i) != 0); err != nil {
			return err
		}
	}
	return nil
}

func (s *PinSegments) EnableDigit(digit int) error {
	if digit < 0 || digit >= len(s.digit) {
		return fmt.Errorf("%w: digit %d", ErrBadPinout, digit)
	}
	for i, p := range s.digit {
		if i == digit {
			continue
		}
		if err := p.Write(false); err != nil {
			return err
		}
	}
	return s.digit[digit].Write(true)
}

func (s *PinSegments) DisableDigits() error {
	for _, p := range s.digit {
		if err := p.Write(false); err != nil {
			return err
		}
	}
	return nil
}

package hal

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// Button bits as reported by the key matrix.
const (
	ButtonUp    uint8 = 0x01
	ButtonLeft  uint8 = 0x02
	ButtonDown  uint8 = 0x04
	ButtonRight uint8 = 0x08
	ButtonA     uint8 = 0x10
	ButtonB     uint8 = 0x20
	ButtonMask  uint8 = 0x3F
)

// MatrixLayout maps [output line][input bit] to the button wired there.
var MatrixLayout = [2][3]uint8{
	{ButtonUp, ButtonRight, ButtonB},
	{ButtonLeft, ButtonDown, ButtonA},
}

// KeyMatrix is a scanned button matrix: one output line is driven at a time
// and the input lines report which switches on that line are closed.
type KeyMatrix interface {
	Lines() int
	Select(line int) error
	// Sense returns one bit per input line that reads closed.
	Sense() (uint8, error)
}

// SegmentBus is a multiplexed 7-segment display: eight shared segment lines
// (bit 7 = a ... bit 1 = g, bit 0 = dp) and one common line per digit.
type SegmentBus interface {
	Digits() int
	SetSegments(pattern uint8) error
	// EnableDigit drives exactly one common line; any other is released.
	EnableDigit(digit int) error
	DisableDigits() error
}

// Tone is the square-wave generator behind the piezo buzzer.
type Tone interface {
	Play(hz uint32) error
	Stop() error
}

// Panel is a monochrome graphic display with an off-screen buffer.
// Display pushes the buffer to the glass.
type Panel interface {
	drivers.Displayer
	ClearBuffer()
}

// AnalogMax is the largest raw reading an Analog reports.
const AnalogMax = 3300

// Analog is a single ADC channel. ReadRaw returns a raw reading in
// 0..AnalogMax.
type Analog interface {
	ReadRaw() (uint16, error)
}

// HAL provides the only contact point between the firmware and the board.
type HAL interface {
	Logger() Logger
	Matrix() KeyMatrix
	Segments() SegmentBus
	Tone() Tone
	Panel() Panel
	Analog() Analog
}

package knob

import (
	"fmt"
	"sync"

	"torch/hal"
	"torch/internal/mathx"
)

// FullScale is the raw reading treated as 100%. The ADC saturates a little
// below the 3.3V rail.
const FullScale = 3270

// Reader reads the analog control. It is safe for concurrent use.
type Reader struct {
	mu  sync.Mutex
	adc hal.Analog
}

func New(adc hal.Analog) *Reader {
	return &Reader{adc: adc}
}

func (r *Reader) ReadRaw() (uint16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, err := r.adc.ReadRaw()
	if err != nil {
		return 0, fmt.Errorf("knob: %w", err)
	}
	return v, nil
}

// ReadPercent reads the control and maps it with ToPercent.
func (r *Reader) ReadPercent() (uint8, error) {
	raw, err := r.ReadRaw()
	if err != nil {
		return 0, err
	}
	return ToPercent(raw), nil
}

// ToPercent maps 0..FullScale onto 0..100; readings past full scale clamp.
func ToPercent(raw uint16) uint8 {
	return uint8(mathx.Min(mathx.Scale[uint32](uint32(raw), 100, FullScale), 100))
}

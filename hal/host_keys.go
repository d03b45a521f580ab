//go:build !tinygo

package hal

import (
	"sync/atomic"

	"torch/internal/mathx"
)

// hostKeys holds the set of buttons currently held on the host.
type hostKeys struct {
	held atomic.Uint32
}

func (k *hostKeys) get() uint8     { return uint8(k.held.Load()) & ButtonMask }
func (k *hostKeys) set(mask uint8) { k.held.Store(uint32(mask & ButtonMask)) }

const knobStep = 20

type hostKnob struct {
	raw atomic.Uint32
}

func newHostKnob(raw uint16) *hostKnob {
	k := &hostKnob{}
	k.set(int(raw))
	return k
}

func (k *hostKnob) ReadRaw() (uint16, error) { return uint16(k.raw.Load()), nil }

func (k *hostKnob) turn(delta int) { k.set(int(k.raw.Load()) + delta) }

func (k *hostKnob) set(v int) { k.raw.Store(uint32(mathx.Clamp(v, 0, AnalogMax))) }

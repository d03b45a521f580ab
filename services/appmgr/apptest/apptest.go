// Package apptest provides in-memory drivers for exercising apps without the
// scheduler or hardware.
package apptest

import (
	"image"

	"torch/services/appmgr"
	"torch/services/keymatrix"
	"torch/services/segment"
)

type Buttons struct {
	Held    uint8
	Pending uint8
}

func (b *Buttons) Status() uint8 { return b.Held }

func (b *Buttons) WasReleased(mask uint8) uint8 {
	r := b.Pending & mask
	b.Pending &^= mask
	return r
}

func (b *Buttons) AllPressed() bool { return b.Held == keymatrix.Mask }

// Release queues a release event for the given buttons.
func (b *Buttons) Release(mask uint8) { b.Pending |= mask }

// Buzzer records every request; a stop is recorded as 0 Hz.
type Buzzer struct {
	Tones []uint32
}

func (b *Buzzer) StartTone(hz uint32) error {
	b.Tones = append(b.Tones, hz)
	return nil
}

func (b *Buzzer) StopTone() error {
	b.Tones = append(b.Tones, 0)
	return nil
}

// Current is the last requested frequency, 0 when silent.
func (b *Buzzer) Current() uint32 {
	if len(b.Tones) == 0 {
		return 0
	}
	return b.Tones[len(b.Tones)-1]
}

// Graphics keeps the lines drawn since the last Clear.
type Graphics struct {
	Lines   []string
	Shown   []string
	Updates int
}

func (g *Graphics) Clear() error {
	g.Lines = nil
	return nil
}

func (g *Graphics) DrawText(text string, _ image.Point) error {
	g.Lines = append(g.Lines, text)
	return nil
}

func (g *Graphics) Update() error {
	g.Updates++
	g.Shown = append([]string(nil), g.Lines...)
	return nil
}

type Segments struct {
	Frame      [segment.NumDigits]uint8
	Brightness [segment.NumDigits]uint8
	Writes     int
}

func (s *Segments) Write(f [segment.NumDigits]uint8) {
	s.Frame = f
	s.Writes++
}

func (s *Segments) SetBrightness(b [segment.NumDigits]uint8) { s.Brightness = b }

type Knob struct {
	Raw uint16
	Err error
}

func (k *Knob) ReadRaw() (uint16, error) { return k.Raw, k.Err }

// Rig bundles one of each fake with a context wired to them.
type Rig struct {
	Buttons  *Buttons
	Buzzer   *Buzzer
	Graphics *Graphics
	Segments *Segments
	Knob     *Knob
	Ctx      *appmgr.Context
}

func New() *Rig {
	r := &Rig{
		Buttons:  &Buttons{},
		Buzzer:   &Buzzer{},
		Graphics: &Graphics{},
		Segments: &Segments{},
		Knob:     &Knob{},
	}
	r.Ctx = &appmgr.Context{
		Buttons:  r.Buttons,
		Buzzer:   r.Buzzer,
		Graphics: r.Graphics,
		Segments: r.Segments,
		Knob:     r.Knob,
	}
	return r
}

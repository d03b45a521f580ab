package appmgr

import (
	"image"

	"torch/services/logger"
	"torch/services/segment"
)

// App is a mini-application run by the scheduler. Instances live for the
// whole process and are re-initialized on every launch.
type App interface {
	Name() string
	Initialize(ctx *Context)
	Update(ctx *Context, frame uint64) error
	Finalize(ctx *Context)
	Finished() bool
}

type Buttons interface {
	Status() uint8
	WasReleased(mask uint8) uint8
	AllPressed() bool
}

type Buzzer interface {
	StartTone(hz uint32) error
	StopTone() error
}

type Graphics interface {
	Clear() error
	DrawText(text string, at image.Point) error
	Update() error
}

type Segments interface {
	Write(frame [segment.NumDigits]uint8)
	SetBrightness(b [segment.NumDigits]uint8)
}

type Knob interface {
	ReadRaw() (uint16, error)
}

// Context is the set of drivers shared by the scheduler and the active app.
type Context struct {
	Buttons  Buttons
	Buzzer   Buzzer
	Graphics Graphics
	Segments Segments
	Knob     Knob
	Log      *logger.Logger
}

// LineHeight is the row pitch used by Show.
const LineHeight = 12

// Show repaints the panel with one line of text per row. A busy panel drops
// the repaint.
func (c *Context) Show(lines ...string) {
	err := c.Graphics.Clear()
	for i := 0; i < len(lines) && err == nil; i++ {
		err = c.Graphics.DrawText(lines[i], image.Pt(0, i*LineHeight))
	}
	if err == nil {
		err = c.Graphics.Update()
	}
	if err != nil {
		c.Log.Infof("panel: %v (frame dropped)", err)
	}
}

// FullBrightness lights every digit for its whole slot.
var FullBrightness = [segment.NumDigits]uint8{
	segment.MaxBrightness, segment.MaxBrightness, segment.MaxBrightness, segment.MaxBrightness,
}

package meter

import (
	"fmt"

	"torch/internal/mathx"
	"torch/services/appmgr"
	"torch/services/keymatrix"
	"torch/services/knob"
	"torch/services/segment"
)

const brightnessStep = 10

// Task shows the knob position in tenths of a percent. Up and Down set the
// digit brightness, B leaves.
type Task struct {
	brightness uint8
	lastRaw    int32
	finished   bool
}

func New() *Task { return &Task{brightness: segment.MaxBrightness} }

func (t *Task) Name() string { return "Knob meter" }

func (t *Task) Brightness() uint8 { return t.brightness }

func (t *Task) Initialize(ctx *appmgr.Context) {
	t.brightness = segment.MaxBrightness
	t.lastRaw = -1
	t.finished = false
	ctx.Segments.SetBrightness(appmgr.FullBrightness)
}

func (t *Task) Update(ctx *appmgr.Context, _ uint64) error {
	released := ctx.Buttons.WasReleased(keymatrix.Mask)
	if released&keymatrix.B != 0 {
		t.finished = true
		return nil
	}

	b := t.brightness
	if released&keymatrix.Up != 0 {
		b = mathx.Min(b+brightnessStep, segment.MaxBrightness)
	}
	if released&keymatrix.Down != 0 {
		b -= mathx.Min(b, brightnessStep)
	}
	if b != t.brightness {
		t.brightness = b
		ctx.Segments.SetBrightness([segment.NumDigits]uint8{b, b, b, b})
	}

	raw, err := ctx.Knob.ReadRaw()
	if err != nil {
		return err
	}
	frame, err := Digits(raw)
	if err != nil {
		return err
	}
	ctx.Segments.Write(frame)

	if int32(raw) != t.lastRaw {
		t.lastRaw = int32(raw)
		ctx.Show(t.Name(), fmt.Sprintf("raw  %4d", raw), fmt.Sprintf("knob %3d %%", knob.ToPercent(raw)))
	}
	return nil
}

// Digits renders the reading as a percentage with one decimal, e.g. " 50.0".
func Digits(raw uint16) ([segment.NumDigits]uint8, error) {
	tenths := mathx.Min(mathx.Scale[uint32](uint32(raw), 1000, knob.FullScale), 1000)
	text := fmt.Sprintf("%3d.%d", tenths/10, tenths%10)
	frame, ok := segment.Parse(text)
	if !ok {
		return frame, fmt.Errorf("meter: cannot display %q", text)
	}
	return frame, nil
}

func (t *Task) Finalize(*appmgr.Context) {}

func (t *Task) Finished() bool { return t.finished }

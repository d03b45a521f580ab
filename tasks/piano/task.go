package piano

import (
	"fmt"

	"torch/services/appmgr"
	"torch/services/keymatrix"
	"torch/services/segment"
)

// Notes maps a held-button set to a base frequency in Hz (C5..B5). There are
// only six buttons, so B5 is the A+B chord.
var Notes = map[uint8]uint32{
	keymatrix.Up:              523,
	keymatrix.Left:            587,
	keymatrix.Down:            659,
	keymatrix.Right:           698,
	keymatrix.B:               783,
	keymatrix.A:               880,
	keymatrix.A | keymatrix.B: 988,
}

// Octave returns the knob's frequency multiplier as a fraction.
func Octave(raw uint16) (num, den uint32) {
	switch {
	case raw < 1000:
		return 1, 2
	case raw < 2000:
		return 1, 1
	case raw < 3000:
		return 2, 1
	default:
		return 4, 1
	}
}

// Task plays a note while a button chord is held.
type Task struct {
	prev     uint8
	finished bool
}

func New() *Task { return &Task{} }

func (t *Task) Name() string { return "Toy piano" }

func (t *Task) Initialize(ctx *appmgr.Context) {
	t.prev = 0
	t.finished = false
	ctx.Show(t.Name(), "hold to play", "knob: octave")
}

func (t *Task) Update(ctx *appmgr.Context, _ uint64) error {
	held := ctx.Buttons.Status()
	if held == keymatrix.Mask {
		t.finished = true
		return nil
	}

	raw, err := ctx.Knob.ReadRaw()
	if err != nil {
		return err
	}

	if held != t.prev {
		if err := t.play(ctx, held, raw); err != nil {
			return err
		}
	}
	t.prev = held

	ctx.Segments.Write(segment.Number(uint(raw), true))
	return nil
}

func (t *Task) play(ctx *appmgr.Context, held uint8, raw uint16) error {
	if held == 0 {
		return ctx.Buzzer.StopTone()
	}
	base, ok := Notes[held]
	if !ok {
		// Chords without a note keep the current tone.
		return nil
	}
	num, den := Octave(raw)
	hz := base * num / den
	if err := ctx.Buzzer.StartTone(hz); err != nil {
		return fmt.Errorf("piano: %w", err)
	}
	ctx.Log.Debugf("note %d Hz", hz)
	return nil
}

func (t *Task) Finalize(ctx *appmgr.Context) {
	if err := ctx.Buzzer.StopTone(); err != nil {
		ctx.Log.Infof("piano: %v", err)
	}
}

func (t *Task) Finished() bool { return t.finished }

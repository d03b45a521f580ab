package pomodoro

import (
	"torch/services/appmgr"
	"torch/services/keymatrix"
	"torch/services/knob"
	"torch/services/segment"
)

const (
	WorkSeconds = 25 * 60
	RestSeconds = 5 * 60

	framesPerSecond = 60
	blinkFrames     = 30

	beepHz     = 1760
	beepFrames = 6
)

type State uint8

const (
	Preparing State = iota
	Working
	WorkingPaused
	Resting
	RestingPaused
)

func (s State) String() string {
	switch s {
	case Preparing:
		return "Ready"
	case Working:
		return "Working"
	case WorkingPaused:
		return "Working (paused)"
	case Resting:
		return "Resting"
	case RestingPaused:
		return "Resting (paused)"
	default:
		return "?"
	}
}

// Task is a work/rest countdown. A starts and pauses, B resets, Down skips
// ahead.
type Task struct {
	state     State
	remaining uint32
	beep      appmgr.Beep
}

func New() *Task {
	return &Task{remaining: WorkSeconds}
}

func (t *Task) Name() string { return "Pomodoro" }

func (t *Task) State() State      { return t.state }
func (t *Task) Remaining() uint32 { return t.remaining }

func (t *Task) Initialize(ctx *appmgr.Context) {
	t.state = Preparing
	t.remaining = WorkSeconds
	t.beep.Reset()
	ctx.Segments.Write(Digits(t.remaining, false))
	t.show(ctx)
}

func (t *Task) Update(ctx *appmgr.Context, frame uint64) error {
	t.beep.Tick(ctx, frame)

	released := ctx.Buttons.WasReleased(keymatrix.Mask)
	toggle := released&keymatrix.A != 0

	raw, err := ctx.Knob.ReadRaw()
	if err != nil {
		return err
	}
	b := knob.ToPercent(raw)
	ctx.Segments.SetBrightness([segment.NumDigits]uint8{b, b, b, b})

	sub := frame % framesPerSecond
	dot := sub < blinkFrames

	if released&keymatrix.Down != 0 {
		switch {
		case t.remaining > 60:
			t.remaining -= 60
		case t.remaining > 10:
			t.remaining -= 10
		}
		ctx.Segments.Write(Digits(t.remaining, false))
	}

	if released&keymatrix.B != 0 {
		t.enter(ctx, frame, Preparing, WorkSeconds, false)
		ctx.Segments.Write(Digits(t.remaining, false))
		return nil
	}

	switch t.state {
	case Preparing:
		if toggle {
			t.enter(ctx, frame, Working, t.remaining, true)
		}
	case Working:
		t.tick(sub)
		if toggle {
			t.enter(ctx, frame, WorkingPaused, t.remaining, false)
		}
		if t.remaining == 0 {
			t.enter(ctx, frame, Resting, RestSeconds, true)
		}
		ctx.Segments.Write(Digits(t.remaining, dot))
	case WorkingPaused:
		if toggle {
			t.enter(ctx, frame, Working, t.remaining, false)
		}
	case Resting:
		t.tick(sub)
		if toggle {
			t.enter(ctx, frame, RestingPaused, t.remaining, false)
		}
		if t.remaining == 0 {
			t.enter(ctx, frame, Preparing, WorkSeconds, true)
		}
		ctx.Segments.Write(Digits(t.remaining, dot))
	case RestingPaused:
		if toggle {
			t.enter(ctx, frame, Resting, t.remaining, false)
		}
	}
	return nil
}

func (t *Task) tick(sub uint64) {
	if sub == 0 && t.remaining > 0 {
		t.remaining--
	}
}

func (t *Task) enter(ctx *appmgr.Context, frame uint64, s State, remaining uint32, beep bool) {
	ctx.Log.Debugf("pomodoro: %v -> %v", t.state, s)
	t.state = s
	t.remaining = remaining
	if beep {
		t.beep.Start(ctx, frame, beepHz, beepFrames)
	}
	t.show(ctx)
}

func (t *Task) show(ctx *appmgr.Context) {
	ctx.Show(t.Name(), t.state.String())
}

func (t *Task) Finalize(ctx *appmgr.Context) {
	t.beep.Reset()
}

// Pomodoro only ends through the abort chord.
func (t *Task) Finished() bool { return false }

// Digits renders seconds as MM.SS. The tens of minutes go dark below ten
// minutes and dot lights the decimal point after the minutes.
func Digits(seconds uint32, dot bool) [segment.NumDigits]uint8 {
	m, s := seconds/60, seconds%60
	var out [segment.NumDigits]uint8
	if m/10 != 0 {
		out[0] = segment.Digits[m/10%10]
	}
	out[1] = segment.Digits[m%10]
	if dot {
		out[1] |= segment.Dot
	}
	out[2] = segment.Digits[s/10]
	out[3] = segment.Digits[s%10]
	return out
}

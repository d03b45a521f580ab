package slot

import (
	"fmt"

	"torch/services/appmgr"
	"torch/services/keymatrix"
	"torch/services/segment"
)

// Reels is the roll-in animation for each number: frames 0-4 build the digit
// from the top and frame 5 is dark.
var Reels = [10][reelFrames]uint8{
	{0x10, 0x18, 0x3C, 0x7C, 0xFD, 0x00},
	{0x00, 0x20, 0x20, 0x60, 0x61, 0x00},
	{0x00, 0x18, 0x1A, 0x5A, 0xDB, 0x00},
	{0x10, 0x30, 0x32, 0x72, 0xF3, 0x00},
	{0x00, 0x20, 0x22, 0x26, 0x67, 0x00},
	{0x10, 0x30, 0x32, 0x36, 0xB7, 0x00},
	{0x10, 0x38, 0x3A, 0x3E, 0xBF, 0x00},
	{0x00, 0x20, 0x60, 0xE0, 0xE5, 0x00},
	{0x10, 0x38, 0x3A, 0x7E, 0xFF, 0x00},
	{0x10, 0x30, 0x60, 0xE6, 0xF7, 0x00},
}

const (
	NumReels     = 3
	DefaultDelay = 5

	reelFrames = 6
	beepHz     = 2093
	beepFrames = 4
)

type State uint8

const (
	Startup State = iota
	Rolling
	Fixed
)

func (s State) String() string {
	switch s {
	case Startup:
		return "Press A"
	case Rolling:
		return "Rolling"
	case Fixed:
		return "Result"
	default:
		return "?"
	}
}

// Task is a three-reel slot machine on the digits. A starts the reels, B
// stops the next one, Up and Down change the animation delay.
type Task struct {
	state   State
	delay   uint32
	stopped int
	counter [NumReels]uint32
	result  [NumReels]uint8
	beep    appmgr.Beep
}

func New() *Task { return &Task{delay: DefaultDelay} }

func (t *Task) Name() string { return "Slot" }

func (t *Task) State() State            { return t.state }
func (t *Task) Delay() uint32           { return t.delay }
func (t *Task) Result() [NumReels]uint8 { return t.result }

func (t *Task) Initialize(ctx *appmgr.Context) {
	t.state = Startup
	t.delay = DefaultDelay
	t.beep.Reset()
	ctx.Segments.Write([segment.NumDigits]uint8{})
	t.show(ctx)
}

func (t *Task) Update(ctx *appmgr.Context, frame uint64) error {
	t.beep.Tick(ctx, frame)
	released := ctx.Buttons.WasReleased(keymatrix.Mask)

	switch t.state {
	case Startup, Fixed:
		if released&keymatrix.A != 0 {
			t.start(ctx)
		}
	case Rolling:
		if released&keymatrix.Up != 0 && t.delay > 1 {
			t.setDelay(t.delay - 1)
		}
		if released&keymatrix.Down != 0 {
			t.setDelay(t.delay + 1)
		}
		if released&keymatrix.B != 0 {
			t.result[t.stopped] = t.number(t.counter[t.stopped])
			ctx.Log.Debugf("slot: reel %d = %d", t.stopped, t.result[t.stopped])
			t.stopped++
			t.beep.Start(ctx, frame, beepHz, beepFrames)
		}

		for i := range t.counter {
			t.counter[i]++
			if t.counter[i] >= t.period() {
				t.counter[i] = 0
			}
		}
		ctx.Segments.Write(t.render())

		if t.stopped == NumReels {
			t.state = Fixed
			t.show(ctx)
		}
	}
	return nil
}

func (t *Task) start(ctx *appmgr.Context) {
	t.state = Rolling
	t.stopped = 0
	t.counter = [NumReels]uint32{}
	t.result = [NumReels]uint8{}
	t.show(ctx)
}

// period is the counter span of one full reel turn.
func (t *Task) period() uint32 { return t.delay * 10 * reelFrames }

// setDelay keeps the counters inside the new span so every reel still maps
// onto a number.
func (t *Task) setDelay(d uint32) {
	t.delay = d
	for i := range t.counter {
		t.counter[i] %= t.period()
	}
}

func (t *Task) number(counter uint32) uint8 {
	return uint8(counter / t.delay / reelFrames)
}

func (t *Task) render() [segment.NumDigits]uint8 {
	var out [segment.NumDigits]uint8
	for i := 0; i < NumReels; i++ {
		if i < t.stopped {
			out[i] = segment.Digits[t.result[i]]
			continue
		}
		n := t.number(t.counter[i])
		out[i] = Reels[n][t.counter[i]/t.delay%reelFrames]
	}
	return out
}

func (t *Task) show(ctx *appmgr.Context) {
	lines := []string{t.Name(), t.state.String()}
	if t.state == Fixed {
		lines = append(lines, fmt.Sprintf("%d %d %d", t.result[0], t.result[1], t.result[2]))
	}
	ctx.Show(lines...)
}

func (t *Task) Finalize(*appmgr.Context) {
	t.beep.Reset()
}

func (t *Task) Finished() bool { return false }

package slot

import (
	"testing"

	"torch/services/appmgr/apptest"
	"torch/services/keymatrix"
	"torch/services/segment"
)

func run(t *testing.T, task *Task, r *apptest.Rig, from, to uint64) {
	t.Helper()
	for f := from; f < to; f++ {
		if err := task.Update(r.Ctx, f); err != nil {
			t.Fatal(err)
		}
	}
}

func press(t *testing.T, task *Task, r *apptest.Rig, frame uint64, mask uint8) {
	t.Helper()
	r.Buttons.Release(mask)
	if err := task.Update(r.Ctx, frame); err != nil {
		t.Fatal(err)
	}
}

func TestReelsEndOnDigitPlusDot(t *testing.T) {
	for n, reel := range Reels {
		if want := segment.Digits[n] | segment.Dot; reel[4] != want {
			t.Errorf("reel %d frame 4 = %#x, want %#x", n, reel[4], want)
		}
		if reel[5] != 0 {
			t.Errorf("reel %d frame 5 = %#x, want dark", n, reel[5])
		}
	}
}

func TestWaitsForStart(t *testing.T) {
	r := apptest.New()
	task := New()
	task.Initialize(r.Ctx)
	run(t, task, r, 0, 10)
	if task.State() != Startup || r.Segments.Writes != 1 {
		t.Fatalf("state = %v writes = %d", task.State(), r.Segments.Writes)
	}
}

func TestStopsReelsInOrder(t *testing.T) {
	r := apptest.New()
	task := New()
	task.Initialize(r.Ctx)
	press(t, task, r, 0, keymatrix.A)
	if task.State() != Rolling {
		t.Fatalf("state = %v, want rolling", task.State())
	}

	// 90 increments at delay 5 put every reel on number 3.
	run(t, task, r, 1, 91)
	press(t, task, r, 91, keymatrix.B)
	if got := task.Result()[0]; got != 3 {
		t.Fatalf("reel 0 = %d, want 3", got)
	}
	if r.Segments.Frame[0] != segment.Digits[3] {
		t.Fatalf("stopped reel shows %#x", r.Segments.Frame[0])
	}
	if r.Buzzer.Current() != beepHz {
		t.Fatalf("tones = %v, want a beep on stop", r.Buzzer.Tones)
	}

	press(t, task, r, 92, keymatrix.B)
	press(t, task, r, 93, keymatrix.B)
	if task.State() != Fixed {
		t.Fatalf("state = %v, want fixed", task.State())
	}
	if got := task.Result(); got[1] != 3 || got[2] != 3 {
		t.Fatalf("result = %v", got)
	}
	if r.Segments.Frame[3] != segment.Blank {
		t.Fatalf("fourth digit = %#x, want dark", r.Segments.Frame[3])
	}
	if r.Graphics.Shown[2] != "3 3 3" {
		t.Fatalf("panel = %q", r.Graphics.Shown)
	}

	press(t, task, r, 94, keymatrix.A)
	if task.State() != Rolling || task.Result() != ([NumReels]uint8{}) {
		t.Fatalf("restart: state = %v result = %v", task.State(), task.Result())
	}
}

func TestCountersWrap(t *testing.T) {
	r := apptest.New()
	task := New()
	task.Initialize(r.Ctx)
	press(t, task, r, 0, keymatrix.A)
	run(t, task, r, 1, 301)
	if task.counter[0] != 0 {
		t.Fatalf("counter = %d after a full turn, want 0", task.counter[0])
	}
}

func TestDelayAdjust(t *testing.T) {
	r := apptest.New()
	task := New()
	task.Initialize(r.Ctx)
	press(t, task, r, 0, keymatrix.A)

	run(t, task, r, 1, 250)
	for i := 0; i < 10; i++ {
		press(t, task, r, uint64(250+i), keymatrix.Up)
	}
	if task.Delay() != 1 {
		t.Fatalf("delay = %d, want floor of 1", task.Delay())
	}
	for _, c := range task.counter {
		if c >= task.period() {
			t.Fatalf("counter %d outside span %d", c, task.period())
		}
	}
	press(t, task, r, 300, keymatrix.Down)
	if task.Delay() != 2 {
		t.Fatalf("delay = %d, want 2", task.Delay())
	}
}

package pomodoro

import (
	"testing"

	"torch/services/appmgr/apptest"
	"torch/services/keymatrix"
	"torch/services/segment"
)

func step(t *testing.T, task *Task, r *apptest.Rig, frame uint64, release uint8) {
	t.Helper()
	r.Buttons.Release(release)
	if err := task.Update(r.Ctx, frame); err != nil {
		t.Fatalf("frame %d: %v", frame, err)
	}
}

func TestDigits(t *testing.T) {
	d := segment.Digits
	if got, want := Digits(WorkSeconds, false), [segment.NumDigits]uint8{d[2], d[5], d[0], d[0]}; got != want {
		t.Fatalf("Digits(25:00) = %x, want %x", got, want)
	}
	if got, want := Digits(9*60+5, true), [segment.NumDigits]uint8{segment.Blank, d[9] | segment.Dot, d[0], d[5]}; got != want {
		t.Fatalf("Digits(9:05) = %x, want %x", got, want)
	}
}

func TestStartCountsDownOncePerSecond(t *testing.T) {
	r := apptest.New()
	task := New()
	task.Initialize(r.Ctx)
	if task.State() != Preparing || r.Segments.Frame != Digits(WorkSeconds, false) {
		t.Fatalf("state = %v digits = %x", task.State(), r.Segments.Frame)
	}

	step(t, task, r, 1, keymatrix.A)
	if task.State() != Working {
		t.Fatalf("state = %v, want working", task.State())
	}
	if r.Buzzer.Current() != beepHz {
		t.Fatalf("tones = %v, want a start beep", r.Buzzer.Tones)
	}

	for f := uint64(2); f < 60; f++ {
		step(t, task, r, f, 0)
	}
	if task.Remaining() != WorkSeconds {
		t.Fatalf("remaining = %d before a full second", task.Remaining())
	}
	if r.Buzzer.Current() != 0 {
		t.Fatalf("beep still on: %v", r.Buzzer.Tones)
	}
	step(t, task, r, 60, 0)
	if task.Remaining() != WorkSeconds-1 {
		t.Fatalf("remaining = %d, want %d", task.Remaining(), WorkSeconds-1)
	}
}

func TestDotBlinksWhileRunning(t *testing.T) {
	r := apptest.New()
	task := New()
	task.Initialize(r.Ctx)
	step(t, task, r, 0, keymatrix.A)

	step(t, task, r, 61, 0)
	if r.Segments.Frame[1]&segment.Dot == 0 {
		t.Fatal("dot dark in the first half second")
	}
	step(t, task, r, 90, 0)
	if r.Segments.Frame[1]&segment.Dot != 0 {
		t.Fatal("dot lit in the second half second")
	}
}

func TestPauseFreezesCountdown(t *testing.T) {
	r := apptest.New()
	task := New()
	task.Initialize(r.Ctx)
	step(t, task, r, 1, keymatrix.A)
	step(t, task, r, 2, keymatrix.A)
	if task.State() != WorkingPaused {
		t.Fatalf("state = %v, want paused", task.State())
	}
	for f := uint64(3); f <= 240; f++ {
		step(t, task, r, f, 0)
	}
	if task.Remaining() != WorkSeconds {
		t.Fatalf("remaining = %d while paused", task.Remaining())
	}
	step(t, task, r, 241, keymatrix.A)
	if task.State() != Working {
		t.Fatalf("state = %v, want working", task.State())
	}
}

func TestWorkRollsIntoRest(t *testing.T) {
	r := apptest.New()
	task := New()
	task.Initialize(r.Ctx)
	step(t, task, r, 1, keymatrix.A)
	task.remaining = 1

	step(t, task, r, 120, 0)
	if task.State() != Resting || task.Remaining() != RestSeconds {
		t.Fatalf("state = %v remaining = %d", task.State(), task.Remaining())
	}
	if r.Segments.Frame != Digits(RestSeconds, true) {
		t.Fatalf("digits = %x", r.Segments.Frame)
	}
	if r.Graphics.Shown[1] != Resting.String() {
		t.Fatalf("panel = %q", r.Graphics.Shown)
	}

	task.remaining = 1
	step(t, task, r, 180, 0)
	if task.State() != Preparing || task.Remaining() != WorkSeconds {
		t.Fatalf("state = %v remaining = %d", task.State(), task.Remaining())
	}
}

func TestResetAndShorten(t *testing.T) {
	r := apptest.New()
	task := New()
	task.Initialize(r.Ctx)

	step(t, task, r, 1, keymatrix.Down)
	if task.Remaining() != WorkSeconds-60 {
		t.Fatalf("remaining = %d after Down", task.Remaining())
	}
	task.remaining = 45
	step(t, task, r, 2, keymatrix.Down)
	if task.Remaining() != 35 {
		t.Fatalf("remaining = %d, want 35", task.Remaining())
	}
	task.remaining = 10
	step(t, task, r, 3, keymatrix.Down)
	if task.Remaining() != 10 {
		t.Fatalf("remaining = %d, want 10", task.Remaining())
	}

	step(t, task, r, 4, keymatrix.A)
	step(t, task, r, 5, keymatrix.B)
	if task.State() != Preparing || task.Remaining() != WorkSeconds {
		t.Fatalf("state = %v remaining = %d after reset", task.State(), task.Remaining())
	}
	if r.Segments.Frame != Digits(WorkSeconds, false) {
		t.Fatalf("digits = %x after reset", r.Segments.Frame)
	}
}

func TestBrightnessFollowsKnob(t *testing.T) {
	r := apptest.New()
	task := New()
	task.Initialize(r.Ctx)
	r.Knob.Raw = 1635
	step(t, task, r, 1, 0)
	if want := [segment.NumDigits]uint8{50, 50, 50, 50}; r.Segments.Brightness != want {
		t.Fatalf("brightness = %v, want %v", r.Segments.Brightness, want)
	}
}

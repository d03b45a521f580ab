//go:build !tinygo

package hal

import (
	"bytes"
	"image/color"
	"strings"
	"testing"
	"time"
)

func TestHostSegmentsDuty(t *testing.T) {
	now := time.Unix(0, 0)
	s := newHostSegments(4, func() time.Time { return now })

	for cycle := 0; cycle < 10; cycle++ {
		for d := 0; d < 4; d++ {
			_ = s.SetSegments(0xFC)
			_ = s.EnableDigit(d)
			if d == 2 {
				now = now.Add(time.Millisecond)
				_ = s.DisableDigits()
				now = now.Add(3 * time.Millisecond)
				continue
			}
			now = now.Add(4 * time.Millisecond)
			_ = s.DisableDigits()
		}
	}

	patterns := make([]uint8, 4)
	duty := make([]float64, 4)
	s.sample(patterns, duty)

	for i, p := range patterns {
		if p != 0xFC {
			t.Fatalf("digit %d pattern = %02X, want FC", i, p)
		}
	}
	if duty[0] != 0.25 {
		t.Fatalf("digit 0 duty = %v, want 0.25", duty[0])
	}
	if duty[2] != 0.0625 {
		t.Fatalf("digit 2 duty = %v, want 0.0625", duty[2])
	}

	now = now.Add(10 * time.Millisecond)
	s.sample(patterns, duty)
	if duty[0] != 0 {
		t.Fatalf("duty after idle window = %v, want 0", duty[0])
	}
}

func TestHostPanelShowsOnlyAfterDisplay(t *testing.T) {
	p := newHostPanel(128, 64, 0)
	p.SetPixel(3, 2, color.RGBA{255, 255, 255, 255})
	p.SetPixel(-1, 200, color.RGBA{255, 255, 255, 255})

	front := make([]bool, 128*64)
	p.snapshot(front)
	if front[2*128+3] {
		t.Fatal("pixel visible before Display")
	}

	_ = p.Display()
	if frames := p.snapshot(front); frames != 1 || !front[2*128+3] {
		t.Fatalf("after Display: frames=%d pixel=%v", frames, front[2*128+3])
	}

	p.ClearBuffer()
	_ = p.Display()
	p.snapshot(front)
	if front[2*128+3] {
		t.Fatal("pixel survived ClearBuffer")
	}
}

func TestParseScript(t *testing.T) {
	steps, err := ParseScript("500ms=a, 600ms=, 2s=up+DOWN")
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	want := []ScriptStep{
		{500 * time.Millisecond, ButtonA},
		{600 * time.Millisecond, 0},
		{2 * time.Second, ButtonUp | ButtonDown},
	}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("step %d = %+v, want %+v", i, steps[i], want[i])
		}
	}

	for _, bad := range []string{"a", "1s=q", "2s=a,1s=b", "x=a"} {
		if _, err := ParseScript(bad); err == nil {
			t.Fatalf("ParseScript(%q) succeeded", bad)
		}
	}
}

func TestLogToneLogsChangesOnly(t *testing.T) {
	var buf bytes.Buffer
	tone := &logTone{logger: newHostLogger(&buf, false)}
	_ = tone.Play(440)
	_ = tone.Play(440)
	_ = tone.Stop()
	_ = tone.Stop()

	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != 2 || !strings.HasSuffix(got[0], "tone: 440 Hz") || !strings.HasSuffix(got[1], "tone: off") {
		t.Fatalf("log = %q", got)
	}
}

func TestHostKnobClamps(t *testing.T) {
	k := newHostKnob(AnalogMax + 500)
	if raw, _ := k.ReadRaw(); raw != AnalogMax {
		t.Fatalf("raw = %d, want %d", raw, AnalogMax)
	}
	k.turn(-2 * AnalogMax)
	if raw, _ := k.ReadRaw(); raw != 0 {
		t.Fatalf("raw = %d after turning past zero, want 0", raw)
	}
	k.turn(knobStep)
	if raw, _ := k.ReadRaw(); raw != knobStep {
		t.Fatalf("raw = %d, want %d", raw, knobStep)
	}
}

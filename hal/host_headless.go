//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// HeadlessConfig controls the no-window host runner. A nil Knob starts the
// knob at DefaultKnob.
type HeadlessConfig struct {
	// Duration stops the run after this long; zero runs until ctx ends.
	Duration   time.Duration
	Script     []ScriptStep
	Knob       *uint16
	PanelDelay time.Duration
	Out        io.Writer
}

// ScriptStep sets the held buttons at an offset from start.
type ScriptStep struct {
	At      time.Duration
	Buttons uint8
}

var buttonNames = map[string]uint8{
	"up":    ButtonUp,
	"left":  ButtonLeft,
	"down":  ButtonDown,
	"right": ButtonRight,
	"a":     ButtonA,
	"b":     ButtonB,
	"all":   ButtonMask,
}

// ParseScript reads a comma separated list of offset=buttons steps, where
// buttons are joined with '+' and an empty list releases everything:
//
//	500ms=a,600ms=,2s=up+down
func ParseScript(s string) ([]ScriptStep, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var steps []ScriptStep
	for _, field := range strings.Split(s, ",") {
		at, keys, ok := strings.Cut(strings.TrimSpace(field), "=")
		if !ok {
			return nil, fmt.Errorf("script: %q: missing '='", field)
		}
		d, err := time.ParseDuration(at)
		if err != nil {
			return nil, fmt.Errorf("script: %q: %w", field, err)
		}
		if len(steps) > 0 && d < steps[len(steps)-1].At {
			return nil, fmt.Errorf("script: %q: steps out of order", field)
		}
		var mask uint8
		if keys != "" {
			for _, name := range strings.Split(keys, "+") {
				b, ok := buttonNames[strings.ToLower(strings.TrimSpace(name))]
				if !ok {
					return nil, fmt.Errorf("script: unknown button %q", name)
				}
				mask |= b
			}
		}
		steps = append(steps, ScriptStep{At: d, Buttons: mask})
	}
	return steps, nil
}

// RunHeadless runs the firmware without opening a window. Button presses come
// from the script and the tone is logged.
func RunHeadless(ctx context.Context, run func(context.Context, HAL) error, cfg HeadlessConfig) error {
	h, err := newHost(hostOptions{knob: knobOrDefault(cfg.Knob), panelDelay: cfg.PanelDelay, out: cfg.Out})
	if err != nil {
		return err
	}

	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	go playScript(ctx, h.keys, cfg.Script)

	err = run(ctx, h)
	h.logger.WriteLineString("segments: " + h.seg.String())
	if cfg.Duration > 0 && errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func playScript(ctx context.Context, keys *hostKeys, steps []ScriptStep) {
	start := time.Now()
	for _, step := range steps {
		t := time.NewTimer(time.Until(start.Add(step.At)))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		keys.set(step.Buttons)
	}
}

package appmgr

import (
	"context"
	"errors"

	"torch/internal/mathx"
	"torch/kernel"
	"torch/services/keymatrix"
	"torch/services/segment"
)

var ErrNoApps = errors.New("appmgr: no apps registered")

// DefaultCooldown is half a second of frames at 60 FPS.
const DefaultCooldown = 30

const (
	menuTitle = "Select app"
	menuRows  = 4
)

type State uint8

const (
	StateSelection State = iota
	StateRunning
	StateReturning
)

func (s State) String() string {
	switch s {
	case StateSelection:
		return "selection"
	case StateRunning:
		return "running"
	case StateReturning:
		return "returning"
	default:
		return "unknown"
	}
}

// Scheduler is the menu state machine. It is the only thing that changes the
// active app, and it makes at most one lifecycle call per frame.
type Scheduler struct {
	ctx      *Context
	apps     []App
	cooldown uint64

	state    State
	index    int
	active   App
	failed   bool
	resumeAt uint64
}

// New returns a scheduler in the Selection state. A zero cooldown means
// DefaultCooldown.
func New(ctx *Context, apps []App, cooldown uint64) (*Scheduler, error) {
	if len(apps) == 0 {
		return nil, ErrNoApps
	}
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}
	return &Scheduler{ctx: ctx, apps: apps, cooldown: cooldown}, nil
}

func (s *Scheduler) State() State { return s.state }
func (s *Scheduler) Index() int   { return s.index }

// Active returns the running app, or nil outside the Running state.
func (s *Scheduler) Active() App {
	if s.state != StateRunning {
		return nil
	}
	return s.active
}

// Run shows the menu and then steps once per paced frame until ctx ends.
func (s *Scheduler) Run(ctx context.Context, pacer *kernel.Pacer) error {
	s.ShowMenu()
	for {
		s.Step(pacer.Frame())
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
	}
}

// Step advances the state machine by one frame.
func (s *Scheduler) Step(frame uint64) {
	switch s.state {
	case StateSelection:
		released := s.ctx.Buttons.WasReleased(keymatrix.Mask)
		switch {
		case released&keymatrix.A != 0:
			s.launch()
		case released&keymatrix.Up != 0:
			s.index = (s.index + len(s.apps) - 1) % len(s.apps)
			s.ShowMenu()
		case released&keymatrix.Down != 0:
			s.index = (s.index + 1) % len(s.apps)
			s.ShowMenu()
		}

	case StateRunning:
		if s.failed || s.ctx.Buttons.AllPressed() || s.active.Finished() {
			s.exit(frame)
			return
		}
		if err := s.active.Update(s.ctx, frame); err != nil {
			s.ctx.Log.Infof("%s: update failed: %v", s.active.Name(), err)
			s.failed = true
		}

	case StateReturning:
		// Sample before draining so the release that empties the matrix is
		// drained in the same frame.
		idle := s.ctx.Buttons.Status() == 0
		s.ctx.Buttons.WasReleased(keymatrix.Mask)
		if idle && frame >= s.resumeAt {
			s.state = StateSelection
		}
	}
}

func (s *Scheduler) launch() {
	app := s.apps[s.index]
	s.ctx.Log.Infof("launch %s", app.Name())
	if err := s.ctx.Graphics.Clear(); err != nil {
		s.ctx.Log.Infof("launch: clear: %v", err)
	}
	s.ctx.Segments.Write([segment.NumDigits]uint8{})
	s.active = app
	s.failed = false
	s.state = StateRunning
	app.Initialize(s.ctx)
}

func (s *Scheduler) exit(frame uint64) {
	s.ctx.Log.Infof("exit %s", s.active.Name())
	s.active.Finalize(s.ctx)
	if err := s.ctx.Buzzer.StopTone(); err != nil {
		s.ctx.Log.Infof("exit: stop tone: %v", err)
	}
	s.ShowMenu()
	s.resumeAt = frame + s.cooldown
	s.state = StateReturning
}

// ShowMenu draws the app list with a cursor on the panel and the 1-based
// selection on the digits. A full panel queue drops the frame.
func (s *Scheduler) ShowMenu() {
	s.ctx.Segments.SetBrightness(FullBrightness)
	s.ctx.Segments.Write(segment.Number(uint(s.index+1), true))

	first := mathx.Clamp(s.index-menuRows+1, 0, mathx.Max(len(s.apps)-menuRows, 0))
	last := mathx.Min(first+menuRows, len(s.apps))

	lines := []string{menuTitle}
	for i := first; i < last; i++ {
		cursor := "  "
		if i == s.index {
			cursor = "> "
		}
		lines = append(lines, cursor+s.apps[i].Name())
	}
	s.ctx.Show(lines...)
}

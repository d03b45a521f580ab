package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"torch/hal"
	"torch/internal/buildinfo"
	"torch/kernel"
	"torch/services/appmgr"
	"torch/services/buzzer"
	"torch/services/keymatrix"
	"torch/services/knob"
	"torch/services/logger"
	"torch/services/panel"
	"torch/services/segment"
	"torch/tasks/meter"
	"torch/tasks/piano"
	"torch/tasks/pomodoro"
	"torch/tasks/slot"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	FPS          int
	ScanPhase    time.Duration
	History      int
	DigitPeriod  time.Duration
	QueueDepth   int
	SendWait     time.Duration
	Cooldown     uint64
	BannerFrames uint64
	LogLevel     logger.Level
	LogDepth     int

	// Apps overrides the menu. Nil means the built-in set.
	Apps []appmgr.App
}

func DefaultConfig() Config {
	return Config{
		FPS:          kernel.DefaultFPS,
		ScanPhase:    keymatrix.DefaultPhasePeriod,
		History:      keymatrix.DefaultHistory,
		DigitPeriod:  segment.DefaultDigitPeriod,
		QueueDepth:   8,
		SendWait:     2 * time.Millisecond,
		Cooldown:     appmgr.DefaultCooldown,
		BannerFrames: 60,
		LogLevel:     logger.LevelInfo,
		LogDepth:     64,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.ScanPhase <= 0 {
		c.ScanPhase = d.ScanPhase
	}
	if c.History == 0 {
		c.History = d.History
	}
	if c.DigitPeriod <= 0 {
		c.DigitPeriod = d.DigitPeriod
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = d.QueueDepth
	}
	if c.Cooldown == 0 {
		c.Cooldown = d.Cooldown
	}
	if c.LogDepth <= 0 {
		c.LogDepth = d.LogDepth
	}
	return c
}

// Apps returns the built-in menu in display order.
func Apps() []appmgr.App {
	return []appmgr.App{piano.New(), pomodoro.New(), slot.New(), meter.New()}
}

// System owns every driver. It is created once and run once.
type System struct {
	hw  hal.HAL
	cfg Config

	logs    *logger.Service
	keys    *keymatrix.Scanner
	digits  *segment.Driver
	tone    *buzzer.Service
	gfx     *panel.Service
	pacer   *kernel.Pacer
	ctx     *appmgr.Context
	sched   *appmgr.Scheduler
	bootLog *logger.Logger

	mu     sync.Mutex
	notice *panicNotice
}

func New(h hal.HAL, cfg Config) (*System, error) {
	if h == nil {
		return nil, errors.New("app: nil HAL")
	}
	parts := []struct {
		name string
		ok   bool
	}{
		{"logger", h.Logger() != nil},
		{"key matrix", h.Matrix() != nil},
		{"segments", h.Segments() != nil},
		{"tone", h.Tone() != nil},
		{"panel", h.Panel() != nil},
		{"analog", h.Analog() != nil},
	}
	for _, p := range parts {
		if !p.ok {
			return nil, fmt.Errorf("app: HAL has no %s", p.name)
		}
	}

	cfg = cfg.withDefaults()
	apps := cfg.Apps
	if apps == nil {
		apps = Apps()
	}

	logs := logger.New(h.Logger(), cfg.LogLevel, cfg.LogDepth)
	clock := kernel.SystemClock()

	s := &System{
		hw:      h,
		cfg:     cfg,
		logs:    logs,
		keys:    keymatrix.New(h.Matrix(), clock, keymatrix.Config{PhasePeriod: cfg.ScanPhase, History: cfg.History}, logs.Logger("key")),
		digits:  segment.New(h.Segments(), kernel.NewAlarm(), cfg.DigitPeriod, logs.Logger("seg")),
		tone:    buzzer.New(h.Tone(), cfg.QueueDepth, cfg.SendWait, logs.Logger("buz")),
		gfx:     panel.New(h.Panel(), cfg.QueueDepth, cfg.SendWait, logs.Logger("gfx")),
		pacer:   kernel.NewPacer(clock, cfg.FPS),
		bootLog: logs.Logger("app"),
	}
	s.ctx = &appmgr.Context{
		Buttons:  s.keys,
		Buzzer:   s.tone,
		Graphics: s.gfx,
		Segments: s.digits,
		Knob:     knob.New(h.Analog()),
		Log:      s.bootLog,
	}
	sched, err := appmgr.New(s.ctx, apps, cfg.Cooldown)
	if err != nil {
		return nil, err
	}
	s.sched = sched
	bootStep(h, "drivers ready")
	return s, nil
}

// Scheduler exposes the menu state machine for inspection.
func (s *System) Scheduler() *appmgr.Scheduler { return s.sched }

// Run starts the workers, shows the banner and runs the scheduler on the
// calling goroutine until ctx ends or a worker fails.
func (s *System) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.guard(gctx, "log", s.logs.Run))
	g.Go(s.guard(gctx, "key", s.keys.Run))
	g.Go(s.guard(gctx, "seg", s.digits.Run))
	g.Go(s.guard(gctx, "buz", s.tone.Run))
	g.Go(s.guard(gctx, "gfx", s.gfx.Run))

	bootStep(s.hw, "workers up")
	s.bootLog.Infof("torch %s", buildinfo.Short())
	s.ctx.Show("torch", buildinfo.Short(), "starting...")

	err := s.guard(gctx, "app", s.runScheduler)()
	cancel()

	werr := g.Wait()

	// Every worker has returned, so the panel has no other writer.
	if n := s.takeNotice(); n != nil {
		paintPanic(s.hw.Panel(), *n)
	}
	if werr != nil && !isShutdown(werr) {
		return werr
	}
	return err
}

// runScheduler holds the banner for BannerFrames, then hands the frames to
// the menu.
func (s *System) runScheduler(ctx context.Context) error {
	for i := uint64(0); i < s.cfg.BannerFrames; i++ {
		if err := s.pacer.Wait(ctx); err != nil {
			return err
		}
	}
	return s.sched.Run(ctx, s.pacer)
}

// guard runs a worker, turning a panic into an error and reporting faults on
// the raw log line since the logging worker may be the one that died.
func (s *System) guard(ctx context.Context, name string, run func(context.Context) error) func() error {
	return func() (err error) {
		defer func() {
			if v := recover(); v != nil {
				logPanic(s.hw.Logger(), name, v)
				s.noteOnce(panicNotice{worker: name, value: v})
				err = fmt.Errorf("%s: %w: %v", name, ErrWorkerPanic, v)
			}
		}()
		err = run(ctx)
		if err != nil && !isShutdown(err) {
			s.hw.Logger().WriteLineString(fmt.Sprintf("%s: worker failed: %v", name, err))
		}
		return err
	}
}

// noteOnce keeps the first panic for the panel notice.
func (s *System) noteOnce(n panicNotice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil {
		s.notice = &n
	}
}

func (s *System) takeNotice() *panicNotice {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notice
	s.notice = nil
	return n
}

func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"torch/app"
	"torch/hal"
	"torch/services/logger"
)

func main() {
	cfg := app.DefaultConfig()
	var (
		headless hal.HeadlessConfig
		noWindow bool
		window   hal.WindowConfig
		board    string
		script   string
		logLevel string
		knob     uint
		knobADC  bool
	)
	flag.BoolVar(&noWindow, "headless", false, "Run without a window.")
	flag.DurationVar(&headless.Duration, "duration", 0, "Stop after this long in headless mode (0 = run until interrupted).")
	flag.StringVar(&script, "script", "", "Headless button script, e.g. 500ms=down,600ms=,1s=a.")
	flag.StringVar(&board, "board", "", "Run on real hardware instead of the emulator (rpi).")
	flag.UintVar(&knob, "knob", hal.DefaultKnob, "Initial raw knob reading (0-3300).")
	flag.BoolVar(&knobADC, "knob-adc", false, "With -board rpi, read the knob from an ADS1115 on the panel bus.")
	flag.IntVar(&window.Scale, "scale", 2, "Window scale.")
	flag.DurationVar(&headless.PanelDelay, "panel-delay", 0, "Emulated panel refresh time.")
	flag.StringVar(&logLevel, "log", "info", "Log level: info or debug.")
	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "Application frame rate.")
	flag.DurationVar(&cfg.ScanPhase, "scan-phase", cfg.ScanPhase, "Key matrix settle time per line.")
	flag.DurationVar(&cfg.DigitPeriod, "digit-period", cfg.DigitPeriod, "Segment multiplex slot per digit.")
	flag.Parse()

	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		fatal(err)
	}
	cfg.LogLevel = level
	raw := uint16(knob)

	run := func(ctx context.Context, h hal.HAL) error {
		sys, err := app.New(h, cfg)
		if err != nil {
			return err
		}
		return sys.Run(ctx)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case board != "":
		err = runBoard(ctx, board, raw, knobADC, run)
	case noWindow:
		headless.Knob = &raw
		headless.Script, err = hal.ParseScript(script)
		if err == nil {
			err = hal.RunHeadless(ctx, run, headless)
		}
	default:
		window.Knob = &raw
		window.PanelDelay = headless.PanelDelay
		err = hal.RunWindow(run, window)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fatal(err)
	}
}

func runBoard(ctx context.Context, board string, knob uint16, knobADC bool, run func(context.Context, hal.HAL) error) error {
	if board != "rpi" {
		return fmt.Errorf("unknown board %q", board)
	}
	pcfg := hal.DefaultPeriphConfig()
	pcfg.Knob = knob
	pcfg.KnobADC = knobADC
	h, err := hal.NewPeriph(pcfg)
	if err != nil {
		return err
	}
	defer h.Close()
	return run(ctx, h)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

package keymatrix

import (
	"context"
	"fmt"
	"sync"
	"time"

	"torch/hal"
	"torch/kernel"
	"torch/services/logger"
)

// Button bits.
const (
	Up    = hal.ButtonUp
	Left  = hal.ButtonLeft
	Down  = hal.ButtonDown
	Right = hal.ButtonRight
	A     = hal.ButtonA
	B     = hal.ButtonB
	Mask  = hal.ButtonMask
)

const (
	DefaultPhasePeriod = 5 * time.Millisecond
	DefaultHistory     = 3
	minHistory         = 2
)

type Config struct {
	// PhasePeriod is how long a line stays selected before its inputs are read.
	PhasePeriod time.Duration
	// History is the number of full samples in the release window.
	History int
}

// Scanner walks the key matrix on its own goroutine and keeps the debounced
// button state and a sticky register of release events.
type Scanner struct {
	hw    hal.KeyMatrix
	clock kernel.Clock
	cfg   Config
	log   *logger.Logger

	mu       sync.Mutex
	history  []uint8 // history[0] is the newest sample.
	released uint8
	samples  uint64
}

func New(hw hal.KeyMatrix, clock kernel.Clock, cfg Config, log *logger.Logger) *Scanner {
	if cfg.PhasePeriod <= 0 {
		cfg.PhasePeriod = DefaultPhasePeriod
	}
	if cfg.History == 0 {
		cfg.History = DefaultHistory
	}
	if cfg.History < minHistory {
		cfg.History = minHistory
	}
	return &Scanner{
		hw:      hw,
		clock:   clock,
		cfg:     cfg,
		log:     log,
		history: make([]uint8, cfg.History),
	}
}

// Run scans until ctx ends. A hardware error ends the scanner.
func (s *Scanner) Run(ctx context.Context) error {
	var last uint8
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		sample, err := s.scan(ctx)
		if err != nil {
			return fmt.Errorf("keymatrix: %w", err)
		}
		released := s.push(sample)
		if sample != last && s.log.Enabled(logger.LevelDebug) {
			s.log.Debugf("%s -> %02x", Glyphs(sample), released)
		}
		last = sample
	}
}

// scan reads every line once. Each line is selected and left to settle for
// one phase before it is sensed.
func (s *Scanner) scan(ctx context.Context) (uint8, error) {
	var acc uint8
	lines := s.hw.Lines()
	for line, buttons := range hal.MatrixLayout {
		if line >= lines {
			break
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := s.hw.Select(line); err != nil {
			return 0, err
		}
		s.clock.Sleep(s.cfg.PhasePeriod)
		bits, err := s.hw.Sense()
		if err != nil {
			return 0, err
		}
		for i, b := range buttons {
			if bits&(1<<i) != 0 {
				acc |= b
			}
		}
	}
	return acc, nil
}

// push records a full sample and returns the pending release register.
func (s *Scanner) push(sample uint8) uint8 {
	sample &= Mask

	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.history[1:], s.history[:len(s.history)-1])
	s.history[0] = sample
	s.samples++

	held := Mask
	for _, older := range s.history[1:] {
		held &= older
	}
	s.released |= held &^ sample
	return s.released
}

// Status returns the newest sample.
func (s *Scanner) Status() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history[0]
}

// WasReleased returns the pending release events within mask and clears them.
// Events outside mask stay pending.
func (s *Scanner) WasReleased(mask uint8) uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	got := s.released & mask
	s.released &^= got
	return got
}

func (s *Scanner) AllPressed() bool { return s.Status() == Mask }

// Samples returns the number of full samples taken.
func (s *Scanner) Samples() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples
}

// Glyphs renders a sample as "^<v>AB" with a space for every button up.
func Glyphs(sample uint8) string {
	const glyphs = "^<v>AB"
	order := [6]uint8{Up, Left, Down, Right, A, B}
	var out [6]byte
	for i, b := range order {
		out[i] = ' '
		if sample&b != 0 {
			out[i] = glyphs[i]
		}
	}
	return string(out[:])
}

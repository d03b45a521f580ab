//go:build !tinygo

package hal

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// hostSegments emulates the multiplexed display. It records how long each
// digit was lit so the window can render brightness the way the eye sees it.
type hostSegments struct {
	mu  sync.Mutex
	now func() time.Time

	pattern  uint8
	lit      int
	litSince time.Time
	shown    []uint8
	onTime   []time.Duration
	since    time.Time
}

func newHostSegments(digits int, now func() time.Time) *hostSegments {
	return &hostSegments{
		now:    now,
		lit:    -1,
		shown:  make([]uint8, digits),
		onTime: make([]time.Duration, digits),
		since:  now(),
	}
}

func (s *hostSegments) Digits() int { return len(s.shown) }

func (s *hostSegments) SetSegments(pattern uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(s.now())
	s.pattern = pattern
	if s.lit >= 0 {
		s.shown[s.lit] = pattern
	}
	return nil
}

func (s *hostSegments) EnableDigit(digit int) error {
	if digit < 0 || digit >= len(s.shown) {
		return fmt.Errorf("%w: digit %d", ErrBadPinout, digit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.settle(now)
	s.lit = digit
	s.litSince = now
	s.shown[digit] = s.pattern
	return nil
}

func (s *hostSegments) DisableDigits() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(s.now())
	s.lit = -1
	return nil
}

func (s *hostSegments) settle(now time.Time) {
	if s.lit < 0 {
		return
	}
	s.onTime[s.lit] += now.Sub(s.litSince)
	s.litSince = now
}

// sample returns the last pattern of each digit and its share of lit time
// since the previous sample. A digit driven at full brightness on a bus of
// n digits reports 1/n.
func (s *hostSegments) sample(patterns []uint8, duty []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.settle(now)
	window := now.Sub(s.since)
	s.since = now

	copy(patterns, s.shown)
	for i := range s.onTime {
		if i < len(duty) {
			duty[i] = 0
			if window > 0 {
				duty[i] = float64(s.onTime[i]) / float64(window)
			}
		}
		s.onTime[i] = 0
	}
}

func (s *hostSegments) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for i, p := range s.shown {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", p)
	}
	return b.String()
}

package buzzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"torch/kernel"
	"torch/services/logger"
)

const testTimeout = 1 * time.Second

type recordTone struct {
	mu     sync.Mutex
	events []string
	fail   error
	seen   chan struct{}
}

func newRecordTone() *recordTone { return &recordTone{seen: make(chan struct{}, 16)} }

func (r *recordTone) Play(hz uint32) error {
	r.record(fmt.Sprintf("play %d", hz))
	return r.fail
}

func (r *recordTone) Stop() error {
	r.record("stop")
	return nil
}

func (r *recordTone) record(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	select {
	case r.seen <- struct{}{}:
	default:
	}
}

func (r *recordTone) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func waitEvents(t *testing.T, r *recordTone, n int) []string {
	t.Helper()
	deadline := time.After(testTimeout)
	for {
		if ev := r.snapshot(); len(ev) >= n {
			return ev
		}
		select {
		case <-r.seen:
		case <-deadline:
			t.Fatalf("timeout waiting for %d events, have %q", n, r.snapshot())
		}
	}
}

func TestCommandsApplyInOrder(t *testing.T) {
	tone := newRecordTone()
	s := New(tone, 8, time.Millisecond, logger.Nop())

	for _, err := range []error{s.StartTone(523), s.StartTone(587), s.StopTone(), s.StopTone()} {
		if err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	got := waitEvents(t, tone, 3)
	want := []string{"play 523", "play 587", "stop"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %q, want %q", got, want)
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	// The redundant stop never reached the hardware; Run's own Stop on exit did.
	if got := tone.snapshot(); len(got) != 4 || got[3] != "stop" {
		t.Fatalf("events after exit = %q", got)
	}
}

func TestQueueFull(t *testing.T) {
	s := New(newRecordTone(), 2, time.Millisecond, logger.Nop())
	_ = s.StartTone(440)
	_ = s.StartTone(440)
	if err := s.StopTone(); !errors.Is(err, kernel.ErrQueueFull) {
		t.Fatalf("StopTone = %v, want ErrQueueFull", err)
	}
}

func TestHardwareErrorStopsWorker(t *testing.T) {
	tone := newRecordTone()
	tone.fail = errors.New("pwm fault")
	s := New(tone, 4, time.Millisecond, logger.Nop())
	_ = s.StartTone(440)

	if err := s.Run(context.Background()); !errors.Is(err, tone.fail) {
		t.Fatalf("Run = %v, want pwm fault", err)
	}
	if err := s.StartTone(880); !errors.Is(err, kernel.ErrWorkerStopped) {
		t.Fatalf("StartTone after fault = %v, want ErrWorkerStopped", err)
	}
}

func TestZeroHzStops(t *testing.T) {
	tone := newRecordTone()
	s := New(tone, 4, 0, logger.Nop())
	if err := s.apply(Command{Op: OpStart, Hz: 440}); err != nil {
		t.Fatal(err)
	}
	if err := s.apply(Command{Op: OpStart, Hz: 0}); err != nil {
		t.Fatal(err)
	}
	if got := tone.snapshot(); len(got) != 2 || got[1] != "stop" {
		t.Fatalf("events = %q", got)
	}
}

package kernel

import (
	"context"
	"time"
)

// Clock is a monotonic timebase measured from boot.
type Clock interface {
	Now() time.Duration
	Sleep(d time.Duration)
}

type systemClock struct {
	t0 time.Time
}

// SystemClock returns a Clock backed by the runtime timer.
func SystemClock() Clock {
	return systemClock{t0: time.Now()}
}

func (c systemClock) Now() time.Duration    { return time.Since(c.t0) }
func (c systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Alarm is a one-shot countdown. Wait parks the calling goroutine until the
// alarm fires after d, or returns early with ctx's error.
type Alarm interface {
	Wait(ctx context.Context, d time.Duration) error
}

type timerAlarm struct {
	t *time.Timer
}

// NewAlarm returns an Alarm backed by one reusable runtime timer. It must not
// be shared between goroutines.
func NewAlarm() Alarm {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return &timerAlarm{t: t}
}

func (a *timerAlarm) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	a.t.Reset(d)
	select {
	case <-a.t.C:
		return nil
	case <-ctx.Done():
		if !a.t.Stop() {
			select {
			case <-a.t.C:
			default:
			}
		}
		return ctx.Err()
	}
}

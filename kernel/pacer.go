package kernel

import (
	"context"
	"time"
)

const (
	// DefaultFPS is the nominal application frame rate.
	DefaultFPS = 60

	// maxWaitSlice bounds each sleep so the waiting context keeps yielding
	// (watchdog-friendly) instead of parking for a whole frame.
	maxWaitSlice = time.Millisecond

	// maxLag is how far behind schedule the loop may fall before the
	// schedule is re-based on the current time.
	maxLag = time.Second
)

// Pacer schedules fixed-rate frames.
//
// The per-frame period is rounded to whole microseconds, so fps*period is not
// exactly one second. The last frame of every second is scheduled on the
// exact second boundary instead of base+fps*period, which cancels the
// rounding error once per second.
type Pacer struct {
	clock  Clock
	fps    uint64
	period time.Duration

	base  time.Duration // start of the current second
	next  time.Duration // deadline of the frame in progress
	sub   uint64        // frames completed in the current second
	frame uint64
}

// NewPacer starts a frame schedule at the current clock time.
func NewPacer(clock Clock, fps int) *Pacer {
	if clock == nil {
		clock = SystemClock()
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	us := (1_000_000 + fps/2) / fps
	p := &Pacer{
		clock:  clock,
		fps:    uint64(fps),
		period: time.Duration(us) * time.Microsecond,
	}
	p.rebase(clock.Now())
	return p
}

// Period returns the rounded per-frame period.
func (p *Pacer) Period() time.Duration { return p.period }

// Frame returns the number of frames completed so far.
func (p *Pacer) Frame() uint64 { return p.frame }

// Deadline returns the clock time at which the current frame ends.
func (p *Pacer) Deadline() time.Duration { return p.next }

// Wait blocks until the current frame's deadline, then schedules the next.
//
// A deadline that already passed returns immediately.
func (p *Pacer) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := p.clock.Now()
		if now >= p.next {
			break
		}
		d := p.next - now
		if d > maxWaitSlice {
			d = maxWaitSlice
		}
		p.clock.Sleep(d)
	}

	now := p.clock.Now()
	lag := now - p.next
	p.advance()
	if lag > maxLag {
		p.rebase(now)
	}
	return nil
}

func (p *Pacer) advance() {
	p.frame++
	p.sub++
	if p.sub == p.fps {
		p.sub = 0
		p.base += time.Second
	}
	if p.sub == p.fps-1 {
		p.next = p.base + time.Second
	} else {
		p.next += p.period
	}
}

func (p *Pacer) rebase(now time.Duration) {
	p.base = now
	p.sub = 0
	if p.fps == 1 {
		p.next = now + time.Second
		return
	}
	p.next = now + p.period
}

package kernel

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrQueueFull is returned when a mailbox stays full for the whole send wait.
	ErrQueueFull = errors.New("queue full")
	// ErrWorkerStopped is returned once the consuming worker has terminated.
	ErrWorkerStopped = errors.New("worker stopped")
)

// SendResult describes the outcome of a send attempt.
type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrQueueFull
	SendErrStopped
)

func (r SendResult) String() string {
	switch r {
	case SendOK:
		return "ok"
	case SendErrQueueFull:
		return "queue full"
	case SendErrStopped:
		return "worker stopped"
	default:
		return "unknown"
	}
}

// Err maps r to ErrQueueFull/ErrWorkerStopped, or nil for SendOK.
func (r SendResult) Err() error {
	switch r {
	case SendOK:
		return nil
	case SendErrQueueFull:
		return ErrQueueFull
	default:
		return ErrWorkerStopped
	}
}

// Mailbox is a bounded FIFO that is the only way into one worker goroutine.
//
// Any number of goroutines may send; exactly one worker receives from C.
type Mailbox[T any] struct {
	_        [0]func() // prevent accidental copying.
	ch       chan T
	sendWait time.Duration

	stopOnce sync.Once
	stopped  chan struct{}

	mu  sync.Mutex
	err error
}

// NewMailbox returns a mailbox holding up to capacity items.
//
// Send waits at most sendWait for room before giving up with ErrQueueFull.
func NewMailbox[T any](capacity int, sendWait time.Duration) *Mailbox[T] {
	if capacity <= 0 {
		capacity = 1
	}
	if sendWait < 0 {
		sendWait = 0
	}
	return &Mailbox[T]{
		ch:       make(chan T, capacity),
		sendWait: sendWait,
		stopped:  make(chan struct{}),
	}
}

// TrySend enqueues v without blocking.
func (m *Mailbox[T]) TrySend(v T) SendResult {
	select {
	case <-m.stopped:
		return SendErrStopped
	default:
	}
	select {
	case m.ch <- v:
		return SendOK
	default:
		return SendErrQueueFull
	}
}

// Send enqueues v, waiting briefly for room if the mailbox is full.
func (m *Mailbox[T]) Send(v T) error {
	res := m.TrySend(v)
	if res != SendErrQueueFull || m.sendWait == 0 {
		return res.Err()
	}

	t := time.NewTimer(m.sendWait)
	defer t.Stop()
	select {
	case m.ch <- v:
		return nil
	case <-m.stopped:
		return ErrWorkerStopped
	case <-t.C:
		return ErrQueueFull
	}
}

// C is the receive side for the owning worker.
func (m *Mailbox[T]) C() <-chan T { return m.ch }

// Len returns the number of queued items.
func (m *Mailbox[T]) Len() int { return len(m.ch) }

// Cap returns the mailbox capacity.
func (m *Mailbox[T]) Cap() int { return cap(m.ch) }

// Stop marks the worker as terminated. The first call wins; err may be nil.
func (m *Mailbox[T]) Stop(err error) {
	m.stopOnce.Do(func() {
		if err == nil {
			err = ErrWorkerStopped
		}
		m.mu.Lock()
		m.err = err
		m.mu.Unlock()
		close(m.stopped)
	})
}

// Stopped is closed once Stop has been called.
func (m *Mailbox[T]) Stopped() <-chan struct{} { return m.stopped }

// Err returns the cause passed to Stop, or nil while the worker is alive.
func (m *Mailbox[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Serve runs handle for every item in order until ctx ends or handle fails.
//
// Either way the mailbox is stopped before Serve returns, so later sends fail
// fast with ErrWorkerStopped.
func Serve[T any](ctx context.Context, m *Mailbox[T], handle func(T) error) error {
	for {
		select {
		case <-ctx.Done():
			m.Stop(ctx.Err())
			return ctx.Err()
		case v := <-m.ch:
			if err := handle(v); err != nil {
				m.Stop(err)
				return err
			}
		}
	}
}

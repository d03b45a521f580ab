package kernel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

const testTimeout = 1 * time.Second

func TestMailboxTrySendFull(t *testing.T) {
	mb := NewMailbox[int](4, 0)

	for i := 0; i < mb.Cap(); i++ {
		if res := mb.TrySend(i); res != SendOK {
			t.Fatalf("TrySend() = %s at slot %d, want ok", res, i)
		}
	}
	if res := mb.TrySend(99); res != SendErrQueueFull {
		t.Fatalf("TrySend() = %s when full, want queue full", res)
	}
	if err := mb.Send(99); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Send() err = %v, want ErrQueueFull", err)
	}

	for i := 0; i < mb.Cap(); i++ {
		if got := <-mb.C(); got != i {
			t.Fatalf("recv = %d, want %d", got, i)
		}
	}
}

func TestMailboxLenAndStopped(t *testing.T) {
	mb := NewMailbox[int](4, 0)
	_ = mb.Send(1)
	_ = mb.Send(2)
	if got := mb.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	select {
	case <-mb.Stopped():
		t.Fatal("Stopped closed before Stop")
	default:
	}
	mb.Stop(nil)
	select {
	case <-mb.Stopped():
	case <-time.After(testTimeout):
		t.Fatal("Stopped not closed after Stop")
	}
	if err := mb.Send(3); !errors.Is(err, ErrWorkerStopped) {
		t.Fatalf("Send after Stop = %v, want ErrWorkerStopped", err)
	}
	if got := mb.Len(); got != 2 {
		t.Fatalf("Len() after refused send = %d, want 2", got)
	}
}

func TestMailboxSendWaitsForRoom(t *testing.T) {
	mb := NewMailbox[int](1, testTimeout)
	if err := mb.Send(1); err != nil {
		t.Fatalf("Send: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- mb.Send(2) }()

	if got := <-mb.C(); got != 1 {
		t.Fatalf("recv = %d, want 1", got)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Send after drain: %v", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for blocked Send")
	}
	if got := <-mb.C(); got != 2 {
		t.Fatalf("recv = %d, want 2", got)
	}
}

func TestMailboxSendGivesUp(t *testing.T) {
	mb := NewMailbox[int](1, 5*time.Millisecond)
	_ = mb.Send(1)

	start := time.Now()
	err := mb.Send(2)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Send() err = %v, want ErrQueueFull", err)
	}
	if time.Since(start) > testTimeout {
		t.Fatal("Send blocked far beyond its wait")
	}
}

func TestMailboxStop(t *testing.T) {
	mb := NewMailbox[int](1, testTimeout)
	_ = mb.Send(1)

	done := make(chan error, 1)
	go func() { done <- mb.Send(2) }()

	cause := errors.New("i2c nack")
	mb.Stop(cause)
	mb.Stop(errors.New("second stop is ignored"))

	select {
	case err := <-done:
		if !errors.Is(err, ErrWorkerStopped) {
			t.Fatalf("blocked Send err = %v, want ErrWorkerStopped", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("Stop did not wake blocked sender")
	}
	if res := mb.TrySend(3); res != SendErrStopped {
		t.Fatalf("TrySend() after Stop = %s, want worker stopped", res)
	}
	if err := mb.Err(); err != cause {
		t.Fatalf("Err() = %v, want %v", err, cause)
	}
}

func TestMailboxConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(oldProcs)

	const (
		producers = 4
		perProd   = 2_000
		total     = producers * perProd
	)

	type item struct{ prod, seq int }
	mb := NewMailbox[item](8, testTimeout)

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			<-start
			for i := 0; i < perProd; i++ {
				for mb.Send(item{prod: p, seq: i}) != nil {
					runtime.Gosched()
				}
			}
		}(p)
	}
	close(start)

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	for i := 0; i < total; i++ {
		it := <-mb.C()
		if it.seq != last[it.prod]+1 {
			t.Fatalf("producer %d: got seq %d after %d", it.prod, it.seq, last[it.prod])
		}
		last[it.prod] = it.seq
	}
	wg.Wait()
}

func TestServeStopsOnHandlerError(t *testing.T) {
	mb := NewMailbox[int](4, 0)
	for i := 1; i <= 3; i++ {
		_ = mb.Send(i)
	}

	fault := errors.New("fault")
	var seen []int
	err := Serve(context.Background(), mb, func(v int) error {
		seen = append(seen, v)
		if v == 2 {
			return fault
		}
		return nil
	})
	if err != fault {
		t.Fatalf("Serve() = %v, want %v", err, fault)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("handled %v, want [1 2]", seen)
	}
	if !errors.Is(mb.Send(4), ErrWorkerStopped) {
		t.Fatal("Send after worker fault should fail with ErrWorkerStopped")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	mb := NewMailbox[int](1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Serve(ctx, mb, func(int) error { return nil }); err != context.Canceled {
		t.Fatalf("Serve() = %v, want context.Canceled", err)
	}
	if mb.TrySend(1) != SendErrStopped {
		t.Fatal("mailbox should be stopped after Serve returns")
	}
}

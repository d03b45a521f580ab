package logger

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordSink) WriteLineString(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

func (s *recordSink) WriteLineBytes(b []byte) { s.WriteLineString(string(b)) }

func (s *recordSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func TestLevelFiltering(t *testing.T) {
	sink := &recordSink{}
	svc := New(sink, LevelInfo, 8)
	log := svc.Logger("key")

	log.Infof("sample %d", 1)
	log.Debugf("hidden")
	svc.Flush()

	got := sink.snapshot()
	if len(got) != 1 || got[0] != "key: sample 1" {
		t.Fatalf("lines = %q", got)
	}
	if log.Enabled(LevelDebug) {
		t.Fatal("debug enabled at info level")
	}
}

func TestDroppedLinesAreReported(t *testing.T) {
	sink := &recordSink{}
	svc := New(sink, LevelDebug, 2)
	log := svc.Logger("seg")

	for i := 0; i < 5; i++ {
		log.Infof("line %d", i)
	}
	if svc.Dropped() != 3 {
		t.Fatalf("Dropped() = %d, want 3", svc.Dropped())
	}

	svc.Flush()
	log.Infof("after")
	svc.Flush()

	got := sink.snapshot()
	want := []string{"seg: line 0", "seg: line 1", "log: 3 lines dropped", "seg: after"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", got, want)
	}
}

func TestDropCountRidesOnNextLine(t *testing.T) {
	sink := &recordSink{}
	svc := New(sink, LevelInfo, 1)
	log := svc.Logger("buz")

	log.Infof("a")
	log.Infof("b")
	<-svc.box.C()
	log.Infof("c")
	svc.Flush()

	got := sink.snapshot()
	if len(got) != 1 || got[0] != "buz: c (1 lines dropped)" {
		t.Fatalf("lines = %q", got)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	log := Nop()
	log.Infof("x")
	log.Debugf("y")
	if log.Enabled(LevelInfo) {
		t.Fatal("nil logger reports enabled")
	}
}

func TestRunWritesInOrderAndFlushes(t *testing.T) {
	sink := &recordSink{}
	svc := New(sink, LevelInfo, 16)
	log := svc.Logger("app")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	for i := 0; i < 10; i++ {
		log.Infof("%d", i)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}

	got := sink.snapshot()
	if len(got) != 10 {
		t.Fatalf("got %d lines, want 10", len(got))
	}
	for i, line := range got {
		if want := "app: " + string(rune('0'+i)); line != want {
			t.Fatalf("line %d = %q, want %q", i, line, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("DEBUG"); err != nil || l != LevelDebug {
		t.Fatalf("ParseLevel(DEBUG) = %v, %v", l, err)
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Fatal("ParseLevel(trace) succeeded")
	}
}

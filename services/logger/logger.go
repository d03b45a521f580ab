package logger

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"torch/hal"
	"torch/kernel"
)

// Level orders log verbosity; a line is written when its level is at or
// below the service level.
type Level uint8

const (
	LevelInfo Level = iota
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", uint8(l))
	}
}

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Service owns the log sink. Lines reach it through a mailbox so that a slow
// UART never stalls a scan or multiplex loop; lines that do not fit are
// dropped and counted.
type Service struct {
	sink    hal.Logger
	level   Level
	box     *kernel.Mailbox[string]
	dropped atomic.Uint32
}

func New(sink hal.Logger, level Level, depth int) *Service {
	return &Service{
		sink:  sink,
		level: level,
		box:   kernel.NewMailbox[string](depth, 0),
	}
}

// Run writes queued lines until ctx ends, then flushes what is left.
func (s *Service) Run(ctx context.Context) error {
	err := kernel.Serve(ctx, s.box, func(line string) error {
		s.write(line)
		return nil
	})
	s.Flush()
	return err
}

// Flush writes any queued lines on the calling goroutine.
func (s *Service) Flush() {
	for {
		select {
		case line := <-s.box.C():
			s.write(line)
		default:
			if n := s.dropped.Swap(0); n > 0 {
				s.write(fmt.Sprintf("log: %d lines dropped", n))
			}
			return
		}
	}
}

func (s *Service) write(line string) {
	if s.sink != nil {
		s.sink.WriteLineString(line)
	}
}

// Dropped returns the number of lines lost to a full queue and not yet reported.
func (s *Service) Dropped() uint32 { return s.dropped.Load() }

// Logger returns a logger that prefixes every line with tag.
func (s *Service) Logger(tag string) *Logger {
	return &Logger{svc: s, tag: tag}
}

// Logger is a tagged handle onto a Service. A nil *Logger discards everything.
type Logger struct {
	svc *Service
	tag string
}

// Nop returns a logger that discards everything.
func Nop() *Logger { return nil }

func (l *Logger) Enabled(level Level) bool {
	return l != nil && l.svc != nil && level <= l.svc.level
}

func (l *Logger) Infof(format string, args ...any) { l.emit(LevelInfo, format, args) }

func (l *Logger) Debugf(format string, args ...any) { l.emit(LevelDebug, format, args) }

func (l *Logger) emit(level Level, format string, args []any) {
	if !l.Enabled(level) {
		return
	}
	line := l.tag + ": " + fmt.Sprintf(format, args...)
	n := l.svc.dropped.Swap(0)
	if n > 0 {
		line = fmt.Sprintf("%s (%d lines dropped)", line, n)
	}
	if l.svc.box.TrySend(line) != kernel.SendOK {
		l.svc.dropped.Add(n + 1)
	}
}

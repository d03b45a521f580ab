package buzzer

import (
	"context"
	"fmt"
	"time"

	"torch/hal"
	"torch/kernel"
	"torch/services/logger"
)

type Op uint8

const (
	OpStart Op = iota
	OpStop
)

// Command is one request to the tone worker. Hz is used by OpStart only.
type Command struct {
	Op Op
	Hz uint32
}

// Service owns the tone generator. Commands are applied strictly in the order
// they were sent; at most one tone sounds at a time.
type Service struct {
	tone hal.Tone
	box  *kernel.Mailbox[Command]
	log  *logger.Logger

	hz uint32 // owned by the worker
}

func New(tone hal.Tone, depth int, sendWait time.Duration, log *logger.Logger) *Service {
	return &Service{
		tone: tone,
		box:  kernel.NewMailbox[Command](depth, sendWait),
		log:  log,
	}
}

// StartTone queues a tone at hz, retuning if one is already sounding.
func (s *Service) StartTone(hz uint32) error {
	return s.box.Send(Command{Op: OpStart, Hz: hz})
}

func (s *Service) StopTone() error {
	return s.box.Send(Command{Op: OpStop})
}

// Run applies queued commands until ctx ends or the generator fails. The
// buzzer is silenced on the way out.
func (s *Service) Run(ctx context.Context) error {
	defer s.tone.Stop()
	return kernel.Serve(ctx, s.box, s.apply)
}

func (s *Service) apply(cmd Command) error {
	switch cmd.Op {
	case OpStart:
		if cmd.Hz == 0 {
			return s.stop()
		}
		if err := s.tone.Play(cmd.Hz); err != nil {
			return fmt.Errorf("buzzer: %w", err)
		}
		s.hz = cmd.Hz
		s.log.Infof("start: %d Hz", cmd.Hz)
	case OpStop:
		return s.stop()
	}
	return nil
}

func (s *Service) stop() error {
	if s.hz == 0 {
		return nil
	}
	if err := s.tone.Stop(); err != nil {
		return fmt.Errorf("buzzer: %w", err)
	}
	s.hz = 0
	s.log.Infof("stop")
	return nil
}

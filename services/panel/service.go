package panel

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"
	"time"

	"torch/hal"
	"torch/kernel"
	"torch/services/logger"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

type Op uint8

const (
	OpClear Op = iota
	OpDrawText
	OpUpdate
)

// Command is one drawing request. Text and At are used by OpDrawText only;
// At is the top-left corner of the text.
type Command struct {
	Op   Op
	Text string
	At   image.Point
}

var ink = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// Service owns the graphic panel. Drawing goes to the panel's buffer and
// only OpUpdate repaints the glass.
type Service struct {
	dev  hal.Panel
	box  *kernel.Mailbox[Command]
	log  *logger.Logger
	font *tinyfont.Font

	ascent  int16
	updates atomic.Uint64
}

func New(dev hal.Panel, depth int, sendWait time.Duration, log *logger.Logger) *Service {
	s := &Service{
		dev:  dev,
		box:  kernel.NewMailbox[Command](depth, sendWait),
		log:  log,
		font: &proggy.TinySZ8pt7b,
	}
	s.ascent = -int16(s.font.BBox[3])
	if s.ascent <= 0 {
		s.ascent = int16(s.font.YAdvance)
	}
	return s
}

func (s *Service) Clear() error {
	return s.box.Send(Command{Op: OpClear})
}

func (s *Service) DrawText(text string, at image.Point) error {
	return s.box.Send(Command{Op: OpDrawText, Text: text, At: at})
}

func (s *Service) Update() error {
	return s.box.Send(Command{Op: OpUpdate})
}

// LineHeight is the vertical advance of the panel font.
func (s *Service) LineHeight() int { return int(s.font.YAdvance) }

// Updates returns the number of completed repaints.
func (s *Service) Updates() uint64 { return s.updates.Load() }

// Run applies queued commands until ctx ends or a repaint fails.
func (s *Service) Run(ctx context.Context) error {
	w, h := s.dev.Size()
	s.log.Infof("panel %dx%d", w, h)
	return kernel.Serve(ctx, s.box, s.apply)
}

func (s *Service) apply(cmd Command) error {
	switch cmd.Op {
	case OpClear:
		s.dev.ClearBuffer()
	case OpDrawText:
		tinyfont.WriteLine(s.dev, s.font, int16(cmd.At.X), int16(cmd.At.Y)+s.ascent, cmd.Text, ink)
	case OpUpdate:
		start := time.Now()
		if err := s.dev.Display(); err != nil {
			return fmt.Errorf("panel: %w", err)
		}
		s.updates.Add(1)
		s.log.Debugf("update took %v", time.Since(start))
	}
	return nil
}

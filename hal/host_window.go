//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"torch/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// WindowConfig controls the desktop emulator window.
type WindowConfig struct {
	Scale      int
	Knob       *uint16
	PanelDelay time.Duration
}

const (
	screenW = 272
	screenH = 240

	digitW     = 28
	digitH     = 48
	digitPitch = 44
	digitTop   = 16
	segT       = 5

	panelScale = 2
	panelX     = 8
	panelY     = 88
)

var (
	colorBackground = color.RGBA{0x10, 0x10, 0x14, 0xFF}
	colorPanelOn    = color.RGBA{0x9C, 0xD8, 0xFF, 0xFF}
	colorPanelOff   = color.RGBA{0x04, 0x06, 0x10, 0xFF}
)

var keyBindings = []struct {
	key    ebiten.Key
	button uint8
}{
	{ebiten.KeyArrowUp, ButtonUp},
	{ebiten.KeyArrowLeft, ButtonLeft},
	{ebiten.KeyArrowDown, ButtonDown},
	{ebiten.KeyArrowRight, ButtonRight},
	{ebiten.KeyZ, ButtonA},
	{ebiten.KeyX, ButtonB},
}

// RunWindow opens a desktop window showing the 7-segment display and the
// panel, and forwards the keyboard to the key matrix. run is started on its
// own goroutine; the window closes when it returns.
func RunWindow(run func(context.Context, HAL) error, cfg WindowConfig) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	h, err := newHost(hostOptions{knob: knobOrDefault(cfg.Knob), panelDelay: cfg.PanelDelay, audio: true})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, h) }()

	g := &hostGame{h: h, done: done}
	ebiten.SetWindowTitle("torch (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(screenW*cfg.Scale, screenH*cfg.Scale)
	ebiten.SetTPS(60)
	err = ebiten.RunGame(g)
	cancel()
	if !g.finished {
		runErr := <-done
		if !errors.Is(runErr, context.Canceled) {
			g.runErr = runErr
		}
	}
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if err != nil {
		return err
	}
	return g.runErr
}

type hostGame struct {
	h    *hostHAL
	done <-chan error

	finished bool
	runErr   error

	patterns []uint8
	duty     []float64
	pixels   []bool
	img      *image.RGBA
	panelImg *ebiten.Image
}

func (g *hostGame) Update() error {
	select {
	case err := <-g.done:
		g.finished = true
		g.runErr = err
		return ebiten.Termination
	default:
	}

	var mask uint8
	for _, b := range keyBindings {
		if ebiten.IsKeyPressed(b.key) {
			mask |= b.button
		}
	}
	// Space holds every button at once.
	if ebiten.IsKeyPressed(ebiten.KeySpace) {
		mask = ButtonMask
	}
	g.h.keys.set(mask)

	if inpututil.KeyPressDuration(ebiten.KeyBracketLeft) > 0 {
		g.h.knob.turn(-knobStep)
	}
	if inpututil.KeyPressDuration(ebiten.KeyBracketRight) > 0 {
		g.h.knob.turn(knobStep)
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	g.drawSegments(screen)
	g.drawPanel(screen)

	raw, _ := g.h.knob.ReadRaw()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("knob %4d  [ ]", raw), panelX, panelY+64*panelScale+4)
}

func (g *hostGame) drawSegments(screen *ebiten.Image) {
	seg := g.h.seg
	n := seg.Digits()
	if len(g.patterns) != n {
		g.patterns = make([]uint8, n)
		g.duty = make([]float64, n)
	}
	seg.sample(g.patterns, g.duty)

	x0 := float32(screenW-n*digitPitch) / 2
	for i := 0; i < n; i++ {
		level := g.duty[i] * float64(n)
		if level > 1 {
			level = 1
		}
		drawDigit(screen, x0+float32(i*digitPitch), digitTop, g.patterns[i], level)
	}
}

// segmentRects lists a..g and dp relative to a digit's top-left corner.
var segmentRects = [8][4]float32{
	{segT, 0, digitW - 2*segT, segT},
	{digitW - segT, segT, segT, digitH/2 - segT - segT/2},
	{digitW - segT, digitH/2 + segT/2, segT, digitH/2 - segT - segT/2},
	{segT, digitH - segT, digitW - 2*segT, segT},
	{0, digitH/2 + segT/2, segT, digitH/2 - segT - segT/2},
	{0, segT, segT, digitH/2 - segT - segT/2},
	{segT, digitH/2 - segT/2, digitW - 2*segT, segT},
	{digitW + 3, digitH - segT, segT, segT},
}

func drawDigit(dst *ebiten.Image, x, y float32, pattern uint8, level float64) {
	for i, r := range segmentRects {
		c := color.RGBA{0x30, 0x08, 0x08, 0xFF}
		if pattern&(0x80>>i) != 0 && level > 0 {
			c.R = 0x30 + uint8(float64(0xFF-0x30)*level)
			c.G = 0x08 + uint8(float64(0x30)*level)
		}
		vector.DrawFilledRect(dst, x+r[0], y+r[1], r[2], r[3], c, false)
	}
}

func (g *hostGame) drawPanel(screen *ebiten.Image) {
	p := g.h.panel
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, p.width, p.height))
		g.pixels = make([]bool, p.width*p.height)
		g.panelImg = ebiten.NewImage(p.width, p.height)
	}
	p.snapshot(g.pixels)

	dst := g.img.Pix
	for i, on := range g.pixels {
		c := colorPanelOff
		if on {
			c = colorPanelOn
		}
		j := i * 4
		dst[j+0] = c.R
		dst[j+1] = c.G
		dst[j+2] = c.B
		dst[j+3] = c.A
	}
	g.panelImg.WritePixels(dst)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(panelScale, panelScale)
	op.GeoM.Translate(panelX, panelY)
	screen.DrawImage(g.panelImg, op)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

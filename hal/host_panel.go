//go:build !tinygo

package hal

import (
	"image/color"
	"sync"
	"time"
)

// hostPanel is a monochrome panel with a back buffer for drawing and a front
// buffer for the window. Display copies back to front, taking repaint time
// like a real I2C transfer when one is configured.
type hostPanel struct {
	mu     sync.Mutex
	width  int
	height int
	back   []bool
	front  []bool
	delay  time.Duration
	frames uint64
}

func newHostPanel(width, height int, delay time.Duration) *hostPanel {
	return &hostPanel{
		width:  width,
		height: height,
		back:   make([]bool, width*height),
		front:  make([]bool, width*height),
		delay:  delay,
	}
}

func (p *hostPanel) Size() (x, y int16) { return int16(p.width), int16(p.height) }

func (p *hostPanel) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || int(x) >= p.width || int(y) >= p.height {
		return
	}
	p.mu.Lock()
	p.back[int(y)*p.width+int(x)] = c.R|c.G|c.B != 0
	p.mu.Unlock()
}

func (p *hostPanel) ClearBuffer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.back {
		p.back[i] = false
	}
}

func (p *hostPanel) Display() error {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	copy(p.front, p.back)
	p.frames++
	return nil
}

func (p *hostPanel) snapshot(dst []bool) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	copy(dst, p.front)
	return p.frames
}

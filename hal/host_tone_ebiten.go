//go:build !tinygo && cgo

package hal

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	toneSampleRate = 44100
	toneAmplitude  = 6000
)

// hostTone plays a square wave through Ebiten's audio package. The player is
// created on first use and streams silence while stopped.
type hostTone struct {
	mu     sync.Mutex
	ctx    *audio.Context
	player *audio.Player
	hz     atomic.Uint32
	logger Logger
}

func newHostTone(logger Logger) *hostTone {
	return &hostTone{logger: logger}
}

func (t *hostTone) Play(hz uint32) error {
	if hz == 0 {
		return t.Stop()
	}
	if err := t.start(); err != nil {
		return err
	}
	t.hz.Store(hz)
	return nil
}

func (t *hostTone) Stop() error {
	t.hz.Store(0)
	return nil
}

func (t *hostTone) start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.player != nil {
		return nil
	}
	if t.ctx == nil {
		t.ctx = audio.NewContext(toneSampleRate)
	}
	p, err := t.ctx.NewPlayer(&squareWave{hz: &t.hz})
	if err != nil {
		return err
	}
	p.SetBufferSize(20 * time.Millisecond)
	p.Play()
	t.player = p
	return nil
}

type squareWave struct {
	hz    *atomic.Uint32
	phase float64
}

func (w *squareWave) Read(p []byte) (int, error) {
	hz := w.hz.Load()
	step := float64(hz) / toneSampleRate
	// Ebiten audio expects 16-bit little-endian stereo.
	for i := 0; i+3 < len(p); i += 4 {
		var s int16
		if hz != 0 {
			if w.phase < 0.5 {
				s = toneAmplitude
			} else {
				s = -toneAmplitude
			}
			w.phase += step
			if w.phase >= 1 {
				w.phase -= 1
			}
		}
		p[i+0] = byte(s)
		p[i+1] = byte(s >> 8)
		p[i+2] = byte(s)
		p[i+3] = byte(s >> 8)
	}
	return len(p) &^ 3, nil
}

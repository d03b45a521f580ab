//go:build tinygo && bootdebug

package app

import (
	"image/color"
	"machine"
	"sync"
	"time"

	"torch/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	bootDiagOnce sync.Once
	bootDiagMu   sync.Mutex
	bootDiagStep string
)

// bootStep records the current boot step, repeats it on the log line and USB
// CDC every 250ms, and paints it on the panel.
func bootStep(h hal.HAL, msg string) {
	bootDiagMu.Lock()
	bootDiagStep = msg
	bootDiagMu.Unlock()
	if h == nil {
		return
	}
	bootDiagOnce.Do(func() { go bootDiagLoop(h.Logger()) })

	dev := h.Panel()
	if dev == nil {
		return
	}
	dev.ClearBuffer()
	ink := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	tinyfont.WriteLine(dev, &proggy.TinySZ8pt7b, 0, 12, "torch boot", ink)
	tinyfont.WriteLine(dev, &proggy.TinySZ8pt7b, 0, 28, msg, ink)
	_ = dev.Display()
}

func bootDiagLoop(l hal.Logger) {
	for {
		bootDiagMu.Lock()
		step := bootDiagStep
		bootDiagMu.Unlock()

		if step == "" {
			step = "<empty>"
		}
		line := "bootdiag: " + step
		if l != nil {
			l.WriteLineString(line)
		}
		// Early boot info without a separate UART adapter.
		if usb := machine.USBCDC; usb != nil {
			_, _ = usb.Write([]byte(line + "\r\n"))
		}
		time.Sleep(250 * time.Millisecond)
	}
}

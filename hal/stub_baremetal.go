//go:build tinygo && baremetal

package hal

import "image/color"

// nullPanel stands in for a panel that failed to come up.
type nullPanel struct {
	w int16
	h int16
}

func (p *nullPanel) Size() (x, y int16) { return p.w, p.h }

func (p *nullPanel) SetPixel(x, y int16, c color.RGBA) {
	_ = x
	_ = y
	_ = c
}

func (p *nullPanel) Display() error { return ErrNotImplemented }
func (p *nullPanel) ClearBuffer()   {}

package app

import (
	"errors"
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"torch/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var ErrWorkerPanic = errors.New("worker panicked")

type panicNotice struct {
	worker string
	value  any
}

// logPanic writes the panic and stack to the raw log line.
func logPanic(l hal.Logger, worker string, v any) {
	if l == nil {
		return
	}
	l.WriteLineString(fmt.Sprintf("torch panic: worker=%s panic=%v", worker, v))
	for _, line := range strings.Split(string(debug.Stack()), "\n") {
		if line == "" {
			continue
		}
		l.WriteLineString(line)
	}
}

// paintPanic draws a short notice on the panel. The graphics worker must have
// returned before this is called.
func paintPanic(dev hal.Panel, n panicNotice) {
	if dev == nil {
		return
	}
	font := &proggy.TinySZ8pt7b
	lineHeight := int16(font.YAdvance)
	_, w := tinyfont.LineWidth(font, "0")
	charWidth := int16(w)
	if charWidth <= 0 || lineHeight <= 0 {
		return
	}

	dev.ClearBuffer()
	maxW, maxH := dev.Size()
	cols := maxW / charWidth
	if cols <= 0 {
		cols = 1
	}
	ink := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	lines := []string{"PANIC", "in " + n.worker, fmt.Sprint(n.value)}
	y := lineHeight
	for _, line := range lines {
		for len(line) > 0 && y <= maxH {
			chunk, rest := takeRunes(line, cols)
			tinyfont.WriteLine(dev, font, 0, y, chunk, ink)
			y += lineHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = dev.Display()
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}

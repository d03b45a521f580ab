//go:build !tinygo && !cgo

package hal

// No audio device without cgo; the tone is logged instead.
func newHostTone(logger Logger) Tone {
	return &logTone{logger: logger}
}

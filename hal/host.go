//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultKnob is the raw host knob reading at start-up.
const DefaultKnob = 1650

// knobOrDefault reads an optional start-up knob reading; nil means
// DefaultKnob.
func knobOrDefault(raw *uint16) uint16 {
	if raw == nil {
		return DefaultKnob
	}
	return *raw
}

type hostOptions struct {
	knob       uint16
	panelDelay time.Duration
	audio      bool
	out        io.Writer
}

type hostHAL struct {
	logger *hostLogger
	keys   *hostKeys
	matrix *PinMatrix
	seg    *hostSegments
	tone   Tone
	panel  *hostPanel
	knob   *hostKnob
}

func newHost(opts hostOptions) (*hostHAL, error) {
	if opts.out == nil {
		opts.out = os.Stdout
	}
	logger := newHostLogger(opts.out, true)
	keys := &hostKeys{}

	matrix, err := newHostMatrix(keys)
	if err != nil {
		return nil, err
	}

	var tone Tone = &logTone{logger: logger}
	if opts.audio {
		tone = newHostTone(logger)
	}

	return &hostHAL{
		logger: logger,
		keys:   keys,
		matrix: matrix,
		seg:    newHostSegments(4, time.Now),
		tone:   tone,
		panel:  newHostPanel(128, 64, opts.panelDelay),
		knob:   newHostKnob(opts.knob),
	}, nil
}

func (h *hostHAL) Logger() Logger       { return h.logger }
func (h *hostHAL) Matrix() KeyMatrix    { return h.matrix }
func (h *hostHAL) Segments() SegmentBus { return h.seg }
func (h *hostHAL) Tone() Tone           { return h.tone }
func (h *hostHAL) Panel() Panel         { return h.panel }
func (h *hostHAL) Analog() Analog       { return h.knob }

// newHostMatrix wires two virtual output lines and three input lines whose
// level follows the held keys on whichever line is pulled low.
func newHostMatrix(keys *hostKeys) (*PinMatrix, error) {
	out := make([]GPIOPin, len(MatrixLayout))
	rows := make([]*virtualPin, len(MatrixLayout))
	for i := range out {
		rows[i] = newVirtualPin(fmt.Sprintf("ROW%d", i), GPIOCapOutput)
		out[i] = rows[i]
	}

	in := make([]GPIOPin, len(MatrixLayout[0]))
	for i := range in {
		col := i
		in[i] = newSensePin(fmt.Sprintf("COL%d", i), func() bool {
			held := keys.get()
			for line, row := range rows {
				if level, _ := row.Read(); !level && held&MatrixLayout[line][col] != 0 {
					return false
				}
			}
			return true
		})
	}
	return NewPinMatrix(out, in)
}

// hostLogger prints each firmware log line through a zerolog console writer.
type hostLogger struct {
	mu  sync.Mutex
	log zerolog.Logger
}

func newHostLogger(w io.Writer, timestamps bool) *hostLogger {
	cw := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05.000"}
	if !timestamps {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	log := zerolog.New(cw)
	if timestamps {
		log = log.With().Timestamp().Logger()
	}
	return &hostLogger{log: log}
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Info().Msg(s)
}

func (l *hostLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

// logTone stands in for the piezo when there is no audio device.
type logTone struct {
	mu     sync.Mutex
	hz     uint32
	logger Logger
}

func (t *logTone) Play(hz uint32) error {
	if hz == 0 {
		return t.Stop()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hz != hz {
		t.hz = hz
		t.logger.WriteLineString(fmt.Sprintf("tone: %d Hz", hz))
	}
	return nil
}

func (t *logTone) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hz != 0 {
		t.hz = 0
		t.logger.WriteLineString("tone: off")
	}
	return nil
}

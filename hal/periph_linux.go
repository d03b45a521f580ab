//go:build linux && !tinygo

package hal

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"torch/internal/mathx"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// PeriphConfig names the pins of a Raspberry Pi build, as understood by
// gpioreg.ByName.
type PeriphConfig struct {
	MatrixOut []string
	MatrixIn  []string
	Segments  [8]string
	Digits    []string
	Buzzer    string
	// I2CBus is the panel's bus; empty picks the first one registered.
	I2CBus string
	// KnobADC reads the knob from channel 0 of an ADS1115 on the panel's
	// bus. Without it the Pi has no ADC and Knob is reported as is.
	KnobADC bool
	Knob    uint16
}

func DefaultPeriphConfig() PeriphConfig {
	return PeriphConfig{
		MatrixOut: []string{"GPIO5", "GPIO6"},
		MatrixIn:  []string{"GPIO13", "GPIO19", "GPIO26"},
		Segments: [8]string{
			"GPIO4", "GPIO17", "GPIO27", "GPIO22",
			"GPIO10", "GPIO9", "GPIO11", "GPIO0",
		},
		Digits: []string{"GPIO14", "GPIO15", "GPIO23", "GPIO24"},
		Buzzer: "GPIO18",
		Knob:   DefaultKnob,
	}
}

// PeriphHAL is the Raspberry Pi board backend.
type PeriphHAL struct {
	logger *hostLogger
	matrix *PinMatrix
	seg    *PinSegments
	tone   *periphTone
	panel  Panel
	knob   Analog
	adc    *ads1x15.Dev
	bus    i2c.BusCloser
}

// NewPeriph opens the board through periph.io. The caller closes it when done.
func NewPeriph(cfg PeriphConfig) (*PeriphHAL, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: %w", err)
	}

	lookup := func(names []string) ([]GPIOPin, error) {
		pins := make([]GPIOPin, len(names))
		for i, name := range names {
			p := gpioreg.ByName(name)
			if p == nil {
				return nil, fmt.Errorf("%w: no pin %q", ErrBadPinout, name)
			}
			pins[i] = periphPin{p: p}
		}
		return pins, nil
	}

	out, err := lookup(cfg.MatrixOut)
	if err != nil {
		return nil, err
	}
	in, err := lookup(cfg.MatrixIn)
	if err != nil {
		return nil, err
	}
	matrix, err := NewPinMatrix(out, in)
	if err != nil {
		return nil, err
	}

	segList, err := lookup(cfg.Segments[:])
	if err != nil {
		return nil, err
	}
	var seg [8]GPIOPin
	copy(seg[:], segList)
	digits, err := lookup(cfg.Digits)
	if err != nil {
		return nil, err
	}
	segments, err := NewPinSegments(seg, digits)
	if err != nil {
		return nil, err
	}

	buzzer := gpioreg.ByName(cfg.Buzzer)
	if buzzer == nil {
		return nil, fmt.Errorf("%w: no pin %q", ErrBadPinout, cfg.Buzzer)
	}

	h := &PeriphHAL{
		logger: newHostLogger(os.Stdout, true),
		matrix: matrix,
		seg:    segments,
		tone:   &periphTone{pin: buzzer},
		knob:   fixedAnalog(cfg.Knob),
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("periph: i2c: %w", err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("periph: ssd1306: %w", err)
	}
	h.bus = bus
	h.panel = newPeriphPanel(dev)

	if cfg.KnobADC {
		adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("periph: ads1115: %w", err)
		}
		pin, err := adc.PinForChannel(ads1x15.Channel0, knobReference, 50*physic.Hertz, ads1x15.BestQuality)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("periph: ads1115: %w", err)
		}
		h.adc = adc
		h.knob = adcAnalog{pin: pin}
	}
	return h, nil
}

func (h *PeriphHAL) Logger() Logger       { return h.logger }
func (h *PeriphHAL) Matrix() KeyMatrix    { return h.matrix }
func (h *PeriphHAL) Segments() SegmentBus { return h.seg }
func (h *PeriphHAL) Tone() Tone           { return h.tone }
func (h *PeriphHAL) Panel() Panel         { return h.panel }
func (h *PeriphHAL) Analog() Analog       { return h.knob }

// Close releases the display lines, the ADC and the I2C bus.
func (h *PeriphHAL) Close() error {
	_ = h.seg.DisableDigits()
	_ = h.tone.Stop()
	if h.adc != nil {
		_ = h.adc.Halt()
	}
	return h.bus.Close()
}

type periphPin struct {
	p gpio.PinIO
}

func (p periphPin) Name() string { return p.p.Name() }

func (p periphPin) Caps() GPIOCaps {
	return GPIOCapInput | GPIOCapOutput | GPIOCapPullUp | GPIOCapPullDown
}

func (p periphPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := checkPinConfig(p.Name(), p.Caps(), mode, pull); err != nil {
		return err
	}
	if mode == GPIOModeOutput {
		return p.p.Out(gpio.Low)
	}
	gp := gpio.Float
	switch pull {
	case GPIOPullUp:
		gp = gpio.PullUp
	case GPIOPullDown:
		gp = gpio.PullDown
	}
	return p.p.In(gp, gpio.NoEdge)
}

func (p periphPin) Read() (bool, error) { return p.p.Read() == gpio.High, nil }

func (p periphPin) Write(level bool) error { return p.p.Out(gpio.Level(level)) }

type periphTone struct {
	mu  sync.Mutex
	pin gpio.PinIO
}

func (t *periphTone) Play(hz uint32) error {
	if hz == 0 {
		return t.Stop()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pin.PWM(gpio.DutyHalf, physic.Frequency(hz)*physic.Hertz)
}

func (t *periphTone) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pin.Out(gpio.Low)
}

// periphPanel keeps a 1-bit image in the controller's page layout and sends
// it whole on Display.
type periphPanel struct {
	mu  sync.Mutex
	dev *ssd1306.Dev
	img *image1bit.VerticalLSB
}

func newPeriphPanel(dev *ssd1306.Dev) *periphPanel {
	return &periphPanel{dev: dev, img: image1bit.NewVerticalLSB(dev.Bounds())}
}

func (p *periphPanel) Size() (x, y int16) {
	b := p.dev.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (p *periphPanel) SetPixel(x, y int16, c color.RGBA) {
	p.mu.Lock()
	p.img.SetBit(int(x), int(y), image1bit.Bit(c.R|c.G|c.B != 0))
	p.mu.Unlock()
}

func (p *periphPanel) ClearBuffer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.img.Pix {
		p.img.Pix[i] = 0
	}
}

func (p *periphPanel) Display() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dev.Draw(p.dev.Bounds(), p.img, image.Point{})
}

type fixedAnalog uint16

func (a fixedAnalog) ReadRaw() (uint16, error) { return uint16(a), nil }

// knobReference is the knob's supply rail; it reads as AnalogMax.
const knobReference = 3300 * physic.MilliVolt

type adcAnalog struct {
	pin ads1x15.PinADC
}

func (a adcAnalog) ReadRaw() (uint16, error) {
	s, err := a.pin.Read()
	if err != nil {
		return 0, err
	}
	return potentialToRaw(s.V), nil
}

// potentialToRaw maps 0..knobReference onto 0..AnalogMax.
func potentialToRaw(v physic.ElectricPotential) uint16 {
	raw := int64(v) * AnalogMax / int64(knobReference)
	return uint16(mathx.Clamp(raw, 0, AnalogMax))
}

//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/ssd1306"
)

// Pico pinout.
var (
	matrixOut = []machine.Pin{machine.GP14, machine.GP15}
	matrixIn  = []machine.Pin{machine.GP16, machine.GP17, machine.GP18}

	segmentPins = [8]machine.Pin{
		machine.GP2, machine.GP3, machine.GP4, machine.GP5,
		machine.GP6, machine.GP7, machine.GP8, machine.GP9,
	}
	digitPins = []machine.Pin{machine.GP10, machine.GP11, machine.GP12, machine.GP13}

	buzzerPin = machine.GP19
	panelSDA  = machine.GP20
	panelSCL  = machine.GP21
	knobPin   = machine.ADC0
)

const panelAddress = 0x3C

type tinyGoHAL struct {
	logger *uartLogger
	matrix KeyMatrix
	seg    SegmentBus
	tone   Tone
	panel  Panel
	knob   *adcKnob
}

// New returns a Pico (RP2040/RP2350) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// Panel: SSD1306 128x64 on I2C0 (GP20/GP21).
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	h := &tinyGoHAL{
		logger: logger,
		tone:   newPWMTone(buzzerPin),
		panel:  newPanel(logger),
		knob:   newADCKnob(knobPin),
	}

	out := make([]GPIOPin, len(matrixOut))
	for i, p := range matrixOut {
		out[i] = machinePin{pin: p, name: "ROW", pullUp: false}
	}
	in := make([]GPIOPin, len(matrixIn))
	for i, p := range matrixIn {
		in[i] = machinePin{pin: p, name: "COL", pullUp: true}
	}
	if m, err := NewPinMatrix(out, in); err != nil {
		logger.WriteLineString("hal: matrix: " + err.Error())
	} else {
		h.matrix = m
	}

	var seg [8]GPIOPin
	for i, p := range segmentPins {
		seg[i] = machinePin{pin: p, name: "SEG"}
	}
	digits := make([]GPIOPin, len(digitPins))
	for i, p := range digitPins {
		digits[i] = machinePin{pin: p, name: "DIG"}
	}
	if s, err := NewPinSegments(seg, digits); err != nil {
		logger.WriteLineString("hal: segments: " + err.Error())
	} else {
		h.seg = s
	}
	return h
}

func (h *tinyGoHAL) Logger() Logger       { return h.logger }
func (h *tinyGoHAL) Matrix() KeyMatrix    { return h.matrix }
func (h *tinyGoHAL) Segments() SegmentBus { return h.seg }
func (h *tinyGoHAL) Tone() Tone           { return h.tone }
func (h *tinyGoHAL) Panel() Panel         { return h.panel }
func (h *tinyGoHAL) Analog() Analog       { return h.knob }

func newPanel(logger Logger) Panel {
	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       panelSDA,
		SCL:       panelSCL,
	}); err != nil {
		logger.WriteLineString("hal: panel: " + err.Error())
		return &nullPanel{w: 128, h: 64}
	}
	time.Sleep(10 * time.Millisecond)

	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Address: panelAddress,
		Width:   128,
		Height:  64,
	})
	dev.ClearDisplay()
	return dev
}

type adcKnob struct {
	adc machine.ADC
}

func newADCKnob(pin machine.Pin) *adcKnob {
	machine.InitADC()
	adc := machine.ADC{Pin: pin}
	adc.Configure(machine.ADCConfig{})
	return &adcKnob{adc: adc}
}

// ReadRaw scales the 16-bit sample onto 0..AnalogMax.
func (k *adcKnob) ReadRaw() (uint16, error) {
	return uint16(uint32(k.adc.Get()) * AnalogMax / 0xFFFF), nil
}

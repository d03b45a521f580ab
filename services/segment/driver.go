package segment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"torch/hal"
	"torch/internal/mathx"
	"torch/kernel"
	"torch/services/logger"
)

const (
	NumDigits          = 4
	MaxBrightness      = 100
	DefaultDigitPeriod = 4 * time.Millisecond
)

// Driver multiplexes a frame onto the segment bus. Write and SetBrightness
// replace whole values and never wait on the hardware.
type Driver struct {
	bus    hal.SegmentBus
	alarm  kernel.Alarm
	period time.Duration
	log    *logger.Logger

	mu         sync.Mutex
	frame      [NumDigits]uint8
	brightness [NumDigits]uint8
	cycles     uint64
}

// New returns a driver with a blank frame at full brightness.
func New(bus hal.SegmentBus, alarm kernel.Alarm, period time.Duration, log *logger.Logger) *Driver {
	if period <= 0 {
		period = DefaultDigitPeriod
	}
	d := &Driver{bus: bus, alarm: alarm, period: period, log: log}
	for i := range d.brightness {
		d.brightness[i] = MaxBrightness
	}
	return d
}

func (d *Driver) Write(frame [NumDigits]uint8) {
	d.mu.Lock()
	d.frame = frame
	d.mu.Unlock()
}

// SetBrightness sets the share of each digit's slot, in percent, that the
// digit is driven. Values above 100 count as 100.
func (d *Driver) SetBrightness(b [NumDigits]uint8) {
	for i := range b {
		b[i] = mathx.Min(b[i], MaxBrightness)
	}
	d.mu.Lock()
	d.brightness = b
	d.mu.Unlock()
}

func (d *Driver) Frame() [NumDigits]uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

func (d *Driver) Brightness() [NumDigits]uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brightness
}

// Cycles returns the number of completed multiplex cycles.
func (d *Driver) Cycles() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cycles
}

// Run multiplexes until ctx ends or the bus fails. Every digit is released
// on the way out.
func (d *Driver) Run(ctx context.Context) error {
	defer func() {
		if err := d.bus.DisableDigits(); err != nil {
			d.log.Infof("release digits: %v", err)
		}
	}()

	digits := mathx.Min(d.bus.Digits(), NumDigits)
	d.log.Infof("multiplexing %d digits, %v per digit", digits, d.period)
	for {
		d.mu.Lock()
		frame, brightness := d.frame, d.brightness
		d.mu.Unlock()

		for i := 0; i < digits; i++ {
			if err := d.drive(ctx, i, frame[i], brightness[i]); err != nil {
				return err
			}
		}

		d.mu.Lock()
		d.cycles++
		d.mu.Unlock()
	}
}

// drive shows one digit for one slot: on for brightness percent of the
// period, dark for the rest.
func (d *Driver) drive(ctx context.Context, digit int, pattern, brightness uint8) error {
	if err := d.bus.DisableDigits(); err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	if err := d.bus.SetSegments(pattern); err != nil {
		return fmt.Errorf("segment: %w", err)
	}

	on := d.period * time.Duration(brightness) / MaxBrightness
	if on > 0 {
		if err := d.bus.EnableDigit(digit); err != nil {
			return fmt.Errorf("segment: %w", err)
		}
		if err := d.alarm.Wait(ctx, on); err != nil {
			return err
		}
		if err := d.bus.DisableDigits(); err != nil {
			return fmt.Errorf("segment: %w", err)
		}
	}
	if off := d.period - on; off > 0 {
		return d.alarm.Wait(ctx, off)
	}
	return ctx.Err()
}

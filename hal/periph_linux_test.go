//go:build linux && !tinygo

package hal

import (
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestPotentialToRaw(t *testing.T) {
	tests := []struct {
		v    physic.ElectricPotential
		want uint16
	}{
		{0, 0},
		{-50 * physic.MilliVolt, 0},
		{1650 * physic.MilliVolt, 1650},
		{knobReference, AnalogMax},
		{4 * physic.Volt, AnalogMax},
	}
	for _, tt := range tests {
		if got := potentialToRaw(tt.v); got != tt.want {
			t.Errorf("potentialToRaw(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

package adrv903x

import (
	"errors"
	"testing"
)

func TestGpioRouter(t *testing.T) {
	regs := NewRegisterFile()
	g := NewGpioRouter(regs)
	pin := GpioNumber(3)

	if err := g.SignalSet(pin, SignalSlicerPosition0, Rx1); err != nil {
		t.Fatal(err)
	}
	// Re-routing the same signal to the same pin is a no-op.
	if err := g.SignalSet(pin, SignalSlicerPosition0, Rx1); err != nil {
		t.Fatal(err)
	}
	if err := g.SignalSet(pin, SignalSlicerPosition0, Rx2); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("pin owned by rx1 taken by rx2: got %v", err)
	}
	if err := g.SignalSet(pin, SignalSlicerPosition1, Rx1); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("pin owned by another signal: got %v", err)
	}

	found, err := g.SignalFind(SignalSlicerPosition0, Rx1)
	if err != nil || found != pin {
		t.Errorf("SignalFind = %s, %v", found, err)
	}
	found, err = g.SignalFind(SignalSlicerPosition0, Rx2)
	if err != nil || found != GpioInvalid {
		t.Errorf("SignalFind(unbound) = %s, %v", found, err)
	}

	if err := g.SignalRelease(pin, SignalSlicerPosition0, Rx2); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("release by non-owner: got %v", err)
	}
	if err := g.SignalRelease(pin, SignalSlicerPosition0, Rx1); err != nil {
		t.Fatal(err)
	}
	if v, _ := regs.Read32(crossbarAddr(pin), 0xFFFFFFFF); v != 0 {
		t.Errorf("crossbar select after release = 0x%X", v)
	}
	if err := g.SignalSet(GpioInvalid, SignalSlicerPosition0, Rx1); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("invalid pin: got %v", err)
	}
}

func TestQueryBoundModePrefersLargestPattern(t *testing.T) {
	d, _ := newTestDevice(t)
	tests := []struct {
		name  string
		pins  []int
		want  DataFormatMode
		bound bool
	}{
		{"none", nil, GainCompDisabled, false},
		{"one", []int{0}, GainCompDisabled, false},
		{"two", []int{0, 1}, InternalSlicer2Pin, true},
		{"three", []int{0, 1, 2}, InternalSlicer3Pin, true},
		{"four", []int{0, 1, 2, 3}, InternalSlicer4Pin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.UnbindSlicerGpios(Rx0); err != nil {
				t.Fatal(err)
			}
			for i, n := range tt.pins {
				if err := d.gpio.SignalSet(GpioNumber(n+8), slicerSignals[i], Rx0); err != nil {
					t.Fatal(err)
				}
			}
			mode, bound, err := d.QueryBoundMode(Rx0)
			if err != nil {
				t.Fatal(err)
			}
			if mode != tt.want || bound != tt.bound {
				t.Errorf("got (%s, %v), want (%s, %v)", mode, bound, tt.want, tt.bound)
			}
		})
	}
}

func TestQueryBoundModeIgnoresGaps(t *testing.T) {
	d, _ := newTestDevice(t)
	// Positions 0, 1 and 3 bound: the 3 pin pattern needs position 2.
	for _, i := range []int{0, 1, 3} {
		if err := d.gpio.SignalSet(GpioNumber(i), slicerSignals[i], Rx4); err != nil {
			t.Fatal(err)
		}
	}
	mode, _, err := d.QueryBoundMode(Rx4)
	if err != nil || mode != InternalSlicer2Pin {
		t.Errorf("got %s, %v", mode, err)
	}
}

func TestBindSlicerGpiosNeedsPins(t *testing.T) {
	d, _ := newTestDevice(t)
	sc := SlicerConfig{IntGpioSelect: [NumSlicerBits]GpioPin{GpioNumber(1)}}
	if err := d.BindSlicerGpios(Rx0, InternalSlicer2Pin, sc); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("got %v, want ErrInvalidParam", err)
	}
	if err := d.BindSlicerGpios(Rx0, InternalSlicerNoGpio, sc); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("nogpio: got %v, want ErrInvalidParam", err)
	}
}

func TestSlicerPinConflictAcrossChannels(t *testing.T) {
	d, _ := newTestDevice(t)
	sc := SlicerConfig{IntGpioSelect: [NumSlicerBits]GpioPin{GpioNumber(20), GpioNumber(21)}}
	if err := d.SetInteger(Rx0.Mask(), InternalSlicer2Pin, IntegerConfig{}, sc); err != nil {
		t.Fatal(err)
	}
	if err := d.SetInteger(Rx1.Mask(), InternalSlicer2Pin, IntegerConfig{}, sc); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("got %v, want ErrInvalidParam", err)
	}
	mustMode(t, d, Rx0, InternalSlicer2Pin)
}

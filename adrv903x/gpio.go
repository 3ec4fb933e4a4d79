package adrv903x

import (
	"fmt"
	"math/bits"
)

// Signal is an on-chip source that can be routed to a GPIO.
type Signal uint8

const (
	SignalUnused          Signal = 0x00
	SignalSlicerPosition0 Signal = 0x21
	SignalSlicerPosition1 Signal = 0x22
	SignalSlicerPosition2 Signal = 0x23
	SignalSlicerPosition3 Signal = 0x24
)

var slicerSignals = [NumSlicerBits]Signal{
	SignalSlicerPosition0,
	SignalSlicerPosition1,
	SignalSlicerPosition2,
	SignalSlicerPosition3,
}

func (s Signal) String() string {
	switch s {
	case SignalUnused:
		return "unused"
	case SignalSlicerPosition0, SignalSlicerPosition1, SignalSlicerPosition2, SignalSlicerPosition3:
		return fmt.Sprintf("slicer_position_%d", s-SignalSlicerPosition0)
	}
	return fmt.Sprintf("signal(0x%02X)", uint8(s))
}

// SignalPort routes signals to GPIO pins, scoped per channel.
// SignalFind returns GpioInvalid with a nil error when the signal is not routed.
type SignalPort interface {
	SignalSet(pin GpioPin, sig Signal, ch Channel) error
	SignalFind(sig Signal, ch Channel) (GpioPin, error)
	SignalRelease(pin GpioPin, sig Signal, ch Channel) error
}

// GpioRouter is the on-chip GPIO crossbar. Routing lives entirely in the
// per-pin source select registers, so any number of routers over the same
// register port agree with each other.
type GpioRouter struct {
	regs RegisterPort
}

// NewGpioRouter creates a crossbar router over regs.
func NewGpioRouter(regs RegisterPort) *GpioRouter {
	return &GpioRouter{regs: regs}
}

func crossbarAddr(pin GpioPin) uint32 {
	return gpioCrossbarBase + uint32(pin.Number())*gpioCrossbarStride
}

// channelCode is 1-based so that a zero register means "idle".
func channelCode(ch Channel) uint32 {
	return uint32(bits.TrailingZeros32(uint32(ch))) + 1
}

func selectWord(sig Signal, ch Channel) uint32 {
	return uint32(sig)<<FieldShift(gpioSelSignalMask) | channelCode(ch)<<FieldShift(gpioSelChannelMask)
}

const gpioSelMask = gpioSelSignalMask | gpioSelChannelMask

func (g *GpioRouter) SignalSet(pin GpioPin, sig Signal, ch Channel) error {
	if !pin.Valid() {
		return invalidParam("SignalSet", "pin", "invalid gpio %s", pin)
	}
	if sig == SignalUnused {
		return invalidParam("SignalSet", "signal", "cannot route unused signal")
	}
	addr := crossbarAddr(pin)
	cur, err := g.regs.Read32(addr, gpioSelMask)
	if err != nil {
		return registerIO("SignalSet", addr, gpioSelMask, err)
	}
	want := selectWord(sig, ch)
	if cur != 0 && cur != want {
		return invalidParam("SignalSet", "pin", "%s already routed (select 0x%03X)", pin, cur)
	}
	if err := g.regs.Write32(addr, want, gpioSelMask); err != nil {
		return registerIO("SignalSet", addr, gpioSelMask, err)
	}
	return nil
}

func (g *GpioRouter) SignalFind(sig Signal, ch Channel) (GpioPin, error) {
	want := selectWord(sig, ch)
	for n := 0; n < NumGpioPins; n++ {
		pin := GpioNumber(n)
		addr := crossbarAddr(pin)
		cur, err := g.regs.Read32(addr, gpioSelMask)
		if err != nil {
			return GpioInvalid, registerIO("SignalFind", addr, gpioSelMask, err)
		}
		if cur == want {
			return pin, nil
		}
	}
	return GpioInvalid, nil
}

func (g *GpioRouter) SignalRelease(pin GpioPin, sig Signal, ch Channel) error {
	if !pin.Valid() {
		return invalidParam("SignalRelease", "pin", "invalid gpio %s", pin)
	}
	addr := crossbarAddr(pin)
	cur, err := g.regs.Read32(addr, gpioSelMask)
	if err != nil {
		return registerIO("SignalRelease", addr, gpioSelMask, err)
	}
	if cur != selectWord(sig, ch) {
		return invalidParam("SignalRelease", "pin", "%s is not routed to %s on %s", pin, sig, ch)
	}
	if err := g.regs.Write32(addr, 0, gpioSelMask); err != nil {
		return registerIO("SignalRelease", addr, gpioSelMask, err)
	}
	return nil
}

// BindSlicerGpios routes slicer position signals 0..N-1 of ch to the first N
// pins of slicer.IntGpioSelect, where N is the pin count of mode.
func (d *Device) BindSlicerGpios(ch Channel, mode DataFormatMode, slicer SlicerConfig) error {
	const op = "BindSlicerGpios"
	n := mode.slicerPins()
	if n == 0 {
		return invalidParam(op, "mode", "%s does not use slicer gpios", mode)
	}
	if !ch.IsRx() {
		return invalidChannel(op, ch, "slicer gpios are Rx only")
	}
	for i := 0; i < n; i++ {
		if !slicer.IntGpioSelect[i].Valid() {
			return invalidParam(op, "int_gpio_select", "%s needs %d valid gpios, slot %d is %s",
				mode, n, i, slicer.IntGpioSelect[i])
		}
	}
	for i := 0; i < n; i++ {
		pin := slicer.IntGpioSelect[i]
		if err := d.gpio.SignalSet(pin, slicerSignals[i], ch); err != nil {
			return err
		}
		d.log.Debug("slicer gpio bound", "channel", ch, "signal", slicerSignals[i], "pin", pin)
	}
	return nil
}

// UnbindSlicerGpios releases every slicer position signal routed for ch.
func (d *Device) UnbindSlicerGpios(ch Channel) error {
	for _, sig := range slicerSignals {
		pin, err := d.gpio.SignalFind(sig, ch)
		if err != nil {
			return err
		}
		if !pin.Valid() {
			continue
		}
		if err := d.gpio.SignalRelease(pin, sig, ch); err != nil {
			return err
		}
		d.log.Debug("slicer gpio released", "channel", ch, "signal", sig, "pin", pin)
	}
	return nil
}

// boundSlicerPins returns the pin of each slicer position signal of ch.
func (d *Device) boundSlicerPins(ch Channel) ([NumSlicerBits]GpioPin, error) {
	var pins [NumSlicerBits]GpioPin
	for i, sig := range slicerSignals {
		pin, err := d.gpio.SignalFind(sig, ch)
		if err != nil {
			return pins, err
		}
		pins[i] = pin
	}
	return pins, nil
}

// slicerPinPatterns is checked in order; larger patterns win.
var slicerPinPatterns = []DataFormatMode{InternalSlicer4Pin, InternalSlicer3Pin, InternalSlicer2Pin}

// QueryBoundMode derives the GPIO slicer mode of ch from which slicer
// position signals are routed. It returns GainCompDisabled and false when
// no pattern is fully bound.
func (d *Device) QueryBoundMode(ch Channel) (DataFormatMode, bool, error) {
	pins, err := d.boundSlicerPins(ch)
	if err != nil {
		return GainCompDisabled, false, err
	}
	for _, mode := range slicerPinPatterns {
		if allBound(pins[:mode.slicerPins()]) {
			return mode, true, nil
		}
	}
	return GainCompDisabled, false, nil
}

func allBound(pins []GpioPin) bool {
	for _, p := range pins {
		if !p.Valid() {
			return false
		}
	}
	return true
}

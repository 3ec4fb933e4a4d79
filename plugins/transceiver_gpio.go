package plugins

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RESETB timing
const (
	ResetHoldTime   = 1 * time.Millisecond
	ResetSettleTime = 10 * time.Millisecond
)

// GPIOController drives the transceiver RESETB line
type GPIOController struct {
	chip      *gpiocdev.Chip
	resetLine *gpiocdev.Line
	chipPath  string
	resetPin  int
}

// NewGPIOController creates a new GPIO controller
func NewGPIOController(chipPath string, resetPin int) (*GPIOController, error) {
	chip, err := gpiocdev.NewChip(chipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GPIO chip %s: %w", chipPath, err)
	}

	// RESETB is active low; request it released
	resetLine, err := chip.RequestLine(
		resetPin,
		gpiocdev.AsOutput(1),
		gpiocdev.WithConsumer("adrv903x-resetb"),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("failed to request reset pin %d: %w", resetPin, err)
	}

	return &GPIOController{
		chip:      chip,
		resetLine: resetLine,
		chipPath:  chipPath,
		resetPin:  resetPin,
	}, nil
}

// Close releases all GPIO resources
func (g *GPIOController) Close() error {
	var errs []error

	if g.resetLine != nil {
		if err := g.resetLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close reset line: %w", err))
		}
		g.resetLine = nil
	}

	if g.chip != nil {
		if err := g.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close GPIO chip: %w", err))
		}
		g.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing GPIO: %v", errs)
	}

	return nil
}

// Reset pulses RESETB low and waits for the device to come back
func (g *GPIOController) Reset() error {
	if err := g.SetResetAsserted(true); err != nil {
		return err
	}
	time.Sleep(ResetHoldTime)

	if err := g.SetResetAsserted(false); err != nil {
		return err
	}
	time.Sleep(ResetSettleTime)

	return nil
}

// SetResetAsserted holds the device in reset (true) or releases it
func (g *GPIOController) SetResetAsserted(asserted bool) error {
	if g.resetLine == nil {
		return fmt.Errorf("reset line not initialized")
	}

	value := 1
	if asserted {
		value = 0
	}

	if err := g.resetLine.SetValue(value); err != nil {
		return fmt.Errorf("failed to set reset pin to %d: %w", value, err)
	}

	return nil
}

// PulseReset opens the line, pulses it, and releases it again
func PulseReset(chipPath string, resetPin int) error {
	g, err := NewGPIOController(chipPath, resetPin)
	if err != nil {
		return err
	}
	defer g.Close()
	return g.Reset()
}

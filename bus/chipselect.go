package bus

import (
	"fmt"

	"pentouch/core"
)

// ChipSelect drives a converter's select line. A nil *ChipSelect is valid
// and does nothing, for converters whose select is handled in hardware.
type ChipSelect struct {
	gpio       core.GPIODriver
	pin        core.GPIOPin
	activeHigh bool
	selected   bool
}

// NewChipSelect configures pin as an output and leaves it deselected.
func NewChipSelect(gpio core.GPIODriver, pin core.GPIOPin, activeHigh bool) (*ChipSelect, error) {
	cs := &ChipSelect{gpio: gpio, pin: pin, activeHigh: activeHigh}
	if err := gpio.ConfigureOutput(pin); err != nil {
		return nil, fmt.Errorf("bus: chip select pin %d: %w", pin, err)
	}
	if err := gpio.SetPin(pin, !activeHigh); err != nil {
		return nil, fmt.Errorf("bus: chip select pin %d: %w", pin, err)
	}
	return cs, nil
}

// Select asserts the line and returns the function that deasserts it.
// Callers defer the returned function so the line is released on every
// path out of a transfer.
func (c *ChipSelect) Select() (func(), error) {
	if c == nil {
		return func() {}, nil
	}
	if err := c.gpio.SetPin(c.pin, c.activeHigh); err != nil {
		return func() {}, fmt.Errorf("bus: select pin %d: %w", c.pin, err)
	}
	c.selected = true
	return c.deselect, nil
}

func (c *ChipSelect) deselect() {
	c.gpio.SetPin(c.pin, !c.activeHigh)
	c.selected = false
}

// Selected reports whether the line is currently asserted.
func (c *ChipSelect) Selected() bool {
	return c != nil && c.selected
}

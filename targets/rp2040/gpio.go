//go:build rp2040 || rp2350

package main

import (
	"machine"

	"pentouch/core"
)

// RPGPIODriver implements core.GPIODriver on machine.Pin.
type RPGPIODriver struct {
	pins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a GPIO driver.
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		pins: make(map[core.GPIOPin]machine.Pin),
	}
}

// Pins are reconfigured on every call: the 4-wire transport switches plates
// between output and input on each conversion.
func (d *RPGPIODriver) configure(pin core.GPIOPin, mode machine.PinMode) {
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: mode})
	d.pins[pin] = p
}

func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	d.configure(pin, machine.PinOutput)
	return nil
}

func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	d.configure(pin, machine.PinInputPullup)
	return nil
}

func (d *RPGPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	d.configure(pin, machine.PinInputPulldown)
	return nil
}

// SetPin drives pin, configuring it as an output first if needed.
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	p, ok := d.pins[pin]
	if !ok {
		d.configure(pin, machine.PinOutput)
		p = d.pins[pin]
	}
	p.Set(value)
	return nil
}

// GetPin reads pin. Unconfigured pins read low.
func (d *RPGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	p, ok := d.pins[pin]
	if !ok {
		return false, nil
	}
	return p.Get(), nil
}

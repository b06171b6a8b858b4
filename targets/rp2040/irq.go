//go:build rp2040 || rp2350

package main

import (
	"machine"
)

// penLine is the pen-down interrupt: an active-low input with pull-up that
// the controller drives low while the panel is touched.
type penLine struct {
	pin     machine.Pin
	handler func()
	wake    bool
}

func newPenLine(pin machine.Pin) *penLine {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &penLine{pin: pin, handler: func() {}}
}

func (l *penLine) SetHandler(handler func()) {
	l.handler = handler
}

func (l *penLine) Enable() error {
	// A callback must be cleared before a new one is installed.
	l.pin.SetInterrupt(machine.PinFalling, nil)
	return l.pin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		l.handler()
	})
}

func (l *penLine) Disable() error {
	return l.pin.SetInterrupt(machine.PinFalling, nil)
}

// SetWake only records the request. Any enabled GPIO interrupt ends the
// WFI sleep the idle loop uses, so an armed line already wakes the core.
func (l *penLine) SetWake(enabled bool) error {
	l.wake = enabled
	return nil
}

func (l *penLine) Asserted() bool {
	return !l.pin.Get()
}

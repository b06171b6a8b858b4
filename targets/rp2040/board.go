//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"

	"pentouch/bus"
	"pentouch/core"
	"pentouch/ts"
)

// Board selection. Override at link time, for example
// tinygo flash -target pico -ldflags "-X main.transportKind=adc -X main.preset=ts-adc".
var (
	preset        = "htcsable"
	transportKind = "pio" // pio, spi or adc
)

// Converter wiring.
const (
	pinSCK   = machine.GPIO2
	pinSDO   = machine.GPIO3
	pinSDI   = machine.GPIO4
	pinCS    = machine.GPIO5
	pinPen   = machine.GPIO6
	pinBlank = machine.GPIO7 // high while the display is blanked
)

// Bare 4-wire panel wiring. The sense plates sit on ADC-capable pins.
var (
	panelPlates = bus.Plates{XP: 26, XM: 27, YP: 28, YM: 22}
	panelSense  = bus.Sense{XP: 0, XM: 1, YP: 2}
)

const (
	batteryRefMV   = 3300
	batteryDivider = 2
)

var errTransportKind = errors.New("unknown transport kind")

// newTransport builds the converter transport the board is wired for.
// hasAux reports whether the transport can sample the battery input.
func newTransport(gpio core.GPIODriver, cfg *ts.Config) (t ts.Transport, hasAux bool, err error) {
	switch transportKind {
	case "pio":
		t, err = newPIOTransport(gpio, cfg.Bus)
		return t, true, err
	case "spi":
		t, err = newSPITransport(gpio, cfg.Bus)
		return t, true, err
	case "adc":
		return bus.NewADCMuxTransport(gpio, NewRPADCDriver(), panelPlates, panelSense, hardwareClock{}), false, nil
	default:
		return nil, false, errTransportKind
	}
}

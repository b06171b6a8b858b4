//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"

	"pentouch/core"
)

// RPADCDriver implements core.ADCDriver using TinyGo's machine.ADC.
// Channels 0-3 are the ADC0-ADC3 pins.
type RPADCDriver struct {
	arefMilliVolt uint32
	channels      [4]machine.ADC
	configured    [4]bool
}

// NewRPADCDriver constructs the driver but does not Init it.
func NewRPADCDriver() *RPADCDriver {
	return &RPADCDriver{
		arefMilliVolt: 3300,
		channels: [4]machine.ADC{
			{Pin: machine.ADC0},
			{Pin: machine.ADC1},
			{Pin: machine.ADC2},
			{Pin: machine.ADC3},
		},
	}
}

var errADCChannel = errors.New("unsupported ADC channel")

func (d *RPADCDriver) Init(cfg core.ADCConfig) error {
	if cfg.Reference != 0 {
		d.arefMilliVolt = cfg.Reference
	}
	machine.InitADC()
	return nil
}

// ConfigureChannel puts the channel's pin in analog mode. Called again
// after the pin was used as a plate drive, it restores the analog mux.
func (d *RPADCDriver) ConfigureChannel(ch core.ADCChannelID) error {
	if int(ch) >= len(d.channels) {
		return errADCChannel
	}
	if err := d.channels[ch].Configure(machine.ADCConfig{Reference: d.arefMilliVolt}); err != nil {
		return err
	}
	d.configured[ch] = true
	return nil
}

// ReadRaw returns the sample left aligned to 16 bits, as machine.ADC does.
func (d *RPADCDriver) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	if int(ch) >= len(d.channels) {
		return 0, errADCChannel
	}
	if !d.configured[ch] {
		if err := d.ConfigureChannel(ch); err != nil {
			return 0, err
		}
	}
	return core.ADCValue(d.channels[ch].Get()), nil
}

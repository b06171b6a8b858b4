//go:build rp2040 || rp2350

package main

import (
	"machine"

	pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"

	"pentouch/bus"
	"pentouch/core"
	"pentouch/ts"
)

// pioPort exposes a state machine running the piolib SPI program as a
// bus.FIFOPort. Each byte written clocks one byte back.
type pioPort struct {
	sm pio.StateMachine
}

func (p pioPort) TxFull() bool  { return p.sm.IsTxFIFOFull() }
func (p pioPort) RxEmpty() bool { return p.sm.IsRxFIFOEmpty() }
func (p pioPort) Put(v uint32)  { p.sm.TxPut(v) }
func (p pioPort) Get() uint32   { return p.sm.RxGet() & 0xFF }

// newPIOTransport loads the SPI program on a free PIO0 state machine.
// Only the clock divider is reprogrammed on resume; the mode is fixed by
// the program loaded here.
func newPIOTransport(gpio core.GPIODriver, bc ts.BusConfig) (*bus.FIFOTransport, error) {
	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	_, err = piolib.NewSPI(sm, machine.SPIConfig{
		Frequency: bc.RateHz,
		Mode:      bc.Mode,
		SCK:       pinSCK,
		SDO:       pinSDO,
		SDI:       pinSDI,
	})
	if err != nil {
		return nil, err
	}
	cs, err := bus.NewChipSelect(gpio, core.GPIOPin(pinCS), false)
	if err != nil {
		return nil, err
	}

	setup := func(bc ts.BusConfig) error {
		whole, frac, err := pio.ClkDivFromFrequency(bc.RateHz, machine.CPUFrequency())
		if err != nil {
			return err
		}
		sm.SetClkDiv(whole, frac)
		sm.ClearFIFOs()
		return nil
	}
	return bus.NewFIFOTransport(pioPort{sm: sm}, hardwareClock{},
		bus.WithChipSelect(cs), bus.WithSetup(setup)), nil
}

// newSPITransport uses the SPI0 peripheral instead of PIO.
func newSPITransport(gpio core.GPIODriver, bc ts.BusConfig) (*bus.SPITransport, error) {
	cs, err := bus.NewChipSelect(gpio, core.GPIOPin(pinCS), false)
	if err != nil {
		return nil, err
	}
	spi := machine.SPI0
	setup := func(bc ts.BusConfig) error {
		return spi.Configure(machine.SPIConfig{
			Frequency: bc.RateHz,
			Mode:      bc.Mode,
			SCK:       pinSCK,
			SDO:       pinSDO,
			SDI:       pinSDI,
		})
	}
	return bus.NewSPITransport(spi, cs, setup), nil
}

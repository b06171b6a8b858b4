package bus

import (
	"fmt"

	"pentouch/core"
	"pentouch/ts"
)

// Plates are the GPIO lines wired to the four panel electrodes.
type Plates struct {
	XP, XM, YP, YM core.GPIOPin
}

// Sense are the ADC inputs on the electrodes that are read back.
type Sense struct {
	XP, XM, YP core.ADCChannelID
}

// ADCMuxTransport drives a bare 4-wire panel directly: two plates are
// driven as a voltage divider, the others float, and the MCU's own ADC reads
// the result after a settle delay.
type ADCMuxTransport struct {
	gpio    core.GPIODriver
	adc     core.ADCDriver
	plates  Plates
	sense   Sense
	clock   core.Clock
	adcCfg  core.ADCConfig
	settle  uint32
	ordinal uint32
	powered bool
}

// NewADCMuxTransport returns a transport for a panel wired to plates and
// sense. A nil clock uses the system tick counter.
func NewADCMuxTransport(gpio core.GPIODriver, adc core.ADCDriver, plates Plates, sense Sense, clock core.Clock) *ADCMuxTransport {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &ADCMuxTransport{gpio: gpio, adc: adc, plates: plates, sense: sense, clock: clock}
}

// Configure initializes the ADC and its sense channels and records the
// settle time.
func (a *ADCMuxTransport) Configure(cfg ts.BusConfig) error {
	a.settle = cfg.SettleUS
	if err := a.adc.Init(a.adcCfg); err != nil {
		return fmt.Errorf("bus: adc init: %w", err)
	}
	for _, ch := range []core.ADCChannelID{a.sense.XP, a.sense.XM, a.sense.YP} {
		if err := a.adc.ConfigureChannel(ch); err != nil {
			return fmt.Errorf("bus: adc channel %d: %w", ch, err)
		}
	}
	return nil
}

// Power floats every plate when switched off.
func (a *ADCMuxTransport) Power(on bool) error {
	a.powered = on
	if on {
		return nil
	}
	return a.float(a.plates.XP, a.plates.XM, a.plates.YP, a.plates.YM)
}

// Sample drives the plates for ch, waits for them to settle and reads the
// sense electrode.
func (a *ADCMuxTransport) Sample(ch ts.Channel) (ts.RawSample, error) {
	if !a.powered {
		return ts.RawSample{}, errPoweredOff
	}

	p := a.plates
	var high, low, floating core.GPIOPin
	var sense core.ADCChannelID
	switch ch {
	case ts.X:
		high, low, floating, sense = p.XP, p.XM, p.YM, a.sense.YP
	case ts.Y:
		high, low, floating, sense = p.YP, p.YM, p.XM, a.sense.XP
	case ts.Z1:
		high, low, floating, sense = p.YM, p.XP, p.YP, a.sense.XM
	case ts.Z2:
		high, low, floating, sense = p.YM, p.XP, p.XM, a.sense.YP
	default:
		return ts.RawSample{}, fmt.Errorf("bus: panel has no channel %v", ch)
	}

	if err := a.drive(high, low); err != nil {
		return ts.RawSample{}, err
	}
	if err := a.float(floating); err != nil {
		return ts.RawSample{}, err
	}
	// The sense electrode was a drive plate on the previous conversion.
	if err := a.adc.ConfigureChannel(sense); err != nil {
		return ts.RawSample{}, fmt.Errorf("bus: adc channel %d: %w", sense, err)
	}

	deadline := core.NewDeadline(a.clock, a.settle)
	for !deadline.Expired() {
	}

	raw, err := a.adc.ReadRaw(sense)
	if err != nil {
		return ts.RawSample{}, timeout("adc", ch, err)
	}
	a.ordinal++
	// ADC values are left aligned to 16 bits.
	return ts.RawSample{Channel: ch, Value: uint16(raw) >> 4, Ordinal: a.ordinal}, nil
}

func (a *ADCMuxTransport) drive(high, low core.GPIOPin) error {
	for _, pin := range []core.GPIOPin{high, low} {
		if err := a.gpio.ConfigureOutput(pin); err != nil {
			return fmt.Errorf("bus: plate pin %d: %w", pin, err)
		}
	}
	if err := a.gpio.SetPin(high, true); err != nil {
		return fmt.Errorf("bus: plate pin %d: %w", high, err)
	}
	if err := a.gpio.SetPin(low, false); err != nil {
		return fmt.Errorf("bus: plate pin %d: %w", low, err)
	}
	return nil
}

func (a *ADCMuxTransport) float(pins ...core.GPIOPin) error {
	for _, pin := range pins {
		if err := a.gpio.ConfigureInputPullDown(pin); err != nil {
			return fmt.Errorf("bus: plate pin %d: %w", pin, err)
		}
	}
	return nil
}

package bus

import (
	"tinygo.org/x/drivers"

	"pentouch/ts"
)

// SPITransport samples an ADS7846-style converter on a drivers.SPI bus,
// for example machine.SPI0. The bus driver owns the transfer timing, so any
// error it returns is reported as a bus timeout.
type SPITransport struct {
	spi     drivers.SPI
	cs      *ChipSelect
	cmds    Commands
	setup   func(ts.BusConfig) error
	ordinal uint32
	powered bool
	tx      [3]byte
	rx      [3]byte
}

// NewSPITransport returns a transport on spi. cs may be nil. setup, if not
// nil, reprograms the bus clock and mode on Configure.
func NewSPITransport(spi drivers.SPI, cs *ChipSelect, setup func(ts.BusConfig) error) *SPITransport {
	return &SPITransport{spi: spi, cs: cs, cmds: ADS7846, setup: setup}
}

// Configure reprograms the bus.
func (s *SPITransport) Configure(cfg ts.BusConfig) error {
	if s.setup == nil {
		return nil
	}
	return s.setup(cfg)
}

// Power switches the converter.
func (s *SPITransport) Power(on bool) error {
	if !on && s.powered {
		if _, err := s.transfer(s.cmds.PowerDown, ts.Aux); err != nil {
			return err
		}
	}
	s.powered = on
	return nil
}

// Sample runs one conversion of ch.
func (s *SPITransport) Sample(ch ts.Channel) (ts.RawSample, error) {
	if !s.powered {
		return ts.RawSample{}, errPoweredOff
	}
	cmd, err := s.cmds.For(ch)
	if err != nil {
		return ts.RawSample{}, err
	}
	v, err := s.transfer(cmd, ch)
	if err != nil {
		return ts.RawSample{}, err
	}
	s.ordinal++
	return ts.RawSample{Channel: ch, Value: v, Ordinal: s.ordinal}, nil
}

func (s *SPITransport) transfer(cmd byte, ch ts.Channel) (uint16, error) {
	release, err := s.cs.Select()
	if err != nil {
		return 0, err
	}
	defer release()

	s.tx = [3]byte{cmd, 0, 0}
	if err := s.spi.Tx(s.tx[:], s.rx[:]); err != nil {
		return 0, timeout("spi", ch, err)
	}
	return decode12(s.rx[1], s.rx[2]), nil
}

package bus

import (
	"errors"

	"pentouch/core"
	"pentouch/ts"
)

// FIFOPort is a synchronous serial port reached through transmit and receive
// FIFOs, such as an SSP register block or a PIO state machine running an
// SPI program. Each Put clocks one frame out and one frame in.
type FIFOPort interface {
	TxFull() bool
	RxEmpty() bool
	Put(v uint32)
	Get() uint32
}

// FIFOTransport samples an ADS7846-style converter through a FIFOPort.
// Every busy-wait is bounded by a wall-clock deadline.
type FIFOTransport struct {
	port    FIFOPort
	cs      *ChipSelect
	clock   core.Clock
	cmds    Commands
	setup   func(ts.BusConfig) error
	timeout uint32
	ordinal uint32
	powered bool
}

// FIFOOption configures a FIFOTransport.
type FIFOOption func(*FIFOTransport)

// WithChipSelect selects the converter with cs around each sample.
func WithChipSelect(cs *ChipSelect) FIFOOption {
	return func(f *FIFOTransport) {
		f.cs = cs
	}
}

// WithSetup installs the function that reprograms the port clock and mode.
// It runs on every Configure, including after resume.
func WithSetup(setup func(ts.BusConfig) error) FIFOOption {
	return func(f *FIFOTransport) {
		f.setup = setup
	}
}

// WithCommands replaces the ADS7846 control bytes.
func WithCommands(cmds Commands) FIFOOption {
	return func(f *FIFOTransport) {
		f.cmds = cmds
	}
}

// NewFIFOTransport returns a transport on port. A nil clock uses the
// system tick counter.
func NewFIFOTransport(port FIFOPort, clock core.Clock, opts ...FIFOOption) *FIFOTransport {
	if clock == nil {
		clock = core.SystemClock{}
	}
	f := &FIFOTransport{
		port:    port,
		clock:   clock,
		cmds:    ADS7846,
		timeout: 1000,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Configure applies the bus timing and the per-transfer timeout.
func (f *FIFOTransport) Configure(cfg ts.BusConfig) error {
	if cfg.TimeoutUS != 0 {
		f.timeout = cfg.TimeoutUS
	}
	if f.setup != nil {
		return f.setup(cfg)
	}
	return nil
}

// Power switches the converter. Powering off sends the power-down command
// so the pen interrupt stays live.
func (f *FIFOTransport) Power(on bool) error {
	if !on && f.powered {
		if _, err := f.exchange(f.cmds.PowerDown, ts.Aux); err != nil {
			return err
		}
	}
	f.powered = on
	return nil
}

var errPoweredOff = errors.New("bus: transport powered off")

// Sample runs one conversion of ch.
func (f *FIFOTransport) Sample(ch ts.Channel) (ts.RawSample, error) {
	if !f.powered {
		return ts.RawSample{}, errPoweredOff
	}
	cmd, err := f.cmds.For(ch)
	if err != nil {
		return ts.RawSample{}, err
	}
	v, err := f.exchange(cmd, ch)
	if err != nil {
		return ts.RawSample{}, err
	}
	f.ordinal++
	return ts.RawSample{Channel: ch, Value: v, Ordinal: f.ordinal}, nil
}

// exchange clocks a control byte and two dummy frames through the port and
// decodes the last two received frames.
func (f *FIFOTransport) exchange(cmd byte, ch ts.Channel) (uint16, error) {
	release, err := f.cs.Select()
	if err != nil {
		return 0, err
	}
	defer release()

	deadline := core.NewDeadline(f.clock, f.timeout)

	// Drop anything left over from an aborted transfer.
	for !f.port.RxEmpty() {
		f.port.Get()
		if deadline.Expired() {
			return 0, timeout("drain", ch, nil)
		}
	}

	tx := [3]byte{cmd, 0, 0}
	var rx [3]byte
	for i, b := range tx {
		for f.port.TxFull() {
			if deadline.Expired() {
				return 0, timeout("transmit", ch, nil)
			}
		}
		f.port.Put(uint32(b))
		for f.port.RxEmpty() {
			if deadline.Expired() {
				return 0, timeout("receive", ch, nil)
			}
		}
		rx[i] = byte(f.port.Get())
	}
	return decode12(rx[1], rx[2]), nil
}

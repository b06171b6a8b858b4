// Package bus provides touchscreen transports: the converters a ts.Device
// samples through, and the pieces shared by several users of one bus.
package bus

import (
	"fmt"

	"pentouch/ts"
)

// Commands holds the converter control byte for each channel. A zero byte
// marks a channel the converter does not have.
type Commands struct {
	X, Y, Z1, Z2, Aux byte

	// PowerDown is sent when the transport is switched off. It leaves the
	// converter idle with its pen interrupt output enabled.
	PowerDown byte
}

// ADS7846 is the control byte set of the ADS7846/TSC2046/XPT2046 family:
// start bit, channel select, 12-bit mode, differential reference, power
// down between conversions.
var ADS7846 = Commands{
	X:         0xD0,
	Y:         0x90,
	Z1:        0xB0,
	Z2:        0xC0,
	Aux:       0xA4, // VBAT, single ended
	PowerDown: 0xD0,
}

// For returns the control byte for ch.
func (c Commands) For(ch ts.Channel) (byte, error) {
	var cmd byte
	switch ch {
	case ts.X:
		cmd = c.X
	case ts.Y:
		cmd = c.Y
	case ts.Z1:
		cmd = c.Z1
	case ts.Z2:
		cmd = c.Z2
	case ts.Aux:
		cmd = c.Aux
	}
	if cmd == 0 {
		return 0, fmt.Errorf("bus: no command for channel %v", ch)
	}
	return cmd, nil
}

// decode12 extracts the 12-bit conversion clocked out after a control byte.
func decode12(hi, lo byte) uint16 {
	return (uint16(hi)<<8 | uint16(lo)) >> 3 & 0x0FFF
}

func timeout(op string, ch ts.Channel, err error) error {
	if err == nil {
		return fmt.Errorf("bus: %s %v: %w", op, ch, ts.ErrBusTimeout)
	}
	return fmt.Errorf("bus: %s %v: %w: %w", op, ch, ts.ErrBusTimeout, err)
}

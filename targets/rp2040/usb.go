//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"
)

var errUSBStalled = errors.New("usb: write made no progress")

// InitUSB configures the USB CDC serial port.
func InitUSB() {
	machine.Serial.Configure(machine.UARTConfig{})
}

// usbWriter carries report frames to the host. A frame that cannot be
// written is dropped; the sink counts it. Write runs under the sink lock so
// it must not log; the main loop reports outages via takeOutage.
type usbWriter struct {
	failures uint32
	outage   uint32
}

// usbStallLimit is how many consecutive failed writes count as an outage.
const usbStallLimit = 10

func (w *usbWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := machine.Serial.Write(p[written:])
		if err == nil && n == 0 {
			err = errUSBStalled
		}
		if err != nil {
			w.failures++
			return written, err
		}
		written += n
	}
	if w.failures >= usbStallLimit {
		w.outage = w.failures
	}
	w.failures = 0
	return written, nil
}

// takeOutage returns the length of the last finished outage, once.
func (w *usbWriter) takeOutage() uint32 {
	n := w.outage
	w.outage = 0
	return n
}

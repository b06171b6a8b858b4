// Package serial opens the link a touchscreen controller reports over.
package serial

import (
	"io"
	"time"
)

// Port is an open serial link. Native builds use github.com/tarm/serial;
// tests and replays substitute any io.ReadWriteCloser via Wrap.
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate. USB CDC ignores it.
	Baud int

	// ReadTimeout bounds a Read; zero blocks.
	ReadTimeout time.Duration
}

// DefaultConfig returns the settings the firmware's USB CDC port expects.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}

type nopFlusher struct {
	io.ReadWriteCloser
}

func (nopFlusher) Flush() error { return nil }

// Wrap turns rwc into a Port whose Flush does nothing.
func Wrap(rwc io.ReadWriteCloser) Port {
	return nopFlusher{rwc}
}

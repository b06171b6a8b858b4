package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// ConfigureInputPullDown configures a pin as a digital input with pull-down resistor
	ConfigureInputPullDown(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads the current pin state
	GetPin(pin GPIOPin) (bool, error)
}

// EdgeIRQ is an edge-triggered interrupt line, such as a touch panel's
// pen-down output.
type EdgeIRQ interface {
	// SetHandler installs the function run from interrupt context on each
	// active edge.
	SetHandler(handler func())

	// Enable unmasks the edge interrupt.
	Enable() error

	// Disable masks the edge interrupt. The line level can still be read.
	Disable() error

	// SetWake marks the line as a wake source across suspend.
	SetWake(enabled bool) error

	// Asserted reads the line level; true while the pen is down.
	Asserted() bool
}

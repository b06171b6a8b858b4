// Package ts implements the resistive touchscreen acquisition core: raw
// sample debouncing, pressure estimation, the pen-down/poll state machine
// and its suspend/resume handling.
package ts

import "errors"

var (
	// ErrBusTimeout is returned by a Transport when the hardware did not
	// become ready before the bus deadline.
	ErrBusTimeout = errors.New("ts: bus timeout")

	// ErrJitter is returned by a Debouncer when readings did not settle.
	ErrJitter = errors.New("ts: samples did not converge")

	// ErrInvalid is returned by Estimate for saturated or inconsistent
	// readings.
	ErrInvalid = errors.New("ts: invalid reading")

	// ErrNotAttached is returned when a Device is used after Close.
	ErrNotAttached = errors.New("ts: device not attached")
)

// Channel names an analog input of the panel.
type Channel uint8

const (
	X Channel = iota
	Y
	Z1
	Z2
	// Aux is a non-touch input sharing the converter, typically battery
	// voltage. A touch round never samples it.
	Aux
)

// RoundOrder is the order in which one round samples the panel. The pressure
// formula assumes the four readings were taken close together.
var RoundOrder = [4]Channel{X, Y, Z1, Z2}

func (c Channel) String() string {
	switch c {
	case X:
		return "x"
	case Y:
		return "y"
	case Z1:
		return "z1"
	case Z2:
		return "z2"
	case Aux:
		return "aux"
	default:
		return "invalid"
	}
}

// RawSample is one converter reading.
type RawSample struct {
	Channel Channel
	Value   uint16 // 12-bit range
	Ordinal uint32 // per-transport sequence number
}

// TouchEvent is the stabilized report handed to the event sink. Build it
// with Press or Release.
type TouchEvent struct {
	X        uint16
	Y        uint16
	Pressure uint16
	Down     bool
}

// Press returns a pen-down event.
func Press(x, y, pressure uint16) TouchEvent {
	return TouchEvent{X: x, Y: y, Pressure: pressure, Down: true}
}

// Release returns the pen-up event. Coordinates and pressure are zero.
func Release() TouchEvent {
	return TouchEvent{}
}

// Valid reports whether the event obeys the release convention: a pen-up
// event carries no coordinates or pressure.
func (e TouchEvent) Valid() bool {
	if e.Down {
		return true
	}
	return e.X == 0 && e.Y == 0 && e.Pressure == 0
}

// Position is the estimator output.
type Position struct {
	X        uint16
	Y        uint16
	Pressure uint16
}

// Phase is the acquisition state machine phase.
type Phase uint32

const (
	WaitForTouch Phase = iota
	Sampling
)

func (p Phase) String() string {
	if p == Sampling {
		return "sampling"
	}
	return "wait-for-touch"
}

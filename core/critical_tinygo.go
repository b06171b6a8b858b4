//go:build tinygo

package core

import "runtime/interrupt"

type irqState = interrupt.State

// maskInterrupts keeps a pen IRQ from observing a half-linked timer list or
// a half-written trace slot.
func maskInterrupts() irqState {
	return interrupt.Disable()
}

func unmaskInterrupts(s irqState) {
	interrupt.Restore(s)
}

//go:build !tinygo

package core

// irqState stands in for the saved interrupt mask on host builds.
type irqState struct{}

// Host builds run the pen handler and the scheduler from one goroutine, the
// way the firmware main loop does, so there is nothing to mask.
func maskInterrupts() irqState { return irqState{} }

func unmaskInterrupts(irqState) {}

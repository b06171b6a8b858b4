package core

// Critical runs fn with interrupts masked. fn must not block.
func Critical(fn func()) {
	state := maskInterrupts()
	defer unmaskInterrupts(state)
	fn()
}

package ts

import (
	"sync/atomic"

	"pentouch/core"
)

// irqGuard owns the "edge interrupt masked" state of a Sampling phase.
// acquire masks the line; release unmasks it, at most once per acquire, no
// matter how many exit paths call it.
type irqGuard struct {
	line core.EdgeIRQ
	held uint32
}

// acquire masks the line and reports whether this call took ownership.
// Safe from interrupt context.
func (g *irqGuard) acquire() bool {
	if !atomic.CompareAndSwapUint32(&g.held, 0, 1) {
		return false
	}
	g.line.Disable()
	return true
}

// release unmasks the line if the guard is held.
func (g *irqGuard) release() error {
	if !atomic.CompareAndSwapUint32(&g.held, 1, 0) {
		return nil
	}
	return g.line.Enable()
}

// forget drops ownership without touching the line. Suspend and detach
// decide the line state themselves.
func (g *irqGuard) forget() {
	atomic.StoreUint32(&g.held, 0)
}

func (g *irqGuard) isHeld() bool {
	return atomic.LoadUint32(&g.held) != 0
}

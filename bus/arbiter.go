package bus

import (
	"sync"
	"sync/atomic"
)

// Arbiter serializes the users of one converter. A touch round holds it
// for the whole X, Y, Z1, Z2 sequence so another user cannot interleave a
// conversion between the readings the pressure formula combines.
type Arbiter struct {
	mu        sync.Mutex
	acquired  uint32
	contended uint32
}

// Lock takes the bus, counting the acquisitions that had to wait.
func (a *Arbiter) Lock() {
	if !a.mu.TryLock() {
		atomic.AddUint32(&a.contended, 1)
		a.mu.Lock()
	}
	atomic.AddUint32(&a.acquired, 1)
}

// Unlock releases the bus.
func (a *Arbiter) Unlock() {
	a.mu.Unlock()
}

// Acquired returns how many times the bus has been taken.
func (a *Arbiter) Acquired() uint32 {
	return atomic.LoadUint32(&a.acquired)
}

// Contended returns how many acquisitions found the bus busy.
func (a *Arbiter) Contended() uint32 {
	return atomic.LoadUint32(&a.contended)
}

var _ sync.Locker = (*Arbiter)(nil)

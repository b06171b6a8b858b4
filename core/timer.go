package core

import "sync/atomic"

// Timer frequency of the tick counter. The rp2040 timer peripheral counts
// microseconds, and host builds follow the same convention.
const (
	TimerFreq = 1000000
)

var (
	systemTicks uint32
	bootTime    uint32
)

// Clock is a source of timer ticks.
type Clock interface {
	Now() uint32
}

// SystemClock reads the global tick counter maintained by the target.
type SystemClock struct{}

// Now returns GetTime().
func (SystemClock) Now() uint32 {
	return GetTime()
}

// GetTime returns the current system time in timer ticks. The pen IRQ
// reads it while the main loop writes it.
func GetTime() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// SetTime sets the current system time. Targets call it from the main loop
// with the hardware counter; tests drive it directly.
func SetTime(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}

// GetUptime returns ticks elapsed since TimerInit.
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / TimerFreq)
}

// TimerInit records the boot time used by GetUptime.
func TimerInit() {
	bootTime = GetTime()
}

// TimeReached reports whether now is at or after deadline, tolerating
// counter wraparound.
func TimeReached(now, deadline uint32) bool {
	return int32(now-deadline) >= 0
}

// Deadline is a wall-clock bound on a busy-wait.
type Deadline struct {
	clock Clock
	at    uint32
}

// NewDeadline returns a deadline timeoutUS microseconds from now.
func NewDeadline(clock Clock, timeoutUS uint32) Deadline {
	return Deadline{clock: clock, at: clock.Now() + TimerFromUS(timeoutUS)}
}

// Expired reports whether the deadline has passed.
func (d Deadline) Expired() bool {
	return TimeReached(d.clock.Now(), d.at)
}

//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"

	"pentouch/core"
)

// RP2040/RP2350 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// hardwareClock reads the 1MHz timer directly. Bus deadlines use it so a
// busy-wait never depends on the main loop refreshing the cached time.
type hardwareClock struct{}

func (hardwareClock) Now() uint32 {
	return timerRAWL.Get()
}

// UpdateSystemTime copies the hardware timer into the core tick counter.
func UpdateSystemTime() {
	core.SetTime(timerRAWL.Get())
}

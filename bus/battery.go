package bus

import (
	"sync"

	"tinygo.org/x/drivers"

	"pentouch/ts"
)

// BatteryMonitor reads the converter's auxiliary input, usually a divided
// down battery voltage, between touch rounds.
type BatteryMonitor struct {
	transport ts.Transport
	lock      sync.Locker
	refMV     uint32
	divider   uint32

	mu      sync.Mutex
	mv      uint32
	raw     uint16
	updates uint32
}

// NewBatteryMonitor returns a monitor sampling ts.Aux on transport while
// holding lock. refMV is the converter full scale and divider the ratio of
// the external divider (1 for none).
func NewBatteryMonitor(transport ts.Transport, lock sync.Locker, refMV, divider uint32) *BatteryMonitor {
	if lock == nil {
		lock = &sync.Mutex{}
	}
	if divider == 0 {
		divider = 1
	}
	return &BatteryMonitor{transport: transport, lock: lock, refMV: refMV, divider: divider}
}

// Update implements drivers.Sensor. Only drivers.Voltage does any IO.
func (b *BatteryMonitor) Update(which drivers.Measurement) error {
	if which&drivers.Voltage == 0 {
		return nil
	}

	b.lock.Lock()
	s, err := b.transport.Sample(ts.Aux)
	b.lock.Unlock()
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.raw = s.Value
	b.mv = uint32(s.Value) * b.refMV * b.divider / 4096
	b.updates++
	b.mu.Unlock()
	return nil
}

// Millivolts returns the voltage from the last Update.
func (b *BatteryMonitor) Millivolts() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mv
}

// Voltage returns the last reading in microvolts, the unit the drivers
// repository uses.
func (b *BatteryMonitor) Voltage() int32 {
	return int32(b.Millivolts() * 1000)
}

// Raw returns the last 12-bit conversion.
func (b *BatteryMonitor) Raw() uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw
}

var _ drivers.Sensor = (*BatteryMonitor)(nil)

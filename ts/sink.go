package ts

import (
	"sync"

	"tinygo.org/x/drivers/touch"
)

// EventSink consumes touch events, for example an input subsystem or a
// report stream to a host.
type EventSink interface {
	ReportTouch(ev TouchEvent)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ev TouchEvent)

// ReportTouch calls f(ev).
func (f SinkFunc) ReportTouch(ev TouchEvent) {
	f(ev)
}

// EventLog records every event it receives.
type EventLog struct {
	mu     sync.Mutex
	events []TouchEvent
}

// ReportTouch appends ev.
func (l *EventLog) ReportTouch(ev TouchEvent) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (l *EventLog) Events() []TouchEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TouchEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Reset drops the recorded events.
func (l *EventLog) Reset() {
	l.mu.Lock()
	l.events = l.events[:0]
	l.mu.Unlock()
}

// ReadTouchPoint implements touch.Pointer with the last reported event.
// Z is the pressure and is zero while the pen is up.
func (d *Device) ReadTouchPoint() touch.Point {
	d.mu.Lock()
	last := d.last
	d.mu.Unlock()
	return touch.Point{X: int(last.X), Y: int(last.Y), Z: int(last.Pressure)}
}

var _ touch.Pointer = (*Device)(nil)

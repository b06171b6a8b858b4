package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures an acquisition event for post-mortem analysis
type TraceEvent struct {
	EventType uint8  // Event type code
	Unit      uint8  // Touchscreen instance
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtPenDown  = 1 // Edge interrupt accepted, sampling started
	EvtRound    = 2 // Round completed (v1=x, v2=y)
	EvtRelease  = 3 // Left sampling (v1=reason)
	EvtTimeout  = 4 // Bus timeout during a round (v1=channel)
	EvtJitter   = 5 // Debounce did not converge (v1=channel)
	EvtInvalid  = 6 // Estimator rejected a round
	EvtSuspend  = 7
	EvtResume   = 8
	EvtSpurious = 9 // Edge interrupt while not armed
)

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8
	traceEnabled  bool = true
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// SetTraceEnabled enables or disables trace capture.
func SetTraceEnabled(enabled bool) {
	traceEnabled = enabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordTrace captures an event in the ring buffer. Safe from interrupt
// context.
func RecordTrace(eventType, unit uint8, clock, value1, value2 uint32) {
	if !traceEnabled {
		return
	}
	state := maskInterrupts()
	idx := traceRingHead
	traceRing[idx] = TraceEvent{
		EventType: eventType,
		Unit:      unit,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	traceRingHead = (idx + 1) % TraceRingSize
	unmaskInterrupts(state)
}

// TraceSnapshot returns the recorded events, oldest first.
func TraceSnapshot() []TraceEvent {
	state := maskInterrupts()
	defer unmaskInterrupts(state)

	out := make([]TraceEvent, 0, TraceRingSize)
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := traceRing[(start+i)%TraceRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// TraceName returns the printable name of an event type.
func TraceName(eventType uint8) string {
	switch eventType {
	case EvtPenDown:
		return "PEN_DOWN"
	case EvtRound:
		return "ROUND"
	case EvtRelease:
		return "RELEASE"
	case EvtTimeout:
		return "BUS_TIMEOUT"
	case EvtJitter:
		return "JITTER"
	case EvtInvalid:
		return "INVALID"
	case EvtSuspend:
		return "SUSPEND"
	case EvtResume:
		return "RESUME"
	case EvtSpurious:
		return "SPURIOUS_IRQ"
	default:
		return "UNKNOWN"
	}
}

// DumpTrace outputs the trace ring (call on shutdown/error)
func DumpTrace() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TRACE] === Trace Ring Dump ===")
	for _, evt := range TraceSnapshot() {
		debugPrintln("[TRACE] " + TraceName(evt.EventType) +
			" unit=" + Itoa(int(evt.Unit)) +
			" clock=" + Utoa(evt.Clock) +
			" v1=" + Utoa(evt.Value1) +
			" v2=" + Utoa(evt.Value2))
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// ClearTrace clears the trace buffer
func ClearTrace() {
	state := maskInterrupts()
	defer unmaskInterrupts(state)
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
}

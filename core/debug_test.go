package core

import (
	"strings"
	"testing"
)

func TestTraceRing(t *testing.T) {
	ClearTrace()
	SetTraceEnabled(true)
	for i := 0; i < TraceRingSize+5; i++ {
		RecordTrace(EvtRound, 1, uint32(i), uint32(i), 0)
	}
	snap := TraceSnapshot()
	if len(snap) != TraceRingSize {
		t.Fatalf("snapshot holds %d events, want %d", len(snap), TraceRingSize)
	}
	if snap[0].Clock != 5 || snap[len(snap)-1].Clock != TraceRingSize+4 {
		t.Errorf("snapshot spans %d..%d, want oldest first", snap[0].Clock, snap[len(snap)-1].Clock)
	}

	ClearTrace()
	SetTraceEnabled(false)
	RecordTrace(EvtPenDown, 0, 1, 0, 0)
	SetTraceEnabled(true)
	if len(TraceSnapshot()) != 0 {
		t.Errorf("event recorded while tracing was disabled")
	}
}

func TestDumpTrace(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	ClearTrace()
	RecordTrace(EvtTimeout, 2, 77, 1, 0)
	DumpTrace()

	found := false
	for _, l := range lines {
		if strings.Contains(l, "BUS_TIMEOUT unit=2 clock=77 v1=1") {
			found = true
		}
	}
	if !found {
		t.Errorf("dump missing timeout event: %q", lines)
	}
}

func TestDebugPrintlnGated(t *testing.T) {
	var got []string
	SetDebugWriter(func(s string) { got = append(got, s) })
	defer SetDebugWriter(func(string) {})

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")
	SetDebugEnabled(false)

	if len(got) != 1 || got[0] != "shown" {
		t.Errorf("debug output = %q", got)
	}
}

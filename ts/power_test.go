package ts

import (
	"errors"
	"testing"
)

func TestSuspendDuringSampling(t *testing.T) {
	tr := newFakeTransport(1000, 1500, 200, 400)
	h := newHarness(t, nil, tr)

	h.line.press()
	h.step()
	reported := h.log.Len()

	if err := h.dev.Suspend(); err != nil {
		t.Fatalf("Suspend failed: %v", err)
	}
	if h.log.Len() != reported {
		t.Errorf("suspend reported %+v", h.lastEvent())
	}
	if h.dev.Phase() != WaitForTouch {
		t.Errorf("phase = %v after suspend", h.dev.Phase())
	}
	if h.line.enabled {
		t.Errorf("pen line armed across suspend without wake-on-touch")
	}
	if h.sched.Len() != 0 {
		t.Errorf("poll still queued after suspend")
	}
	if tr.lastPower() {
		t.Errorf("transport still powered")
	}

	// Nothing may reach the sink until resume.
	h.line.press()
	h.dev.PenIRQ()
	for i := 0; i < 5; i++ {
		h.step()
	}
	if h.log.Len() != reported {
		t.Errorf("events reported while suspended")
	}
	if s := h.dev.Stats(); s.Releases != 0 {
		t.Errorf("suspend went through the release path %d times", s.Releases)
	}

	if err := h.dev.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if len(tr.configs) != 2 || tr.configs[1] != h.dev.cfg.Bus {
		t.Errorf("bus not reprogrammed on resume: %+v", tr.configs)
	}
	if !tr.lastPower() {
		t.Errorf("transport not powered on resume")
	}
	h.checkIdle()
	if h.log.Len() != reported {
		t.Errorf("resume reported an event")
	}

	h.line.lift()
	h.line.press()
	h.step()
	if h.log.Len() != reported+1 || !h.lastEvent().Down {
		t.Errorf("no press after resume")
	}
}

func TestSuspendBeforeFirstRound(t *testing.T) {
	h := newHarness(t, nil, newFakeTransport(1000, 1500, 200, 400))

	h.line.press()
	if err := h.dev.Suspend(); err != nil {
		t.Fatalf("Suspend failed: %v", err)
	}
	if ran := h.step(); ran != 0 {
		t.Errorf("%d handlers ran after suspend cancelled the poll", ran)
	}
	if h.log.Len() != 0 {
		t.Errorf("events reported: %+v", h.log.Events())
	}
}

func TestSuspendWakeOnTouch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WakeOnTouch = true
	h := newHarness(t, cfg, newFakeTransport(1000, 1500, 200, 400))

	h.line.press()
	h.step()
	if err := h.dev.Suspend(); err != nil {
		t.Fatalf("Suspend failed: %v", err)
	}
	if !h.line.wake || !h.line.enabled {
		t.Errorf("wake source not armed: wake=%v enabled=%v", h.line.wake, h.line.enabled)
	}

	reported := h.log.Len()
	h.line.lift()
	h.line.press()
	h.step()
	if h.log.Len() != reported || h.sched.Len() != 0 {
		t.Errorf("wake edge started sampling while suspended")
	}
	if s := h.dev.Stats(); s.Spurious != 1 {
		t.Errorf("spurious = %d, want 1", s.Spurious)
	}

	if err := h.dev.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if h.line.wake {
		t.Errorf("wake source left armed after resume")
	}
	h.checkIdle()
}

func TestSuspendResumeIdempotent(t *testing.T) {
	tr := newFakeTransport(1000, 1500, 200, 400)
	h := newHarness(t, nil, tr)

	if err := h.dev.Resume(); err != nil {
		t.Errorf("Resume while running = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := h.dev.Suspend(); err != nil {
			t.Fatalf("Suspend #%d failed: %v", i+1, err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := h.dev.Resume(); err != nil {
			t.Fatalf("Resume #%d failed: %v", i+1, err)
		}
	}
	if len(tr.configs) != 2 {
		t.Errorf("transport configured %d times, want attach + one resume", len(tr.configs))
	}
	if want := []bool{true, false, true}; len(tr.power) != len(want) {
		t.Errorf("power sequence = %v, want %v", tr.power, want)
	}
	h.checkIdle()
}

func TestResumeArmsDespiteConfigureError(t *testing.T) {
	tr := newFakeTransport(1000, 1500, 200, 400)
	h := newHarness(t, nil, tr)

	if err := h.dev.Suspend(); err != nil {
		t.Fatalf("Suspend failed: %v", err)
	}
	lost := errors.New("ssp clock lost")
	tr.configErr = lost
	if err := h.dev.Resume(); !errors.Is(err, lost) {
		t.Errorf("Resume = %v, want the configure error", err)
	}
	if h.dev.Suspended() {
		t.Errorf("device still suspended")
	}
	h.checkIdle()
}

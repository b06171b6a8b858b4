package ts

import (
	"testing"

	"pentouch/core"
)

// fakeTransport returns fixed readings per channel. seq queues override the
// fixed reading one sample at a time, and hook can rewrite or fail any
// sample.
type fakeTransport struct {
	reading [5]uint16
	seq     map[Channel][]uint16
	hook    func(ch Channel, v uint16) (uint16, error)

	ordinal uint32
	samples int
	configs []BusConfig
	power   []bool

	configErr error
	powerErr  error

	locked      func() bool
	outsideLock int
}

func newFakeTransport(x, y, z1, z2 uint16) *fakeTransport {
	return &fakeTransport{
		reading: [5]uint16{x, y, z1, z2, 0},
		seq:     map[Channel][]uint16{},
	}
}

func (f *fakeTransport) Configure(cfg BusConfig) error {
	f.configs = append(f.configs, cfg)
	return f.configErr
}

func (f *fakeTransport) Power(on bool) error {
	f.power = append(f.power, on)
	return f.powerErr
}

func (f *fakeTransport) Sample(ch Channel) (RawSample, error) {
	f.samples++
	if f.locked != nil && !f.locked() {
		f.outsideLock++
	}
	v := f.reading[ch]
	if q := f.seq[ch]; len(q) > 0 {
		v = q[0]
		f.seq[ch] = q[1:]
	}
	if f.hook != nil {
		var err error
		if v, err = f.hook(ch, v); err != nil {
			return RawSample{}, err
		}
	}
	f.ordinal++
	return RawSample{Channel: ch, Value: v, Ordinal: f.ordinal}, nil
}

func (f *fakeTransport) lastPower() bool {
	if len(f.power) == 0 {
		return false
	}
	return f.power[len(f.power)-1]
}

// fakeLine models the pen-down interrupt pin.
type fakeLine struct {
	handler  func()
	enabled  bool
	wake     bool
	asserted bool
	enables  int
	disables int

	enableErr error
}

func (l *fakeLine) SetHandler(h func()) { l.handler = h }

func (l *fakeLine) Enable() error {
	l.enables++
	l.enabled = true
	return l.enableErr
}

func (l *fakeLine) Disable() error {
	l.disables++
	l.enabled = false
	return nil
}

func (l *fakeLine) SetWake(on bool) error {
	l.wake = on
	return nil
}

func (l *fakeLine) Asserted() bool { return l.asserted }

// press puts the pen down. The edge only reaches the handler while the line
// is unmasked, as on hardware.
func (l *fakeLine) press() {
	l.asserted = true
	if l.enabled && l.handler != nil {
		l.handler()
	}
}

func (l *fakeLine) lift() {
	l.asserted = false
}

type manualClock struct {
	now uint32
}

func (c *manualClock) Now() uint32 { return c.now }

func (c *manualClock) advance(us uint32) {
	c.now += core.TimerFromUS(us)
}

type harness struct {
	t     *testing.T
	dev   *Device
	tr    *fakeTransport
	line  *fakeLine
	log   *EventLog
	sched *core.Scheduler
	clock *manualClock
}

func newHarness(t *testing.T, cfg *Config, tr *fakeTransport, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		tr:    tr,
		line:  &fakeLine{},
		log:   &EventLog{},
		sched: core.NewScheduler(),
		clock: &manualClock{now: 1000},
	}
	opts = append([]Option{WithClock(h.clock)}, opts...)
	dev, err := NewDevice(cfg, tr, h.line, h.log, h.sched, opts...)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	h.dev = dev
	return h
}

// step advances one sample period and runs whatever is due.
func (h *harness) step() int {
	h.clock.advance(h.dev.cfg.SamplePeriodUS)
	return h.sched.Dispatch(h.clock.Now())
}

// runUntilIdle steps until the device leaves Sampling or limit rounds ran.
func (h *harness) runUntilIdle(limit int) int {
	rounds := 0
	for rounds < limit && h.dev.Phase() == Sampling {
		h.step()
		rounds++
	}
	return rounds
}

// checkIdle asserts the device is back in WaitForTouch with the pen line
// unmasked and nothing queued.
func (h *harness) checkIdle() {
	h.t.Helper()
	if p := h.dev.Phase(); p != WaitForTouch {
		h.t.Errorf("phase = %v, want %v", p, WaitForTouch)
	}
	if !h.line.enabled {
		h.t.Errorf("pen interrupt left masked")
	}
	if !h.dev.Armed() {
		h.t.Errorf("device not armed")
	}
	if n := h.sched.Len(); n != 0 {
		h.t.Errorf("%d timers still queued", n)
	}
}

func (h *harness) checkEvents() {
	h.t.Helper()
	for i, ev := range h.log.Events() {
		if !ev.Valid() {
			h.t.Errorf("event %d %+v breaks the release convention", i, ev)
		}
	}
}

func (h *harness) lastEvent() TouchEvent {
	events := h.log.Events()
	if len(events) == 0 {
		h.t.Fatalf("no events reported")
	}
	return events[len(events)-1]
}

package ts

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"pentouch/core"
)

// Release reasons recorded in the trace ring.
const (
	ReasonPenUp    = 1
	ReasonInvalid  = 2
	ReasonFailures = 3
	ReasonAborted  = 4
)

// Stats counts what the state machine has done since attach.
type Stats struct {
	PenDowns       uint32
	Spurious       uint32
	Rounds         uint32
	Events         uint32
	Releases       uint32
	Timeouts       uint32
	Jitter         uint32
	Invalid        uint32
	BusErrors      uint32
	ForcedReleases uint32
	Suppressed     uint32
	Dropped        uint32
	IRQErrors      uint32
}

// Option configures a Device at attach time.
type Option func(*Device)

// WithBusLock serializes rounds with other users of a shared bus. The lock
// is held for exactly one X, Y, Z1, Z2 round.
func WithBusLock(l sync.Locker) Option {
	return func(d *Device) {
		d.busLock = l
	}
}

// WithClock replaces the system tick clock.
func WithClock(c core.Clock) Option {
	return func(d *Device) {
		d.clock = c
	}
}

// WithUnit sets the instance number used in trace records.
func WithUnit(unit uint8) Option {
	return func(d *Device) {
		d.unit = unit
	}
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// Device is one attached touchscreen: the pen-down handler and poll timer
// pair driving a Transport through rounds of X, Y, Z1, Z2.
//
// PenIRQ may run in interrupt context. Everything else runs in task context,
// the same context that dispatches sched.
type Device struct {
	cfg       Config
	transport Transport
	line      core.EdgeIRQ
	sink      EventSink
	sched     *core.Scheduler
	clock     core.Clock
	busLock   sync.Locker
	unit      uint8

	// Touched from interrupt context.
	phase     uint32
	suspended uint32
	attached  uint32
	penDowns  uint32
	spurious  uint32
	guard     irqGuard

	mu        sync.Mutex
	poll      core.Timer
	debouncer *Debouncer
	pending   [len(RoundOrder)]uint16
	npending  int
	failures  uint8
	last      TouchEvent
	stats     Stats
}

// NewDevice attaches a touchscreen. The transport is configured and powered
// and the pen line armed before it returns. A nil cfg uses DefaultConfig.
//
// Sinks are called with the device lock held and must not call back into
// the Device.
func NewDevice(cfg *Config, transport Transport, line core.EdgeIRQ, sink EventSink, sched *core.Scheduler, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, errors.New("ts: attach: no transport")
	}
	if line == nil {
		return nil, errors.New("ts: attach: no pen interrupt line")
	}
	if sink == nil {
		return nil, errors.New("ts: attach: no event sink")
	}
	if sched == nil {
		return nil, errors.New("ts: attach: no scheduler")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Device{
		cfg:       *cfg,
		transport: transport,
		line:      line,
		sink:      sink,
		sched:     sched,
		clock:     core.SystemClock{},
		busLock:   nopLocker{},
		debouncer: NewDebouncer(cfg.Debounce),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.guard.line = line
	d.poll.Handler = d.pollHandler

	if err := transport.Configure(d.cfg.Bus); err != nil {
		return nil, fmt.Errorf("ts: attach: configure transport: %w", err)
	}
	if err := transport.Power(true); err != nil {
		return nil, fmt.Errorf("ts: attach: power transport: %w", err)
	}

	line.SetHandler(d.PenIRQ)
	atomic.StoreUint32(&d.attached, 1)
	if err := line.Enable(); err != nil {
		atomic.StoreUint32(&d.attached, 0)
		transport.Power(false)
		return nil, fmt.Errorf("ts: attach: enable pen interrupt: %w", err)
	}
	core.DebugPrintln("ts" + core.Itoa(int(d.unit)) + ": attached")
	return d, nil
}

// Config returns the tuning the device runs with.
func (d *Device) Config() Config {
	return d.cfg
}

// Phase returns the current state machine phase.
func (d *Device) Phase() Phase {
	return Phase(atomic.LoadUint32(&d.phase))
}

// Armed reports whether a pen-down edge would start sampling.
func (d *Device) Armed() bool {
	return atomic.LoadUint32(&d.attached) != 0 &&
		atomic.LoadUint32(&d.suspended) == 0 &&
		!d.guard.isHeld()
}

// Suspended reports whether the device is between Suspend and Resume.
func (d *Device) Suspended() bool {
	return atomic.LoadUint32(&d.suspended) != 0
}

// Stats returns a snapshot of the counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	s := d.stats
	d.mu.Unlock()
	s.PenDowns = atomic.LoadUint32(&d.penDowns)
	s.Spurious = atomic.LoadUint32(&d.spurious)
	return s
}

// PenIRQ handles a pen-down edge. It masks the line, enters Sampling and
// queues the first round on the scheduler; the round itself runs from
// task context. Sample state belongs to the round and is not touched here.
func (d *Device) PenIRQ() {
	now := d.clock.Now()
	if atomic.LoadUint32(&d.attached) == 0 || atomic.LoadUint32(&d.suspended) != 0 {
		atomic.AddUint32(&d.spurious, 1)
		core.RecordTrace(core.EvtSpurious, d.unit, now, 0, 0)
		return
	}
	if !d.guard.acquire() {
		// Edge raced with the mask; a round is already queued.
		atomic.AddUint32(&d.spurious, 1)
		core.RecordTrace(core.EvtSpurious, d.unit, now, 1, 0)
		return
	}
	atomic.StoreUint32(&d.phase, uint32(Sampling))
	atomic.AddUint32(&d.penDowns, 1)
	d.poll.WakeTime = now
	d.sched.Schedule(&d.poll)
	core.RecordTrace(core.EvtPenDown, d.unit, now, 0, 0)
}

func (d *Device) pollHandler(t *core.Timer) uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if atomic.LoadUint32(&d.suspended) != 0 || d.Phase() != Sampling {
		return core.SF_DONE
	}
	if !d.sampleRound() {
		return core.SF_DONE
	}
	t.WakeTime = d.clock.Now() + core.TimerFromUS(d.cfg.SamplePeriodUS)
	return core.SF_RESCHEDULE
}

// sampleRound runs one round and reports whether to keep sampling. Every
// way out of Sampling, a panicking transport included, goes through the
// deferred leaveSampling.
func (d *Device) sampleRound() (stay bool) {
	reason := uint32(ReasonAborted)
	defer func() {
		if !stay {
			d.leaveSampling(reason)
		}
	}()

	d.stats.Rounds++
	if d.cfg.LevelSense && !d.line.Asserted() {
		reason = ReasonPenUp
		return false
	}

	if ch, err := d.readRound(); err != nil {
		now := d.clock.Now()
		switch {
		case errors.Is(err, ErrBusTimeout):
			d.stats.Timeouts++
			core.RecordTrace(core.EvtTimeout, d.unit, now, uint32(ch), 0)
		case errors.Is(err, ErrJitter):
			d.stats.Jitter++
			core.RecordTrace(core.EvtJitter, d.unit, now, uint32(ch), 0)
		default:
			d.stats.BusErrors++
			core.DebugPrintln("ts" + core.Itoa(int(d.unit)) + ": round failed: " + err.Error())
		}
		d.failures++
		if d.failures >= d.cfg.MaxFailedRounds {
			d.stats.ForcedReleases++
			reason = ReasonFailures
			return false
		}
		return true
	}

	pos, err := Estimate(d.pending[0], d.pending[1], d.pending[2], d.pending[3], d.cfg.Estimator)
	if err != nil {
		d.stats.Invalid++
		core.RecordTrace(core.EvtInvalid, d.unit, d.clock.Now(), uint32(d.pending[0]), uint32(d.pending[2]))
		reason = ReasonInvalid
		return false
	}
	if !pos.PenDown(d.cfg.Estimator) {
		reason = ReasonPenUp
		return false
	}

	d.failures = 0
	x, y := d.cfg.Calibration.Apply(pos.X, pos.Y)
	ev := Press(x, y, pos.Pressure)
	core.RecordTrace(core.EvtRound, d.unit, d.clock.Now(), uint32(x), uint32(y))
	if d.last.Down && d.withinFuzz(ev) {
		d.stats.Suppressed++
		return true
	}
	d.emit(ev)
	return true
}

// readRound debounces the four channels in RoundOrder under the bus lock.
// On failure it returns the channel that failed.
func (d *Device) readRound() (Channel, error) {
	d.busLock.Lock()
	defer d.busLock.Unlock()

	// Each round starts from no pending samples.
	d.npending = 0
	for _, ch := range RoundOrder {
		ch := ch
		v, err := d.debouncer.Debounce(ch, func() (RawSample, error) {
			return d.transport.Sample(ch)
		})
		if err != nil {
			d.npending = 0
			return ch, err
		}
		d.pending[d.npending] = v
		d.npending++
	}
	return 0, nil
}

// leaveSampling is the only transition from Sampling back to WaitForTouch
// on the task side: report the release, reset, then unmask the pen line.
func (d *Device) leaveSampling(reason uint32) {
	d.resetState()
	d.emit(Release())
	d.stats.Releases++
	atomic.StoreUint32(&d.phase, uint32(WaitForTouch))
	if err := d.guard.release(); err != nil {
		d.stats.IRQErrors++
		core.DebugPrintln("ts" + core.Itoa(int(d.unit)) + ": re-enable pen interrupt: " + err.Error())
	}
	core.RecordTrace(core.EvtRelease, d.unit, d.clock.Now(), reason, 0)
}

func (d *Device) resetState() {
	d.npending = 0
	d.failures = 0
	d.pending = [len(RoundOrder)]uint16{}
}

func (d *Device) emit(ev TouchEvent) {
	if atomic.LoadUint32(&d.suspended) != 0 {
		d.stats.Dropped++
		return
	}
	if !ev.Valid() {
		ev = Release()
	}
	d.last = ev
	d.stats.Events++
	d.sink.ReportTouch(ev)
}

func (d *Device) withinFuzz(ev TouchEvent) bool {
	if d.cfg.Fuzz == 0 && d.cfg.PressureFuzz == 0 {
		return false
	}
	return absDiff(ev.X, d.last.X) <= d.cfg.Fuzz &&
		absDiff(ev.Y, d.last.Y) <= d.cfg.Fuzz &&
		absDiff(ev.Pressure, d.last.Pressure) <= d.cfg.PressureFuzz
}

func absDiff(a, b uint16) uint16 {
	if a > b {
		return a - b
	}
	return b - a
}

// Close detaches the device: the poll is cancelled, the pen line masked and
// the transport powered off. A pen that was down is reported released.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !atomic.CompareAndSwapUint32(&d.attached, 1, 0) {
		return ErrNotAttached
	}
	core.Critical(func() {
		d.sched.Cancel(&d.poll)
		d.guard.forget()
		atomic.StoreUint32(&d.phase, uint32(WaitForTouch))
	})
	if d.last.Down {
		d.emit(Release())
	}
	d.resetState()
	d.line.SetHandler(func() {})
	return errors.Join(d.line.Disable(), d.transport.Power(false))
}

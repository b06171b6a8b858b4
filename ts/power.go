package ts

import (
	"errors"
	"fmt"
	"sync/atomic"

	"pentouch/core"
)

// Suspend quiesces the device for a system sleep. Any Sampling phase is
// abandoned without a release event; nothing reaches the sink until Resume.
// With WakeOnTouch the pen line stays armed as a wake source. Calling Suspend
// twice is a no-op.
func (d *Device) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if atomic.LoadUint32(&d.attached) == 0 {
		return ErrNotAttached
	}
	if atomic.LoadUint32(&d.suspended) != 0 {
		return nil
	}

	wasSampling := false
	core.Critical(func() {
		atomic.StoreUint32(&d.suspended, 1)
		d.sched.Cancel(&d.poll)
		wasSampling = d.Phase() == Sampling
		d.guard.forget()
		atomic.StoreUint32(&d.phase, uint32(WaitForTouch))
	})
	d.resetState()
	d.last = Release()

	var errs []error
	if d.cfg.WakeOnTouch {
		if err := d.line.SetWake(true); err != nil {
			errs = append(errs, fmt.Errorf("ts: suspend: set wake: %w", err))
		}
		if wasSampling {
			// The guard masked the line; a wake source must be live.
			if err := d.line.Enable(); err != nil {
				errs = append(errs, fmt.Errorf("ts: suspend: arm wake: %w", err))
			}
		}
	} else if err := d.line.Disable(); err != nil {
		errs = append(errs, fmt.Errorf("ts: suspend: disable pen interrupt: %w", err))
	}
	if err := d.transport.Power(false); err != nil {
		errs = append(errs, fmt.Errorf("ts: suspend: power off: %w", err))
	}

	var sampling uint32
	if wasSampling {
		sampling = 1
	}
	core.RecordTrace(core.EvtSuspend, d.unit, d.clock.Now(), sampling, 0)
	return errors.Join(errs...)
}

// Resume reprograms the transport, whose clock and mode settings do not
// survive a sleep, and re-arms the pen line. Reconfiguration errors are
// returned, but the line is re-armed regardless.
func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if atomic.LoadUint32(&d.attached) == 0 {
		return ErrNotAttached
	}
	if atomic.LoadUint32(&d.suspended) == 0 {
		return nil
	}

	var errs []error
	if err := d.transport.Configure(d.cfg.Bus); err != nil {
		errs = append(errs, fmt.Errorf("ts: resume: configure transport: %w", err))
	}
	if err := d.transport.Power(true); err != nil {
		errs = append(errs, fmt.Errorf("ts: resume: power on: %w", err))
	}
	d.resetState()
	d.last = Release()
	if d.cfg.WakeOnTouch {
		if err := d.line.SetWake(false); err != nil {
			errs = append(errs, fmt.Errorf("ts: resume: clear wake: %w", err))
		}
	}

	core.Critical(func() {
		d.guard.forget()
		atomic.StoreUint32(&d.phase, uint32(WaitForTouch))
		atomic.StoreUint32(&d.suspended, 0)
	})
	if err := d.line.Enable(); err != nil {
		errs = append(errs, fmt.Errorf("ts: resume: enable pen interrupt: %w", err))
	}
	core.RecordTrace(core.EvtResume, d.unit, d.clock.Now(), uint32(len(errs)), 0)
	return errors.Join(errs...)
}

package core

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer

	queued bool
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler is a per-owner timer list. Each touchscreen instance owns one,
// so fake devices in tests never share timers.
type Scheduler struct {
	list *Timer
	now  uint32
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule adds t to the list. A timer that is already queued is moved to
// its new WakeTime.
func (s *Scheduler) Schedule(t *Timer) {
	state := maskInterrupts()
	defer unmaskInterrupts(state)

	if t.queued {
		s.unlink(t)
	}
	s.insert(t)
}

// Cancel removes t from the list. Cancelling a timer that is not queued is a
// no-op; the return value reports whether anything was removed.
func (s *Scheduler) Cancel(t *Timer) bool {
	state := maskInterrupts()
	defer unmaskInterrupts(state)

	if !t.queued {
		return false
	}
	s.unlink(t)
	return true
}

// Pending reports whether t is queued.
func (s *Scheduler) Pending(t *Timer) bool {
	state := maskInterrupts()
	defer unmaskInterrupts(state)
	return t.queued
}

// Len returns the number of queued timers.
func (s *Scheduler) Len() int {
	state := maskInterrupts()
	defer unmaskInterrupts(state)

	n := 0
	for cur := s.list; cur != nil; cur = cur.Next {
		n++
	}
	return n
}

// Now returns the time of the last Dispatch.
func (s *Scheduler) Now() uint32 {
	return s.now
}

// insert inserts a timer in sorted order by WakeTime
func (s *Scheduler) insert(t *Timer) {
	t.queued = true
	if s.list == nil || int32(t.WakeTime-s.list.WakeTime) < 0 {
		t.Next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.Next != nil && int32(current.Next.WakeTime-t.WakeTime) <= 0 {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

func (s *Scheduler) unlink(t *Timer) {
	if s.list == t {
		s.list = t.Next
	} else {
		for cur := s.list; cur != nil; cur = cur.Next {
			if cur.Next == t {
				cur.Next = t.Next
				break
			}
		}
	}
	t.Next = nil
	t.queued = false
}

// pop removes and returns the first timer due at now, or nil.
func (s *Scheduler) pop(now uint32) *Timer {
	state := maskInterrupts()
	defer unmaskInterrupts(state)

	t := s.list
	if t == nil || !TimeReached(now, t.WakeTime) {
		return nil
	}
	s.list = t.Next
	t.Next = nil
	t.queued = false
	return t
}

// Dispatch runs every timer due at now and returns how many handlers ran.
// Handlers run outside the critical section, so they may schedule or cancel
// timers (including their own). Timers rescheduled by their handler are
// queued after the pass, so a handler that asks to run again at now is not
// run twice in one Dispatch.
func (s *Scheduler) Dispatch(now uint32) int {
	s.now = now
	ran := 0
	var again *Timer
	for {
		timer := s.pop(now)
		if timer == nil {
			break
		}
		ran++
		if timer.Handler(timer) == SF_RESCHEDULE {
			timer.Next = again
			again = timer
		}
	}
	for again != nil {
		timer := again
		again = timer.Next
		timer.Next = nil
		s.Schedule(timer)
	}
	return ran
}

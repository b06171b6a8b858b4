package ts

import (
	"errors"
	"fmt"
)

// Strategy selects how a Debouncer settles one channel.
type Strategy uint8

const (
	// Converge reads until consecutive samples agree within the threshold.
	Converge Strategy = iota
	// Median reads a fixed odd batch and takes the middle value.
	Median
)

func (s Strategy) String() string {
	switch s {
	case Converge:
		return "converge"
	case Median:
		return "median"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if s != Converge && s != Median {
		return nil, fmt.Errorf("ts: unknown debounce strategy %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "converge", "":
		*s = Converge
	case "median":
		*s = Median
	default:
		return fmt.Errorf("ts: unknown debounce strategy %q", text)
	}
	return nil
}

// DebounceConfig tunes a Debouncer.
type DebounceConfig struct {
	Strategy    Strategy `json:"strategy"`
	Window      int      `json:"window"`       // samples per channel
	MaxAttempts int      `json:"max_attempts"` // failed comparisons before ErrJitter
	Threshold   int32    `json:"threshold"`    // jitter window, exclusive
}

var errMixedChannel = errors.New("ts: debounce window mixes channels")

// DebounceWindow holds the samples of one channel for one acquisition
// attempt.
type DebounceWindow struct {
	channel Channel
	samples []RawSample
}

func newDebounceWindow(capacity int) DebounceWindow {
	return DebounceWindow{samples: make([]RawSample, 0, capacity)}
}

// Reset empties the window and binds it to ch.
func (w *DebounceWindow) Reset(ch Channel) {
	w.channel = ch
	w.samples = w.samples[:0]
}

// Push appends s. Samples of another channel are rejected.
func (w *DebounceWindow) Push(s RawSample) error {
	if s.Channel != w.channel {
		return errMixedChannel
	}
	w.samples = append(w.samples, s)
	return nil
}

// Len returns the number of samples held.
func (w *DebounceWindow) Len() int {
	return len(w.samples)
}

// Last returns the newest sample value.
func (w *DebounceWindow) Last() uint16 {
	return w.samples[len(w.samples)-1].Value
}

// Debouncer decides when repeated readings of a channel have settled. It
// keeps its window between calls to avoid allocating per round and is not
// safe for concurrent use.
type Debouncer struct {
	cfg    DebounceConfig
	window DebounceWindow
	batch  []uint16
}

// NewDebouncer returns a Debouncer for cfg.
func NewDebouncer(cfg DebounceConfig) *Debouncer {
	if cfg.Window < 2 {
		cfg.Window = 2
	}
	if cfg.Strategy == Median && cfg.Window%2 == 0 {
		cfg.Window++
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Debouncer{
		cfg:    cfg,
		window: newDebounceWindow(cfg.Window),
		batch:  make([]uint16, 0, cfg.Window),
	}
}

// Config returns the effective tuning.
func (d *Debouncer) Config() DebounceConfig {
	return d.cfg
}

// Debounce reads ch from source until it settles. Transport errors are
// returned unchanged; failure to settle returns ErrJitter.
func (d *Debouncer) Debounce(ch Channel, source func() (RawSample, error)) (uint16, error) {
	if d.cfg.Strategy == Median {
		return d.median(ch, source)
	}
	return d.converge(ch, source)
}

func (d *Debouncer) converge(ch Channel, source func() (RawSample, error)) (uint16, error) {
	w := &d.window
	w.Reset(ch)

	first, err := source()
	if err != nil {
		return 0, err
	}
	if err := w.Push(first); err != nil {
		return 0, err
	}

	failures := 0
	for {
		cur, err := source()
		if err != nil {
			return 0, err
		}
		if within(w.Last(), cur.Value, d.cfg.Threshold) {
			if err := w.Push(cur); err != nil {
				return 0, err
			}
			if w.Len() >= d.cfg.Window {
				return w.Last(), nil
			}
			// Only back-to-back divergences count toward MaxAttempts.
			failures = 0
			continue
		}

		failures++
		if failures >= d.cfg.MaxAttempts {
			return 0, ErrJitter
		}
		// Restart the window at the divergent reading.
		w.Reset(ch)
		if err := w.Push(cur); err != nil {
			return 0, err
		}
	}
}

func (d *Debouncer) median(ch Channel, source func() (RawSample, error)) (uint16, error) {
	w := &d.window
	w.Reset(ch)
	for w.Len() < d.cfg.Window {
		s, err := source()
		if err != nil {
			return 0, err
		}
		if err := w.Push(s); err != nil {
			return 0, err
		}
	}

	d.batch = d.batch[:0]
	for _, s := range w.samples {
		d.batch = append(d.batch, s.Value)
	}
	insertionSort(d.batch)
	return d.batch[len(d.batch)/2], nil
}

// within compares in the signed domain so readings near zero cannot wrap.
func within(prev, cur uint16, threshold int32) bool {
	diff := int32(prev) - int32(cur)
	return diff < threshold && -diff < threshold
}

func insertionSort(v []uint16) {
	for i := 1; i < len(v); i++ {
		x := v[i]
		j := i - 1
		for j >= 0 && v[j] > x {
			v[j+1] = v[j]
			j--
		}
		v[j+1] = x
	}
}

package ts

import (
	"errors"
	"math/rand"
	"testing"
)

// feed returns a source that yields values on ch and records what it read.
func feed(ch Channel, values []uint16, read *[]uint16) func() (RawSample, error) {
	i := 0
	return func() (RawSample, error) {
		if i >= len(values) {
			return RawSample{}, errors.New("source exhausted")
		}
		v := values[i]
		i++
		if read != nil {
			*read = append(*read, v)
		}
		return RawSample{Channel: ch, Value: v, Ordinal: uint32(i)}, nil
	}
}

func TestDebounceConverges(t *testing.T) {
	d := NewDebouncer(DebounceConfig{Strategy: Converge, Window: 3, MaxAttempts: 5, Threshold: 8})

	v, err := d.Debounce(X, feed(X, []uint16{500, 503, 501}, nil))
	if err != nil {
		t.Fatalf("Debounce failed: %v", err)
	}
	if v != 501 {
		t.Errorf("X = %d, want 501", v)
	}

	v, err = d.Debounce(Y, feed(Y, []uint16{700, 702, 699}, nil))
	if err != nil {
		t.Fatalf("Debounce failed: %v", err)
	}
	if v != 699 {
		t.Errorf("Y = %d, want 699", v)
	}
}

func TestDebounceJitter(t *testing.T) {
	d := NewDebouncer(DebounceConfig{Strategy: Converge, Window: 2, MaxAttempts: 3, Threshold: 8})

	var read []uint16
	_, err := d.Debounce(X, feed(X, []uint16{100, 900, 50, 999, 10}, &read))
	if !errors.Is(err, ErrJitter) {
		t.Fatalf("err = %v, want ErrJitter", err)
	}
	// Three failed comparisons need four readings.
	if len(read) != 4 {
		t.Errorf("read %d samples, want 4", len(read))
	}
}

func TestDebounceFailuresResetOnConvergence(t *testing.T) {
	d := NewDebouncer(DebounceConfig{Strategy: Converge, Window: 3, MaxAttempts: 2, Threshold: 8})

	// Each jump is a single divergence followed by a converging pair, so
	// the run never reaches two failures in a row.
	var read []uint16
	v, err := d.Debounce(X, feed(X, []uint16{100, 101, 300, 301, 500, 501, 502}, &read))
	if err != nil {
		t.Fatalf("Debounce failed: %v", err)
	}
	if v != 502 {
		t.Errorf("X = %d, want 502", v)
	}
	if len(read) != 7 {
		t.Errorf("read %d samples, want 7", len(read))
	}

	_, err = d.Debounce(X, feed(X, []uint16{100, 101, 300, 600, 601, 602}, nil))
	if !errors.Is(err, ErrJitter) {
		t.Errorf("err = %v, want ErrJitter after two divergences in a row", err)
	}
}

func TestDebounceFirstConvergenceWins(t *testing.T) {
	d := NewDebouncer(DebounceConfig{Strategy: Converge, Window: 2, MaxAttempts: 5, Threshold: 8})

	v, err := d.Debounce(Z1, feed(Z1, []uint16{10, 200, 205, 900}, nil))
	if err != nil {
		t.Fatalf("Debounce failed: %v", err)
	}
	if v != 205 {
		t.Errorf("got %d, want 205", v)
	}
}

func TestDebounceThresholdIsExclusive(t *testing.T) {
	tests := []struct {
		prev, cur uint16
		threshold int32
		want      bool
	}{
		{0, 7, 8, true},
		{7, 0, 8, true},
		{0, 8, 8, false},
		{8, 0, 8, false},
		{2, 4090, 8, false},
		{4090, 2, 8, false},
		{100, 100, 1, true},
	}
	for _, tt := range tests {
		if got := within(tt.prev, tt.cur, tt.threshold); got != tt.want {
			t.Errorf("within(%d, %d, %d) = %v, want %v", tt.prev, tt.cur, tt.threshold, got, tt.want)
		}
	}
}

// Every converged result is the last reading, and the trailing Window
// readings agree pairwise. Every ErrJitter ended on exactly MaxAttempts
// disagreements in a row.
func TestDebounceProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfgs := []DebounceConfig{
		{Strategy: Converge, Window: 2, MaxAttempts: 3, Threshold: 8},
		{Strategy: Converge, Window: 3, MaxAttempts: 5, Threshold: 16},
		{Strategy: Converge, Window: 4, MaxAttempts: 8, Threshold: 4},
	}

	for _, cfg := range cfgs {
		d := NewDebouncer(cfg)
		for trial := 0; trial < 500; trial++ {
			values := make([]uint16, 256)
			base := rng.Intn(4096)
			for i := range values {
				v := base + rng.Intn(41) - 20
				if v < 0 {
					v = 0
				}
				values[i] = uint16(v)
			}

			var read []uint16
			v, err := d.Debounce(X, feed(X, values, &read))
			switch {
			case err == nil:
				if v != read[len(read)-1] {
					t.Fatalf("%+v: result %d is not the last reading %d", cfg, v, read[len(read)-1])
				}
				tail := read[len(read)-cfg.Window:]
				for i := 1; i < len(tail); i++ {
					if !within(tail[i-1], tail[i], cfg.Threshold) {
						t.Fatalf("%+v: window %v contains a divergent pair", cfg, tail)
					}
				}
			case errors.Is(err, ErrJitter):
				misses := 0
				for i := len(read) - 1; i > 0; i-- {
					if within(read[i-1], read[i], cfg.Threshold) {
						break
					}
					misses++
				}
				if misses != cfg.MaxAttempts {
					t.Fatalf("%+v: jitter after %d disagreements in a row, want %d", cfg, misses, cfg.MaxAttempts)
				}
			default:
				t.Fatalf("%+v: unexpected error %v", cfg, err)
			}
		}
	}
}

func TestDebounceMedian(t *testing.T) {
	d := NewDebouncer(DebounceConfig{Strategy: Median, Window: 5})

	v, err := d.Debounce(X, feed(X, []uint16{5, 900, 7, 6, 4000}, nil))
	if err != nil {
		t.Fatalf("Debounce failed: %v", err)
	}
	if v != 7 {
		t.Errorf("median = %d, want 7", v)
	}
}

func TestDebounceMedianForcesOddWindow(t *testing.T) {
	d := NewDebouncer(DebounceConfig{Strategy: Median, Window: 4})
	if w := d.Config().Window; w != 5 {
		t.Errorf("window = %d, want 5", w)
	}

	var read []uint16
	if _, err := d.Debounce(Y, feed(Y, []uint16{1, 2, 3, 4, 5, 6}, &read)); err != nil {
		t.Fatalf("Debounce failed: %v", err)
	}
	if len(read) != 5 {
		t.Errorf("read %d samples, want 5", len(read))
	}
}

func TestDebounceSourceErrorPassesThrough(t *testing.T) {
	for _, strategy := range []Strategy{Converge, Median} {
		d := NewDebouncer(DebounceConfig{Strategy: strategy, Window: 3, MaxAttempts: 3, Threshold: 8})
		_, err := d.Debounce(X, func() (RawSample, error) {
			return RawSample{}, ErrBusTimeout
		})
		if err != ErrBusTimeout {
			t.Errorf("%v: err = %v, want ErrBusTimeout unchanged", strategy, err)
		}
	}
}

func TestDebounceRejectsMixedChannels(t *testing.T) {
	d := NewDebouncer(DebounceConfig{Strategy: Converge, Window: 2, MaxAttempts: 3, Threshold: 8})
	_, err := d.Debounce(X, feed(Y, []uint16{100, 101}, nil))
	if !errors.Is(err, errMixedChannel) {
		t.Errorf("err = %v, want errMixedChannel", err)
	}
}

func TestStrategyText(t *testing.T) {
	var s Strategy
	if err := s.UnmarshalText([]byte("median")); err != nil || s != Median {
		t.Errorf("UnmarshalText(median) = %v, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("")); err != nil || s != Converge {
		t.Errorf("UnmarshalText(\"\") = %v, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("average")); err == nil {
		t.Errorf("UnmarshalText(average) accepted")
	}
	text, err := Median.MarshalText()
	if err != nil || string(text) != "median" {
		t.Errorf("MarshalText = %q, %v", text, err)
	}
}

package ts

import (
	"errors"
	"testing"
)

func TestEstimatePressDown(t *testing.T) {
	cfg := DefaultConfig().Estimator

	pos, err := Estimate(501, 699, 20, 25, cfg)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	want := uint16(uint64(cfg.PressureFactor) * 20 / (5 * 501))
	if pos.Pressure != want {
		t.Errorf("pressure = %d, want %d", pos.Pressure, want)
	}
	if pos.X != 501 || pos.Y != 699 {
		t.Errorf("position = (%d, %d), want (501, 699)", pos.X, pos.Y)
	}
	if !pos.PenDown(cfg) {
		t.Errorf("pressure %d not reported as pen-down", pos.Pressure)
	}
}

func TestEstimatePenUpBelowFloor(t *testing.T) {
	cfg := DefaultConfig().Estimator

	for _, xy := range [][2]uint16{{501, 699}, {0, 0}, {4095, 4095}, {2000, 12}} {
		pos, err := Estimate(xy[0], xy[1], 5, 25, cfg)
		if err != nil {
			t.Errorf("Estimate(%v) failed: %v", xy, err)
			continue
		}
		if pos != (Position{}) {
			t.Errorf("Estimate(%v) = %+v, want zero position", xy, pos)
		}
		if pos.PenDown(cfg) {
			t.Errorf("Estimate(%v) reported pen-down", xy)
		}
	}
}

func TestEstimateInvalid(t *testing.T) {
	cfg := DefaultConfig().Estimator

	tests := []struct {
		name         string
		x, y, z1, z2 uint16
		wantInvalid  bool
	}{
		{"saturated x", 4095, 700, 200, 400, true},
		{"x beyond range", 4200, 700, 200, 400, true},
		{"z2 missing", 1000, 700, 200, 0, true},
		{"z2 missing at y edge", 1000, 0, 200, 0, false},
		{"normal", 1000, 700, 200, 400, false},
	}
	for _, tt := range tests {
		_, err := Estimate(tt.x, tt.y, tt.z1, tt.z2, cfg)
		if got := errors.Is(err, ErrInvalid); got != tt.wantInvalid {
			t.Errorf("%s: err = %v, want invalid=%v", tt.name, err, tt.wantInvalid)
		}
	}
}

// z1 == z2 makes the ratio formula degenerate. The estimator reports z1
// as the pressure; this keeps a behaviour some panels depend on.
func TestEstimateEqualZFallsBackToZ1(t *testing.T) {
	cfg := DefaultConfig().Estimator

	pos, err := Estimate(1000, 700, 300, 300, cfg)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if pos.Pressure != 300 {
		t.Errorf("pressure = %d, want z1 (300)", pos.Pressure)
	}
}

func TestEstimateZeroXCountsAsOne(t *testing.T) {
	cfg := DefaultConfig().Estimator

	atZero, err := Estimate(0, 700, 100, 4000, cfg)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	atOne, err := Estimate(1, 700, 100, 4000, cfg)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if atZero.Pressure != atOne.Pressure || atZero.Pressure != 1680 {
		t.Errorf("pressure at x=0 is %d, at x=1 is %d, want both 1680", atZero.Pressure, atOne.Pressure)
	}
}

func TestEstimateSaturatesPressure(t *testing.T) {
	cfg := DefaultConfig().Estimator

	pos, err := Estimate(1, 700, 4000, 4001, cfg)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if pos.Pressure != 0xFFFF {
		t.Errorf("pressure = %d, want 0xFFFF", pos.Pressure)
	}
}

// A wider z1/z2 gap or a larger x means a lighter touch.
func TestEstimatePressureMonotonic(t *testing.T) {
	cfg := DefaultConfig().Estimator

	prev := uint16(0xFFFF)
	for z2 := uint16(200); z2 <= 600; z2 += 100 {
		pos, err := Estimate(1000, 700, 100, z2, cfg)
		if err != nil {
			t.Fatalf("Estimate(z2=%d) failed: %v", z2, err)
		}
		if pos.Pressure >= prev {
			t.Errorf("z2=%d: pressure %d did not drop below %d", z2, pos.Pressure, prev)
		}
		prev = pos.Pressure
	}

	prev = 0xFFFF
	for x := uint16(250); x <= 4000; x *= 2 {
		pos, err := Estimate(x, 700, 100, 150, cfg)
		if err != nil {
			t.Fatalf("Estimate(x=%d) failed: %v", x, err)
		}
		if pos.Pressure >= prev {
			t.Errorf("x=%d: pressure %d did not drop below %d", x, pos.Pressure, prev)
		}
		prev = pos.Pressure
	}
}

func TestPenDownThresholdFloor(t *testing.T) {
	cfg := EstimatorConfig{}
	if (Position{Pressure: 0}).PenDown(cfg) {
		t.Errorf("zero pressure reported pen-down with zero threshold")
	}
	if !(Position{Pressure: 1}).PenDown(cfg) {
		t.Errorf("pressure 1 not pen-down with zero threshold")
	}
}

func TestCalibrationApply(t *testing.T) {
	tests := []struct {
		name   string
		cal    Calibration
		x, y   uint16
		wx, wy uint16
	}{
		{"identity", Calibration{}, 1234, 567, 1234, 567},
		{"identity swapped", Calibration{SwapXY: true}, 1234, 567, 567, 1234},
		{"low corner", Calibration{XMin: 100, XMax: 3900, YMin: 200, YMax: 3800, Width: 320, Height: 240}, 100, 200, 0, 0},
		{"high corner", Calibration{XMin: 100, XMax: 3900, YMin: 200, YMax: 3800, Width: 320, Height: 240}, 3900, 3800, 319, 239},
		{"clamped", Calibration{XMin: 100, XMax: 3900, YMin: 200, YMax: 3800, Width: 320, Height: 240}, 50, 4000, 0, 239},
		{"inverted", Calibration{XMin: 3900, XMax: 100, YMin: 200, YMax: 3800, Width: 320, Height: 240}, 100, 200, 319, 0},
	}
	for _, tt := range tests {
		x, y := tt.cal.Apply(tt.x, tt.y)
		if x != tt.wx || y != tt.wy {
			t.Errorf("%s: Apply(%d, %d) = (%d, %d), want (%d, %d)", tt.name, tt.x, tt.y, x, y, tt.wx, tt.wy)
		}
	}
}

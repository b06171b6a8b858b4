package ts

// Estimate converts one round of stabilized readings into a position and
// pressure. It has no state and touches no hardware.
//
// A z1 below cfg.MinZ1 is pen-up and yields the zero Position. A saturated x,
// or a zero z2 while x and y are both in range, is ErrInvalid.
func Estimate(x, y, z1, z2 uint16, cfg EstimatorConfig) (Position, error) {
	if z1 < cfg.MinZ1 {
		return Position{}, nil
	}
	if x >= cfg.AdcMax {
		return Position{}, ErrInvalid
	}
	if z2 == 0 && inRange(x, cfg.AdcMax) && inRange(y, cfg.AdcMax) {
		return Position{}, ErrInvalid
	}

	dz := int64(z2) - int64(z1)
	if dz < 0 {
		dz = -dz
	}
	xs := int64(x)
	if xs == 0 {
		xs = 1
	}
	rawDelta := uint64(dz * xs)

	var pressure uint64
	if rawDelta == 0 {
		// z1 == z2: the ratio formula degenerates. Some panels (h5000)
		// regressed when this returned a huge value, so report z1 itself.
		pressure = uint64(z1)
	} else {
		pressure = uint64(cfg.PressureFactor) * uint64(z1) / rawDelta
	}
	if pressure > 0xFFFF {
		pressure = 0xFFFF
	}

	return Position{X: x, Y: y, Pressure: uint16(pressure)}, nil
}

// PenDown reports whether p carries enough pressure to count as a touch.
func (p Position) PenDown(cfg EstimatorConfig) bool {
	threshold := cfg.PressureThreshold
	if threshold == 0 {
		threshold = 1
	}
	return p.Pressure >= threshold
}

func inRange(v, adcMax uint16) bool {
	return v > 0 && v < adcMax
}

// Apply maps a raw position to screen coordinates, clamped to the screen.
func (c Calibration) Apply(x, y uint16) (uint16, uint16) {
	if c.SwapXY {
		x, y = y, x
	}
	if c.Width == 0 || c.Height == 0 {
		return x, y
	}
	return scale(x, c.XMin, c.XMax, c.Width), scale(y, c.YMin, c.YMax, c.Height)
}

// scale maps v from [lo, hi] onto [0, size-1]. lo may be above hi for an
// inverted axis.
func scale(v, lo, hi, size uint16) uint16 {
	rangeIn := int32(hi) - int32(lo)
	out := (int32(v) - int32(lo)) * int32(size-1) / rangeIn
	if out < 0 {
		out = 0
	}
	if out > int32(size-1) {
		out = int32(size - 1)
	}
	return uint16(out)
}

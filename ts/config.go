package ts

import (
	"encoding/json"
	"errors"
	"fmt"
)

// BusConfig holds the transport clocking parameters. They are reapplied on
// every resume because some converters lose them across sleep.
type BusConfig struct {
	RateHz    uint32 `json:"rate_hz"`
	Mode      uint8  `json:"mode"`
	TimeoutUS uint32 `json:"timeout_us"` // busy-wait bound per transfer
	SettleUS  uint32 `json:"settle_us"`  // plate settling time before a conversion
}

// EstimatorConfig tunes the pressure formula.
type EstimatorConfig struct {
	AdcMax            uint16 `json:"adc_max"`
	MinZ1             uint16 `json:"min_z1"`
	PressureFactor    uint32 `json:"pressure_factor"`
	PressureThreshold uint16 `json:"pressure_threshold"`
}

// Calibration maps raw converter coordinates to screen coordinates. A zero
// value passes raw coordinates through.
type Calibration struct {
	XMin   uint16 `json:"x_min"`
	XMax   uint16 `json:"x_max"`
	YMin   uint16 `json:"y_min"`
	YMax   uint16 `json:"y_max"`
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
	SwapXY bool   `json:"swap_xy"`
}

// Config is the board tuning supplied at attach time. It is not modified
// afterwards.
type Config struct {
	Debounce    DebounceConfig  `json:"debounce"`
	Estimator   EstimatorConfig `json:"estimator"`
	Calibration Calibration     `json:"calibration"`
	Bus         BusConfig       `json:"bus"`

	Fuzz         uint16 `json:"fuzz"`          // coordinate change below which a report is suppressed
	PressureFuzz uint16 `json:"pressure_fuzz"` // same, for pressure

	SamplePeriodUS  uint32 `json:"sample_period_us"`
	MaxFailedRounds uint8  `json:"max_failed_rounds"`

	// LevelSense reads the pen line before each round and releases as soon
	// as it is deasserted.
	LevelSense bool `json:"level_sense"`

	// WakeOnTouch keeps the pen line armed as a wake source across suspend
	// instead of masking it.
	WakeOnTouch bool `json:"wake_on_touch"`
}

// DefaultConfig returns the tuning used when a board supplies nothing.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig parses a JSON configuration and fills in defaults.
func LoadConfig(jsonData []byte) (*Config, error) {
	var cfg Config

	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("ts: parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(cfg *Config) {
	if cfg.Debounce.Window == 0 {
		cfg.Debounce.Window = 2
	}
	if cfg.Debounce.MaxAttempts == 0 {
		cfg.Debounce.MaxAttempts = 5
	}
	if cfg.Debounce.Threshold == 0 {
		cfg.Debounce.Threshold = 8
	}
	if cfg.Debounce.Strategy == Median && cfg.Debounce.Window%2 == 0 {
		cfg.Debounce.Window++
	}

	if cfg.Estimator.AdcMax == 0 {
		cfg.Estimator.AdcMax = 4095
	}
	if cfg.Estimator.MinZ1 == 0 {
		cfg.Estimator.MinZ1 = 10
	}
	if cfg.Estimator.PressureFactor == 0 {
		cfg.Estimator.PressureFactor = 1 << 16
	}
	if cfg.Estimator.PressureThreshold == 0 {
		cfg.Estimator.PressureThreshold = 10
	}

	if cfg.Bus.TimeoutUS == 0 {
		cfg.Bus.TimeoutUS = 1000
	}
	if cfg.Bus.RateHz == 0 {
		cfg.Bus.RateHz = 2000000
	}

	if cfg.SamplePeriodUS == 0 {
		cfg.SamplePeriodUS = 10000 // 10ms
	}
	if cfg.MaxFailedRounds == 0 {
		cfg.MaxFailedRounds = 8
	}
}

// Validate checks the tuning for values the state machine cannot run with.
func (c *Config) Validate() error {
	if c.Debounce.Window < 2 {
		return errors.New("ts: debounce window must be at least 2")
	}
	if c.Debounce.Strategy == Median && c.Debounce.Window%2 == 0 {
		return errors.New("ts: median window must be odd")
	}
	if c.Debounce.Strategy != Converge && c.Debounce.Strategy != Median {
		return fmt.Errorf("ts: unknown debounce strategy %d", c.Debounce.Strategy)
	}
	if c.Debounce.MaxAttempts < 1 {
		return errors.New("ts: debounce needs at least one attempt")
	}
	if c.Estimator.AdcMax == 0 {
		return errors.New("ts: adc_max must be set")
	}
	if c.Estimator.PressureThreshold == 0 {
		return errors.New("ts: pressure_threshold must be at least 1")
	}
	cal := c.Calibration
	if cal.Width != 0 || cal.Height != 0 {
		if cal.XMin == cal.XMax || cal.YMin == cal.YMax {
			return errors.New("ts: calibration range is empty")
		}
		if cal.Width == 0 || cal.Height == 0 {
			return errors.New("ts: calibration needs both width and height")
		}
	}
	if c.SamplePeriodUS == 0 {
		return errors.New("ts: sample period must be set")
	}
	if c.MaxFailedRounds == 0 {
		return errors.New("ts: max_failed_rounds must be at least 1")
	}
	return nil
}

// Preset returns the tuning for a known board family.
func Preset(name string) (*Config, error) {
	cfg := &Config{}
	switch name {
	case "asus620":
		cfg.Debounce = DebounceConfig{Strategy: Converge, Window: 2, MaxAttempts: 8, Threshold: 8}
		cfg.Estimator = EstimatorConfig{MinZ1: 10}
		cfg.SamplePeriodUS = 10000
		cfg.LevelSense = true
	case "htcsable":
		cfg.Debounce = DebounceConfig{Strategy: Converge, Window: 3, MaxAttempts: 5, Threshold: 16}
		cfg.Estimator = EstimatorConfig{MinZ1: 20}
		cfg.Bus = BusConfig{RateHz: 1000000, Mode: 0, TimeoutUS: 2000}
		cfg.SamplePeriodUS = 20000
		cfg.LevelSense = true
		cfg.WakeOnTouch = true
	case "h5000":
		cfg.Debounce = DebounceConfig{Strategy: Median, Window: 5}
		cfg.Estimator = EstimatorConfig{MinZ1: 15}
		cfg.SamplePeriodUS = 10000
		cfg.WakeOnTouch = true
	case "ts-adc":
		cfg.Debounce = DebounceConfig{Strategy: Median, Window: 7}
		cfg.Bus = BusConfig{SettleUS: 50}
		cfg.SamplePeriodUS = 15000
		cfg.Fuzz = 2
	default:
		return nil, fmt.Errorf("ts: unknown board preset %q", name)
	}
	applyDefaults(cfg)
	return cfg, cfg.Validate()
}

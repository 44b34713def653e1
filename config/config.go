// Package config provides configuration loading and access for the fluid backdrop.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Sim       SimConfig       `yaml:"sim"`
	Pointer   PointerConfig   `yaml:"pointer"`
	Frame     FrameConfig     `yaml:"frame"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	HUD       HUDConfig       `yaml:"hud"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings.
type ScreenConfig struct {
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	TargetFPS  int      `yaml:"target_fps"`
	Title      string   `yaml:"title"`
	Background [3]uint8 `yaml:"background"` // clear color behind the dye
}

// SimConfig holds the solver parameters. It is fixed for the lifetime of
// a simulation instance.
type SimConfig struct {
	SimResolution       int     `yaml:"sim_resolution"`       // velocity/pressure grid, short axis
	DyeResolution       int     `yaml:"dye_resolution"`       // dye grid, short axis
	DensityDissipation  float64 `yaml:"density_dissipation"`  // dye multiplier per step
	VelocityDissipation float64 `yaml:"velocity_dissipation"` // velocity multiplier per step
	PressureDissipation float64 `yaml:"pressure_dissipation"` // pressure carried into the next solve
	PressureIterations  int     `yaml:"pressure_iterations"`  // Jacobi iterations per step
	Curl                float64 `yaml:"curl"`                 // vorticity confinement strength
	SplatRadius         float64 `yaml:"splat_radius"`         // divided by 100 to get the UV-space radius
	SplatForce          float64 `yaml:"splat_force"`          // pointer displacement -> velocity
}

// PointerConfig holds pointer tracking parameters.
type PointerConfig struct {
	Color         [3]float64 `yaml:"color"`          // dye color injected by the pointer
	MoveThreshold float64    `yaml:"move_threshold"` // minimum scaled speed that counts as movement
	SpeedScale    float64    `yaml:"speed_scale"`    // tracked speed -> splat speed
}

// FrameConfig holds frame loop parameters.
type FrameConfig struct {
	MaxDT float64 `yaml:"max_dt"` // upper bound on a single solver step
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow    int `yaml:"perf_window"`    // frames averaged by the perf collector
	StatsInterval int `yaml:"stats_interval"` // frames between field readbacks (0 = off)
}

// HUDConfig holds overlay settings.
type HUDConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	PointerColor [3]float32 // Pointer.Color as float32, as the splat pass takes it
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()
	return cfg, nil
}

// Validate checks the invariants the solver relies on.
func (c *Config) Validate() error {
	if err := c.Sim.Validate(); err != nil {
		return err
	}
	if c.Frame.MaxDT <= 0 {
		return fmt.Errorf("%w: frame.max_dt must be positive, got %g", ErrInvalid, c.Frame.MaxDT)
	}
	if c.Pointer.MoveThreshold < 0 {
		return fmt.Errorf("%w: pointer.move_threshold must not be negative", ErrInvalid)
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("%w: screen size %dx%d", ErrInvalid, c.Screen.Width, c.Screen.Height)
	}
	return nil
}

// Validate checks resolutions, iteration count and dissipation bounds.
// Dissipation coefficients above 1 would amplify a field on every step.
func (s SimConfig) Validate() error {
	if s.SimResolution <= 0 || s.DyeResolution <= 0 {
		return fmt.Errorf("%w: resolutions must be positive (sim %d, dye %d)", ErrInvalid, s.SimResolution, s.DyeResolution)
	}
	if s.PressureIterations <= 0 {
		return fmt.Errorf("%w: sim.pressure_iterations must be positive, got %d", ErrInvalid, s.PressureIterations)
	}
	for name, v := range map[string]float64{
		"density_dissipation":  s.DensityDissipation,
		"velocity_dissipation": s.VelocityDissipation,
		"pressure_dissipation": s.PressureDissipation,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: sim.%s must be in [0,1], got %g", ErrInvalid, name, v)
		}
	}
	if s.SplatRadius <= 0 {
		return fmt.Errorf("%w: sim.splat_radius must be positive, got %g", ErrInvalid, s.SplatRadius)
	}
	return nil
}

// BaseRadius is the UV-space splat radius.
func (s SimConfig) BaseRadius() float64 {
	return s.SplatRadius / 100
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	for i, v := range c.Pointer.Color {
		c.Derived.PointerColor[i] = float32(v)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

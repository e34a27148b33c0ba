package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"soartask/pkg/glide"
	"soartask/pkg/model"
)

// Environment variables read after the config file.
const (
	EnvMC       = "SOARTASK_MC"
	EnvLogLevel = "SOARTASK_LOG_LEVEL"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Polar     PolarConfig     `yaml:"polar"`
	Glide     GlideConfig     `yaml:"glide"`
	Task      TaskConfig      `yaml:"task"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Sim       SimConfig       `yaml:"sim"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
	Events LogSettings `yaml:"events"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// PolarConfig describes the glider performance curve.
type PolarConfig struct {
	// Shape is three speed/sink pairs, "v1,w1,v2,w2,v3,w3" in km/h and m/s.
	Shape string  `yaml:"shape"`
	VMax  float64 `yaml:"vmax_kmh"`
}

// GlideConfig holds the MacCready and weather settings used by the solver.
type GlideConfig struct {
	MC           float64    `yaml:"mc"` // m/s
	Wind         model.Wind `yaml:"wind"`
	SafetyHeight Distance   `yaml:"safety_height"`
}

// TaskConfig describes the ordered task.
type TaskConfig struct {
	AdvanceMode   string        `yaml:"advance_mode"`
	AATMinTime    Duration      `yaml:"aat_min_time"`
	CloseToTarget Distance      `yaml:"close_to_target"`
	Points        []PointConfig `yaml:"points"`
}

// PointConfig is one task point.
type PointConfig struct {
	Name           string     `yaml:"name"`
	Kind           string     `yaml:"kind"`
	Lat            float64    `yaml:"lat"`
	Lon            float64    `yaml:"lon"`
	Elevation      float64    `yaml:"elevation"`
	MaxStartHeight float64    `yaml:"max_start_height,omitempty"`
	Zone           ZoneConfig `yaml:"zone"`
}

// ZoneConfig is the observation zone of a task point.
type ZoneConfig struct {
	Shape   string   `yaml:"shape"`
	Radius  Distance `yaml:"radius,omitempty"`  // cylinder, sector, quadrant
	Length  Distance `yaml:"length,omitempty"`  // line
	Opening float64  `yaml:"opening,omitempty"` // sector, degrees
}

// OptimizerConfig controls the target optimiser.
type OptimizerConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Tolerance float64 `yaml:"tolerance"`
	Trace     bool    `yaml:"trace"`
}

// SimConfig holds settings for the simulated flight.
type SimConfig struct {
	Tick            Duration `yaml:"tick"`
	MaxTicks        int      `yaml:"max_ticks"`
	StartAltitude   float64  `yaml:"start_altitude"`
	ThermalSpacing  Distance `yaml:"thermal_spacing"`
	ThermalStrength float64  `yaml:"thermal_strength"`
	ThermalTop      float64  `yaml:"thermal_top"`
	Seed            int64    `yaml:"seed"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "logs/taskopt.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "logs/events.log",
				Level: "INFO",
			},
		},
		Polar: PolarConfig{
			Shape: "90,-0.65,130,-1.05,180,-2.05",
			VMax:  250,
		},
		Glide: GlideConfig{
			MC:           1.0,
			Wind:         model.Wind{Speed: 5, Bearing: 270},
			SafetyHeight: 150,
		},
		Task: TaskConfig{
			AdvanceMode:   "arm",
			AATMinTime:    Duration(90 * time.Minute),
			CloseToTarget: 500,
			Points: []PointConfig{
				{
					Name: "Grenchen", Kind: "start", Lat: 47.18, Lon: 7.41, Elevation: 430,
					Zone: ZoneConfig{Shape: "line", Length: 2000},
				},
				{
					Name: "Langenthal", Kind: "aat", Lat: 47.21, Lon: 7.79, Elevation: 480,
					Zone: ZoneConfig{Shape: "cylinder", Radius: 10000},
				},
				{
					Name: "Olten", Kind: "aat", Lat: 47.35, Lon: 7.90, Elevation: 400,
					Zone: ZoneConfig{Shape: "sector", Radius: 15000, Opening: 120},
				},
				{
					Name: "Grenchen", Kind: "finish", Lat: 47.18, Lon: 7.41, Elevation: 430,
					Zone: ZoneConfig{Shape: "cylinder", Radius: 3000},
				},
			},
		},
		Optimizer: OptimizerConfig{
			Enabled:   true,
			Tolerance: 1e-3,
		},
		Sim: SimConfig{
			Tick:            Duration(5 * time.Second),
			MaxTicks:        5000,
			StartAltitude:   1500,
			ThermalSpacing:  12000,
			ThermalStrength: 2.0,
			ThermalTop:      2200,
			Seed:            1,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk (to preserve user formatting and comments).
// Environment overrides are applied last in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvMC); v != "" {
		mc, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvMC, v)
		}
		cfg.Glide.MC = mc
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Server.Level = strings.ToUpper(strings.TrimSpace(v))
	}
	return nil
}

var reLevel = regexp.MustCompile(`^(?i)(debug|info|warn|error)$`)

// Validate checks the values the task engine cannot recover from.
// Point kinds, zone shapes and the advance mode are checked where they are parsed.
func (c *Config) Validate() error {
	if _, err := glide.ParsePolarShape(c.Polar.Shape); err != nil {
		return fmt.Errorf("%w: polar: %v", ErrInvalidConfig, err)
	}
	if c.Glide.MC < 0 {
		return fmt.Errorf("%w: negative mc %g", ErrInvalidConfig, c.Glide.MC)
	}
	if c.Log.Server.Level != "" && !reLevel.MatchString(c.Log.Server.Level) {
		return fmt.Errorf("%w: unknown log level '%s'", ErrInvalidConfig, c.Log.Server.Level)
	}
	if len(c.Task.Points) < 2 {
		return fmt.Errorf("%w: a task needs at least a start and a finish, got %d points", ErrInvalidConfig, len(c.Task.Points))
	}
	if c.Optimizer.Enabled && c.Optimizer.Tolerance <= 0 {
		return fmt.Errorf("%w: optimizer tolerance must be positive", ErrInvalidConfig)
	}
	if c.Sim.Tick <= 0 {
		return fmt.Errorf("%w: sim tick must be positive", ErrInvalidConfig)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# soartask Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles), ft (feet)
# Environment overrides: ` + EnvMC + `, ` + EnvLogLevel + `

`)
	data = append(header, data...)

	// Inject comments for enum fields.
	reMode := regexp.MustCompile(`(?m)^(\s+)advance_mode:`)
	data = reMode.ReplaceAll(data, []byte("${1}# Options: manual, auto, arm, armstart\n${1}advance_mode:"))

	reKind := regexp.MustCompile(`(?m)^(\s+)kind: start$`)
	data = reKind.ReplaceAll(data, []byte("${1}# Options: start, ast, aat, finish\n${1}kind: start"))

	reShape := regexp.MustCompile(`(?m)^(\s+)shape: line$`)
	data = reShape.ReplaceAll(data, []byte("${1}# Options: cylinder, line, sector, keyhole, quadrant\n${1}shape: line"))

	rePolar := regexp.MustCompile(`(?m)^(\s+)shape: ("?[0-9])`)
	data = rePolar.ReplaceAll(data, []byte("${1}# Three pairs of speed (km/h) and sink (m/s)\n${1}shape: ${2}"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}

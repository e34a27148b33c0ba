package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "taskopt.yaml")

	tests := []struct {
		name          string
		setup         func(*testing.T)
		validate      func(*testing.T, *Config)
		checkFile     func(*testing.T)
		expectedError bool
	}{
		{
			name:  "NewFile_Defaults",
			setup: func(*testing.T) {}, // No file
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Task.AdvanceMode != "arm" {
					t.Errorf("expected default advance mode 'arm', got '%s'", cfg.Task.AdvanceMode)
				}
				if len(cfg.Task.Points) != 4 {
					t.Errorf("expected 4 default points, got %d", len(cfg.Task.Points))
				}
				if time.Duration(cfg.Task.AATMinTime) != 90*time.Minute {
					t.Errorf("expected AAT min time 1h30m, got %v", time.Duration(cfg.Task.AATMinTime))
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				s := string(content)
				if !strings.Contains(s, "advance_mode: arm") {
					t.Error("config file missing default values")
				}
				if !strings.Contains(s, "# Options: manual, auto, arm, armstart") {
					t.Error("config file missing advance mode comment")
				}
				if !strings.Contains(s, "# Options: cylinder, line, sector, keyhole, quadrant") {
					t.Error("config file missing zone shape comment")
				}
				if !strings.Contains(s, "# Three pairs of speed (km/h) and sink (m/s)") {
					t.Error("config file missing polar comment")
				}
			},
		},
		{
			name: "ExistingFile_Override",
			setup: func(t *testing.T) {
				err := os.WriteFile(configPath, []byte("glide:\n  mc: 2.5\n  safety_height: 0.5km\ntask:\n  advance_mode: armstart\n  close_to_target: 1km\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Glide.MC != 2.5 {
					t.Errorf("expected MC 2.5, got %v", cfg.Glide.MC)
				}
				if float64(cfg.Glide.SafetyHeight) != 500 {
					t.Errorf("expected safety height 500m, got %v", cfg.Glide.SafetyHeight)
				}
				if cfg.Task.AdvanceMode != "armstart" {
					t.Errorf("expected advance mode 'armstart', got '%s'", cfg.Task.AdvanceMode)
				}
				if float64(cfg.Task.CloseToTarget) != 1000 {
					t.Errorf("expected close to target 1000m, got %v", cfg.Task.CloseToTarget)
				}
				// untouched sections keep their defaults
				if len(cfg.Task.Points) != 4 {
					t.Errorf("expected default points to survive, got %d", len(cfg.Task.Points))
				}
				if cfg.Sim.Seed != 1 {
					t.Errorf("expected default seed 1, got %d", cfg.Sim.Seed)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if strings.Contains(string(content), "points:") {
					t.Error("existing config file should not be rewritten")
				}
			},
		},
		{
			name: "Points_Replace_Defaults",
			setup: func(t *testing.T) {
				data := `task:
  points:
    - name: A
      kind: start
      lat: 47
      lon: 7.5
      zone: {shape: cylinder, radius: 2km}
    - name: B
      kind: finish
      lat: 47
      lon: 8
      zone: {shape: line, length: 1000}
`
				if err := os.WriteFile(configPath, []byte(data), 0o644); err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if len(cfg.Task.Points) != 2 {
					t.Fatalf("expected 2 points, got %d", len(cfg.Task.Points))
				}
				if float64(cfg.Task.Points[0].Zone.Radius) != 2000 {
					t.Errorf("expected radius 2000m, got %v", cfg.Task.Points[0].Zone.Radius)
				}
				if cfg.Task.Points[1].Zone.Shape != "line" {
					t.Errorf("expected line finish, got %s", cfg.Task.Points[1].Zone.Shape)
				}
			},
		},
		{
			name: "Env_Override",
			setup: func(t *testing.T) {
				t.Setenv(EnvMC, "1.7")
				t.Setenv(EnvLogLevel, "debug")
				if err := os.WriteFile(configPath, []byte("glide:\n  mc: 0.5\n"), 0o644); err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Glide.MC != 1.7 {
					t.Errorf("expected MC from env 1.7, got %v", cfg.Glide.MC)
				}
				if cfg.Log.Server.Level != "DEBUG" {
					t.Errorf("expected log level DEBUG, got %s", cfg.Log.Server.Level)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if strings.Contains(string(content), "1.7") {
					t.Error("environment override should NOT be persisted to config file")
				}
			},
		},
		{
			name: "Env_Bad_MC",
			setup: func(t *testing.T) {
				t.Setenv(EnvMC, "fast")
				if err := os.WriteFile(configPath, []byte("glide:\n  mc: 0.5\n"), 0o644); err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_YAML",
			setup: func(t *testing.T) {
				if err := os.WriteFile(configPath, []byte("task: [not a map]"), 0o644); err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_Polar",
			setup: func(t *testing.T) {
				if err := os.WriteFile(configPath, []byte("polar:\n  shape: \"90,-0.65\"\n"), 0o644); err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Too_Few_Points",
			setup: func(t *testing.T) {
				data := "task:\n  points:\n    - name: A\n      kind: start\n      zone: {shape: line, length: 1000}\n"
				if err := os.WriteFile(configPath, []byte(data), 0o644); err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Remove(configPath)
			tt.setup(t)

			cfg, err := Load(configPath)
			if (err != nil) != tt.expectedError {
				t.Fatalf("Load() error = %v, expectedError %v", err, tt.expectedError)
			}
			if err != nil {
				return
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
			if tt.checkFile != nil {
				tt.checkFile(t)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"NegativeMC", func(c *Config) { c.Glide.MC = -1 }},
		{"BadLevel", func(c *Config) { c.Log.Server.Level = "LOUD" }},
		{"ZeroTolerance", func(c *Config) { c.Optimizer.Tolerance = 0 }},
		{"ZeroTick", func(c *Config) { c.Sim.Tick = 0 }},
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestGenerateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "taskopt.yaml")

	if err := GenerateDefault(path); err != nil {
		t.Fatalf("GenerateDefault failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	// existing files are left alone
	if err := os.WriteFile(path, []byte("custom: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := GenerateDefault(path); err != nil {
		t.Fatalf("GenerateDefault failed: %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "custom: true\n" {
		t.Errorf("existing file was overwritten: %q", content)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskopt.yaml")
	cfg := DefaultConfig()
	cfg.Task.Points[1].Zone.Radius = 12345
	cfg.Sim.Tick = Duration(2 * time.Second)

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if float64(loaded.Task.Points[1].Zone.Radius) != 12345 {
		t.Errorf("radius not preserved: %v", loaded.Task.Points[1].Zone.Radius)
	}
	if time.Duration(loaded.Sim.Tick) != 2*time.Second {
		t.Errorf("tick not preserved: %v", time.Duration(loaded.Sim.Tick))
	}
	if loaded.Glide.Wind != cfg.Glide.Wind {
		t.Errorf("wind not preserved: %+v", loaded.Glide.Wind)
	}
}

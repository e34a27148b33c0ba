package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soartask/pkg/config"
	"soartask/pkg/geo"
	"soartask/pkg/logging"
	"soartask/pkg/oz"
	"soartask/pkg/probe"
	"soartask/pkg/task"
)

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Log.Server.Path = filepath.Join(dir, "logs", "taskopt.log")
	cfg.Log.Events.Path = filepath.Join(dir, "logs", "events.log")
	path := filepath.Join(dir, "taskopt.yaml")
	require.NoError(t, config.Save(path, cfg))
	return cfg, path
}

func TestRun(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		logging.SetEventLogPath("")
	})

	_, path := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), path, 60, &out))

	s := out.String()
	assert.Contains(t, s, "ticks:      60")
	assert.Contains(t, s, "started:    true")
	assert.Contains(t, s, "target:     Langenthal")
	assert.Contains(t, s, "last event:")
	assert.Contains(t, s, " runs, ")
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskopt.yaml")
	cfg := config.DefaultConfig()
	cfg.Polar.Shape = "1,2,3"
	require.NoError(t, config.Save(path, cfg))

	err := run(context.Background(), path, 1, &bytes.Buffer{})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestFly_CancelledBeforeLaunch(t *testing.T) {
	cfg, _ := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fly(ctx, cfg)
	assert.ErrorIs(t, err, probe.ErrPreflight)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFly_CancelledInFlight(t *testing.T) {
	cfg, _ := testConfig(t)
	// manual advance never finishes, so only the deadline ends the loop
	cfg.Task.AdvanceMode = "manual"
	cfg.Sim.MaxTicks = 1 << 30
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sum, err := fly(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, sum.Cancelled)
	assert.Positive(t, sum.Ticks)
	assert.False(t, sum.Finished)
}

func TestFly_Preflight(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Polar.Shape = "90,-3,130,-5,180,-9"

	_, err := fly(context.Background(), cfg)
	assert.ErrorIs(t, err, probe.ErrPreflight)
}

func TestFly_ManualNeverAdvances(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Task.AdvanceMode = "manual"
	cfg.Sim.MaxTicks = 60

	sum, err := fly(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, sum.Started)
	assert.Equal(t, 0, sum.Active)
}

func TestBuildTask(t *testing.T) {
	cfg := config.DefaultConfig()
	polar, err := buildPolar(cfg.Polar, cfg.Glide.MC)
	require.NoError(t, err)

	tk, err := buildTask(cfg, polar)
	require.NoError(t, err)
	require.Equal(t, 4, tk.Len())
	assert.Equal(t, task.ModeArm, tk.Settings().AdvanceMode)
	assert.Equal(t, task.KindStart, tk.Point(0).Kind())
	assert.Equal(t, oz.Line, tk.Point(0).Zone().Zone().Shape)
	assert.Equal(t, oz.Sector, tk.Point(2).Zone().Zone().Shape)
	assert.InDelta(t, 60, tk.Point(2).Zone().Zone().HalfAngle, 1e-9)

	// the glider launches behind the start line and heads for the first turn
	start := tk.Point(0).Location()
	launch := launchPoint(tk)
	assert.InDelta(t, 2000, geo.Distance(start, launch), 1)
	assert.Equal(t, tk.Point(1).Target(), steerTarget(tk))
}

func TestBuildTask_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"UnknownMode", func(c *config.Config) { c.Task.AdvanceMode = "sometimes" }},
		{"UnknownKind", func(c *config.Config) { c.Task.Points[1].Kind = "turn" }},
		{"UnknownShape", func(c *config.Config) { c.Task.Points[1].Zone.Shape = "triangle" }},
		{"EmptyCylinder", func(c *config.Config) { c.Task.Points[1].Zone.Radius = 0 }},
		{"FinishFirst", func(c *config.Config) { c.Task.Points[0].Kind = "finish" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			polar, err := buildPolar(cfg.Polar, cfg.Glide.MC)
			require.NoError(t, err)
			_, err = buildTask(cfg, polar)
			assert.Error(t, err)
		})
	}
}

func TestCheckZones(t *testing.T) {
	for _, shape := range []string{"cylinder", "sector", "keyhole", "quadrant"} {
		t.Run(shape, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Task.Points[1].Zone.Shape = shape
			cfg.Task.Points[1].Zone.Opening = 90
			polar, err := buildPolar(cfg.Polar, cfg.Glide.MC)
			require.NoError(t, err)
			tk, err := buildTask(cfg, polar)
			require.NoError(t, err)
			assert.NoError(t, checkZones(tk))
		})
	}

	cfg := config.DefaultConfig()
	polar, err := buildPolar(cfg.Polar, cfg.Glide.MC)
	require.NoError(t, err)
	tk, err := buildTask(cfg, polar)
	require.NoError(t, err)
	tk.Point(1).Zone().Zone().Radius = 0
	assert.ErrorContains(t, checkZones(tk), "Langenthal")
}

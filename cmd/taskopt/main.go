// Command taskopt flies a simulated glider around the configured task and
// reports how the target optimiser placed the area targets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"soartask/pkg/config"
	"soartask/pkg/logging"
	"soartask/pkg/sim"
	"soartask/pkg/task"
	"soartask/pkg/tracker"
	"soartask/pkg/version"
)

var (
	configPath = flag.String("config", "configs/taskopt.yaml", "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	maxTicks   = flag.Int("ticks", 0, "Override sim.max_ticks")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *maxTicks, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, ticks int, out io.Writer) error {
	appCfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if ticks > 0 {
		appCfg.Sim.MaxTicks = ticks
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()
	logging.EnableTrace = appCfg.Optimizer.Trace

	slog.Info("taskopt started", "version", version.Version, "config", path)

	sum, err := fly(ctx, appCfg)
	if err != nil {
		return err
	}
	sum.print(out)
	return nil
}

// summary is what a flight achieved.
type summary struct {
	Ticks      int
	Started    bool
	Finished   bool
	Active     int
	Points     []string
	Targets    []string
	Elapsed    time.Duration
	Travelled  float64 // m
	Planned    float64 // m
	Speed      float64 // m/s
	Flown      float64 // m
	Achieved   float64 // m/s, filtered rate of remaining distance
	Instant    float64 // m/s
	TaskVario  float64 // m/s
	Stage      string
	LastEvent  string
	Cancelled  bool
	RangeSet   bool
	FinalRange float64
	Searches   map[string]tracker.SearchStats
}

// fly runs the simulated glider against the task until it finishes, the
// tick budget runs out or ctx is cancelled.
func fly(ctx context.Context, cfg *config.Config) (*summary, error) {
	polar, err := buildPolar(cfg.Polar, cfg.Glide.MC)
	if err != nil {
		return nil, fmt.Errorf("failed to build polar: %w", err)
	}
	t, err := buildTask(cfg, polar)
	if err != nil {
		return nil, fmt.Errorf("failed to build task: %w", err)
	}
	if err := preflight(ctx, t, polar, cfg.Sim.StartAltitude); err != nil {
		return nil, err
	}

	glider := sim.NewGlider(sim.Config{
		Start:           launchPoint(t),
		StartAltitude:   cfg.Sim.StartAltitude,
		Wind:            cfg.Glide.Wind,
		ThermalSpacing:  cfg.Sim.ThermalSpacing.Meters(),
		ThermalStrength: cfg.Sim.ThermalStrength,
		ThermalTop:      cfg.Sim.ThermalTop,
		Seed:            cfg.Sim.Seed,
	}, polar)
	defer glider.Close()

	var client sim.Client = glider
	mgr := task.NewManager(t, task.OptimizerSettings{
		Enabled:   cfg.Optimizer.Enabled,
		Tolerance: cfg.Optimizer.Tolerance,
	})
	slog.Info("task loaded",
		"id", t.ID().String(),
		"points", t.Len(),
		"mode", t.Settings().AdvanceMode.String(),
		"planned_km", fmt.Sprintf("%.1f", t.PlannedDistance()/1000))

	sum := &summary{}
	tick := cfg.Sim.Tick.Std()
	for sum.Ticks < cfg.Sim.MaxTicks {
		state, err := client.GetState(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				sum.Cancelled = true
				break
			}
			return nil, fmt.Errorf("sim: %w", err)
		}

		res := mgr.Update(state)
		sum.Ticks++
		sum.Instant = res.InstantSpeed
		if res.RangeSet {
			sum.RangeSet, sum.FinalRange = true, res.TargetRange
		}
		if res.Finished {
			break
		}
		pilotArm(t)

		glider.SetFinalGlide(res.Solution.IsFinalGlide())
		client.Step(tick, steerTarget(t))
	}

	stats := t.Stats()
	sum.Started = stats.Started
	sum.Finished = stats.Finished
	sum.Active = t.ActiveIndex()
	if last, err := client.GetState(context.Background()); err == nil && stats.Started {
		sum.Elapsed = stats.Elapsed(last.Time)
	}
	if stats.Travelled.IsDefined() {
		sum.Travelled = stats.Travelled.Distance()
		sum.Speed = stats.Travelled.Speed()
	}
	if stats.Planned.IsDefined() {
		sum.Planned = stats.Planned.Distance()
	}
	if stats.Remaining.IsDefined() {
		sum.Achieved = stats.Remaining.SpeedIncremental()
	}
	sum.TaskVario = stats.Vario.Value()
	for i := 0; i < t.Len(); i++ {
		p := t.Point(i)
		sum.Points = append(sum.Points, p.Name())
		if p.Kind() == task.KindAAT {
			tg := p.Target()
			sum.Targets = append(sum.Targets, fmt.Sprintf("%s %.4f,%.4f", p.Name(), tg.Lat, tg.Lon))
		}
	}
	sum.Flown = glider.DistanceFlown()
	sum.Stage = sim.FormatStage(glider.Stage())
	sum.LastEvent = logging.GlobalEventCapture.GetLastLine()
	sum.Searches = mgr.Tracker().Snapshot()

	slog.Info("flight ended",
		"ticks", sum.Ticks,
		"finished", sum.Finished,
		"elapsed", sum.Elapsed.Round(time.Second))
	return sum, nil
}

// pilotArm arms the advance ahead of every fixed point, the way a pilot
// presses arm before crossing the line. Area points are left to advance
// near their target.
func pilotArm(t *task.OrderedTask) {
	adv := t.Advance()
	tp := t.ActivePoint()
	if adv.IsArmed() || tp == nil {
		return
	}
	switch tp.Kind() {
	case task.KindStart, task.KindAST:
		adv.SetArmed(true)
		slog.Info("advance armed", "point", tp.Name())
	}
}

func (s *summary) print(w io.Writer) {
	fmt.Fprintf(w, "ticks:      %d\n", s.Ticks)
	fmt.Fprintf(w, "started:    %v\n", s.Started)
	fmt.Fprintf(w, "finished:   %v\n", s.Finished)
	if s.Active < len(s.Points) {
		fmt.Fprintf(w, "active:     %s (%d/%d)\n", s.Points[s.Active], s.Active+1, len(s.Points))
	}
	fmt.Fprintf(w, "elapsed:    %s\n", s.Elapsed.Round(time.Second))
	fmt.Fprintf(w, "planned:    %.1f km\n", s.Planned/1000)
	fmt.Fprintf(w, "travelled:  %.1f km\n", s.Travelled/1000)
	fmt.Fprintf(w, "speed:      %.1f km/h\n", s.Speed*3.6)
	fmt.Fprintf(w, "flown:      %.1f km\n", s.Flown/1000)
	fmt.Fprintf(w, "achieved:   %.1f km/h (instant %.1f km/h)\n", s.Achieved*3.6, s.Instant*3.6)
	fmt.Fprintf(w, "task vario: %+.1f m/s\n", s.TaskVario)
	if s.RangeSet {
		fmt.Fprintf(w, "range:      %+.2f\n", s.FinalRange)
	}
	for _, tg := range s.Targets {
		fmt.Fprintf(w, "target:     %s\n", tg)
	}
	for _, kind := range []string{tracker.KindTarget, tracker.KindRange} {
		if st, ok := s.Searches[kind]; ok {
			fmt.Fprintf(w, "%-11s %d runs, %d solved, %d infeasible, %d skipped\n",
				kind+":", st.Runs(), st.Solved, st.Infeasible, st.Skipped)
		}
	}
	fmt.Fprintf(w, "stage:      %s\n", s.Stage)
	if s.LastEvent != "" {
		fmt.Fprintf(w, "last event: %s\n", s.LastEvent)
	}
	if s.Cancelled {
		fmt.Fprintln(w, "cancelled")
	}
}

package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"soartask/pkg/geo"
	"soartask/pkg/glide"
	"soartask/pkg/model"
	"soartask/pkg/rand"
)

const (
	// circleTime is the duration of one thermal turn.
	circleTime = 30 * time.Second
	// circlingSpeedFactor scales best L/D speed to the circling airspeed.
	circlingSpeedFactor = 0.85
	// minCruiseHeight (m MSL) below which the glider takes any lift.
	minCruiseHeight = 300.0
)

// Config holds the simulated weather and starting conditions.
type Config struct {
	Start         geo.Point
	StartAltitude float64 // m MSL
	StartTime     time.Time
	Wind          model.Wind

	ThermalSpacing  float64 // m of cruise between thermals on average
	ThermalStrength float64 // m/s achieved climb
	ThermalTop      float64 // m MSL
	Seed            int64
}

// Glider implements Client with a deterministic tick-driven glider: it
// cruises toward the target at MacCready speed, sinks per the polar, and
// circles in thermals met every ThermalSpacing meters.
type Glider struct {
	mu     sync.Mutex
	polar  *glide.GlidePolar
	config Config
	state  model.AircraftState
	closed bool

	circling      bool
	finalGlide    bool
	heading       float64
	toNextLift    float64
	distanceFlown float64
	rng           *rand.Rand
	trackBuf      *geo.TrackBuffer
	vsBuf         *VerticalSpeedBuffer
	stages        *StageMachine
}

// NewGlider creates a simulated glider.
func NewGlider(cfg Config, polar *glide.GlidePolar) *Glider {
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)
	}
	g := &Glider{
		polar:  polar,
		config: cfg,
		state: model.AircraftState{
			Location: cfg.Start,
			Altitude: cfg.StartAltitude,
			Time:     cfg.StartTime,
		},
		rng:      rand.New(cfg.Seed),
		trackBuf: geo.NewTrackBuffer(5),
		vsBuf:    NewVerticalSpeedBuffer(5 * time.Second),
		stages:   NewStageMachine(),
	}
	g.trackBuf.SetMinSpacing(10)
	g.toNextLift = g.nextLift()
	return g
}

// GetState returns the current state of the simulated aircraft.
func (g *Glider) GetState(ctx context.Context) (model.AircraftState, error) {
	if err := ctx.Err(); err != nil {
		return model.AircraftState{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return model.AircraftState{}, ErrClosed
	}
	return g.state, nil
}

// Stage returns the classified flight phase.
func (g *Glider) Stage() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stages.Current()
}

// DistanceFlown returns the ground distance (m) covered so far.
func (g *Glider) DistanceFlown() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.distanceFlown
}

// SetFinalGlide tells the stage classifier whether the task is on final glide.
func (g *Glider) SetFinalGlide(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.finalGlide = v
}

// Close stops the glider; later queries fail with ErrClosed.
func (g *Glider) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

// Step advances the simulation by dt steering toward target.
func (g *Glider) Step(dt time.Duration, target geo.Point) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || dt <= 0 {
		return
	}
	sec := dt.Seconds()

	var airspeed float64
	if g.circling {
		airspeed = g.polar.VBestLD() * circlingSpeedFactor
		g.heading = geo.NormalizeBearing(g.heading + 360*sec/circleTime.Seconds())
		g.state.Altitude += g.config.ThermalStrength * sec
		if g.state.Altitude >= g.config.ThermalTop {
			g.state.Altitude = g.config.ThermalTop
			g.circling = false
			g.toNextLift = g.nextLift()
		}
	} else {
		g.heading = geo.Bearing(g.state.Location, target)
		airspeed = g.polar.SpeedToFly(g.config.Wind.HeadWind(g.heading))
		g.state.Altitude -= g.polar.SinkRate(airspeed) * sec
	}

	// air vector plus drift; the wind blows from its bearing
	h := g.heading * math.Pi / 180
	w := g.config.Wind.Bearing * math.Pi / 180
	north := airspeed*math.Cos(h) - g.config.Wind.Speed*math.Cos(w)
	east := airspeed*math.Sin(h) - g.config.Wind.Speed*math.Sin(w)
	groundSpeed := math.Hypot(north, east)
	dist := groundSpeed * sec
	if dist > 0 {
		course := math.Atan2(east, north) * 180 / math.Pi
		g.state.Location = geo.DestinationPoint(g.state.Location, dist, course)
	}
	g.distanceFlown += dist

	if !g.circling {
		g.toNextLift -= dist
		if g.toNextLift <= 0 || g.state.Altitude < minCruiseHeight {
			g.circling = g.config.ThermalStrength > 0 && g.state.Altitude < g.config.ThermalTop
			if !g.circling {
				g.toNextLift = g.nextLift()
			}
		}
	}

	g.state.Time = g.state.Time.Add(dt)
	g.state.GroundSpeed = groundSpeed
	g.state.Track = g.trackBuf.Push(g.state.Location, g.heading)
	g.state.Vario = g.vsBuf.Update(g.state.Time, g.state.Altitude)
	g.stages.Update(g.state, g.finalGlide)
}

// nextLift draws the cruise distance to the next thermal.
func (g *Glider) nextLift() float64 {
	if g.config.ThermalSpacing <= 0 {
		return math.Inf(1)
	}
	return g.config.ThermalSpacing * g.rng.Range(0.5, 1.5)
}

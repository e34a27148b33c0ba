package task

import (
	"fmt"
	"log/slog"
	"time"

	"soartask/pkg/glide"
	"soartask/pkg/logging"
	"soartask/pkg/model"
	"soartask/pkg/tracker"
)

// OptimizerSettings controls target optimisation in the manager.
type OptimizerSettings struct {
	Enabled   bool
	Tolerance float64
}

// UpdateResult reports what one navigation tick did.
type UpdateResult struct {
	Active   int
	Entered  bool
	Exited   bool
	Advanced bool
	Started  bool
	Finished bool

	// TargetParam is the isoline parameter chosen this tick, or NoOptimization.
	TargetParam float64
	// TargetRange is the range chosen for the minimum time when RangeSet is true.
	TargetRange float64
	RangeSet    bool

	Solution     glide.GlideResult
	InstantSpeed float64
}

// Manager runs an ordered task against a stream of aircraft states.
type Manager struct {
	task      *OrderedTask
	optimizer OptimizerSettings

	remainingSpeed *IncrementalSpeedComputer
	travelledSpeed *IncrementalSpeedComputer
	distanceStats  DistanceStatComputer
	vario          TaskVarioComputer

	last      *model.AircraftState
	paramHint float64
	rangeHint float64
	logger    *slog.Logger
	tracker   *tracker.Tracker

	// rangeDue asks for a minimum time range search on the next tick
	rangeDue bool
}

// NewManager creates a manager for task.
func NewManager(task *OrderedTask, opt OptimizerSettings) *Manager {
	return &Manager{
		task:           task,
		optimizer:      opt,
		remainingSpeed: NewIncrementalSpeedComputer(false),
		travelledSpeed: NewIncrementalSpeedComputer(true),
		paramHint:      0.5,
		logger:         slog.With("task", task.ID().String()),
		tracker:        tracker.New(),
	}
}

// Tracker returns the optimizer outcome counters.
func (m *Manager) Tracker() *tracker.Tracker {
	return m.tracker
}

// Task returns the managed task.
func (m *Manager) Task() *OrderedTask {
	return m.task
}

// Reset restarts the task and forgets the aircraft history.
func (m *Manager) Reset() {
	m.task.Reset()
	m.tracker.Reset()
	m.remainingSpeed.Reset()
	m.travelledSpeed.Reset()
	m.vario.Reset()
	m.last = nil
	m.paramHint = 0.5
	m.rangeHint = 0
	m.rangeDue = false
}

// Update processes one aircraft state.
func (m *Manager) Update(state model.AircraftState) UpdateResult {
	res := UpdateResult{TargetParam: NoOptimization}
	t := m.task
	tp := t.ActivePoint()
	if tp == nil {
		return res
	}
	stats := &t.stats

	res.Entered, res.Exited = tp.updateTransitions(state, m.last)
	if res.Entered || res.Exited {
		m.logger.Debug("zone transition",
			"point", tp.Name(), "entered", res.Entered, "exited", res.Exited)
	}

	if tp.kind == KindStart && res.Exited {
		stats.StartTime = state.Time
		stats.Started = true
		res.Started = true
		m.rangeDue = true
		m.logger.Info("task started", "time", state.Time.Format("15:04:05"))
		logging.LogEvent(&model.TaskEvent{Timestamp: state.Time, Type: "start", Title: tp.Name()})
	}
	if tp.kind == KindFinish && res.Entered && stats.Started && !stats.Finished {
		stats.Finished = true
		res.Finished = true
		m.logger.Info("task finished", "elapsed", stats.Elapsed(state.Time))
		logging.LogEvent(&model.TaskEvent{
			Timestamp: state.Time,
			Type:      "finish",
			Title:     tp.Name(),
			Summary:   fmt.Sprintf("elapsed %s", stats.Elapsed(state.Time).Round(time.Second)),
		})
	}

	if t.advance.CheckReadyToAdvance(tp, state, res.Entered, res.Exited) {
		m.advanceTo(t.active+1, state)
		res.Advanced = true
	} else if t.advance.NeedToArm() {
		m.logger.Debug("advance waiting for arm", "point", tp.Name())
	}
	res.Active = t.active

	m.optimize(state, &res)

	stats.Remaining.SetDistance(t.ScanDistanceRemaining(state.Location))
	planned := t.PlannedDistance()
	stats.Planned.SetDistance(planned)
	if stats.Started {
		stats.Travelled.SetDistance(max(planned-stats.Remaining.distance, 0))
	} else {
		stats.Travelled.Reset()
	}
	elapsed := stats.Elapsed(state.Time)
	m.distanceStats.CalcSpeed(&stats.Remaining, elapsed)
	m.distanceStats.CalcSpeed(&stats.Travelled, elapsed)
	m.distanceStats.CalcSpeed(&stats.Planned, elapsed)
	m.remainingSpeed.Compute(&stats.Remaining, state.Time)
	m.travelledSpeed.Compute(&stats.Travelled, state.Time)

	res.Solution = t.GlideSolution(state)
	if res.Solution.IsOk() {
		m.vario.Update(&stats.Vario, res.Solution.AltitudeDifference, state.Time)
		res.InstantSpeed = glide.InstantSpeed(state, res.Solution, t.solver.Polar)
	}

	s := state
	m.last = &s
	return res
}

func (m *Manager) advanceTo(i int, state model.AircraftState) {
	t := m.task
	from := t.ActivePoint()
	t.SetActive(i)
	t.advance.SetArmed(false)
	next := t.ActivePoint()
	next.updateTransitions(state, nil)
	m.paramHint = 0.5
	m.rangeDue = true
	m.logger.Info("task point advanced",
		"from", from.Name(),
		"to", next.Name(),
		"state", t.advance.State().String())
	logging.LogEvent(&model.TaskEvent{
		Timestamp: state.Time,
		Type:      "advance",
		Title:     next.Name(),
		Summary:   fmt.Sprintf("from %s", from.Name()),
	})
}

// optimize moves the free area targets ahead of the aircraft.
func (m *Manager) optimize(state model.AircraftState, res *UpdateResult) {
	if !m.optimizer.Enabled {
		return
	}
	t := m.task
	stats := &t.stats
	if m.rangeDue && stats.Started && t.settings.AATMinTime > 0 {
		m.rangeDue = false
		ro := NewRangeOptimizer(t, state, stats.Elapsed(state.Time), m.optimizer.Tolerance)
		if r, ok := ro.Search(m.rangeHint); ok {
			res.TargetRange, res.RangeSet = r, true
			m.rangeHint = r
			m.tracker.TrackSolved(tracker.KindRange)
		} else {
			m.tracker.TrackInfeasible(tracker.KindRange)
		}
	}

	tp := t.ActivePoint()
	if tp.kind != KindAAT || tp.IsTargetLocked() {
		return
	}
	opt := NewTargetOptimizer(t, t.active, state, m.optimizer.Tolerance)
	if !opt.Isoline().IsValid() {
		m.tracker.TrackSkipped(tracker.KindTarget)
		return
	}
	if p := opt.Search(m.paramHint); p != NoOptimization {
		res.TargetParam = p
		m.paramHint = p
		m.tracker.TrackSolved(tracker.KindTarget)
	} else {
		m.tracker.TrackInfeasible(tracker.KindTarget)
	}
}

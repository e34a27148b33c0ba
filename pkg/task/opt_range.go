package task

import (
	"log/slog"
	"time"

	"soartask/pkg/glide"
	"soartask/pkg/logging"
	"soartask/pkg/model"
	"soartask/pkg/solver"
)

// RangeOptimizer sets a common target range on every free area point so the
// estimated task time matches the area task minimum time.
type RangeOptimizer struct {
	task     *OrderedTask
	aircraft model.AircraftState
	elapsed  time.Duration
	finder   solver.ZeroFinder

	res glide.GlideResult
}

// NewRangeOptimizer prepares a search from aircraft, elapsed after the start.
func NewRangeOptimizer(task *OrderedTask, aircraft model.AircraftState, elapsed time.Duration, tolerance float64) *RangeOptimizer {
	if tolerance <= 0 {
		tolerance = defaultOptTolerance
	}
	return &RangeOptimizer{
		task:     task,
		aircraft: aircraft,
		elapsed:  elapsed,
		finder:   solver.NewZeroFinder(-1, 1, tolerance),
	}
}

// Result returns the glide solution of the last evaluation.
func (o *RangeOptimizer) Result() glide.GlideResult {
	return o.res
}

// freePoints returns the area points still ahead whose targets may move.
func (o *RangeOptimizer) freePoints() []*Point {
	var free []*Point
	for _, p := range o.task.points[o.task.active:] {
		if p.kind == KindAAT && !p.targetLocked {
			free = append(free, p)
		}
	}
	return free
}

// Search returns the range in [-1,1] meeting the minimum time, or the
// nearest achievable end of the interval. It returns false with the targets
// untouched when there is nothing to move, no minimum time, or the glide is
// infeasible.
func (o *RangeOptimizer) Search(guess float64) (float64, bool) {
	minTime := o.task.settings.AATMinTime
	free := o.freePoints()
	if minTime <= 0 || len(free) == 0 {
		return 0, false
	}

	o.task.TargetSave()
	r := o.finder.FindZero(func(r float64) float64 {
		return o.f(free, r, minTime)
	}, guess)
	o.f(free, r, minTime)
	if !o.res.IsOk() {
		o.task.TargetRestore()
		o.task.ScanDistanceRemaining(o.aircraft.Location)
		logging.TraceDefault("target range infeasible", "validity", o.res.Validity)
		return 0, false
	}
	slog.Debug("target range set", "range", r, "remaining", o.res.TimeElapsed)
	return r, true
}

// f places the free targets at r and returns the total time error in seconds.
func (o *RangeOptimizer) f(free []*Point, r float64, minTime time.Duration) float64 {
	for _, p := range free {
		p.SetTargetRange(r)
	}
	o.task.ScanDistanceRemaining(o.aircraft.Location)
	o.res = o.task.GlideSolution(o.aircraft)
	if !o.res.IsOk() {
		// pull targets in when the task is out of reach
		return infeasiblePenalty
	}
	return (o.elapsed + o.res.TimeElapsed - minTime).Seconds()
}

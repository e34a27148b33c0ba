package task

import (
	"log/slog"
	"math"

	"soartask/pkg/glide"
	"soartask/pkg/logging"
	"soartask/pkg/model"
	"soartask/pkg/solver"
)

// NoOptimization is returned by the optimizers when the target was not moved.
const NoOptimization = -1.0

const (
	defaultOptTolerance = 1e-3
	// infeasiblePenalty (s) is the cost of a candidate with no glide solution.
	infeasiblePenalty = 1e9
	// scanSamples is the number of isoline steps tried when the direct
	// search ends on an infeasible target.
	scanSamples = 40
)

// TargetOptimizer moves the target of one area point along its isoline to
// minimise the time for the rest of the task.
type TargetOptimizer struct {
	task     *OrderedTask
	index    int
	aircraft model.AircraftState
	iso      *IsolineSegment
	finder   solver.ZeroFinder

	res glide.GlideResult
}

// NewTargetOptimizer prepares a search for point index of task as seen from aircraft.
// The isoline is taken through the point's current target.
func NewTargetOptimizer(task *OrderedTask, index int, aircraft model.AircraftState, tolerance float64) *TargetOptimizer {
	if tolerance <= 0 {
		tolerance = defaultOptTolerance
	}
	tp := task.points[index]
	iso := NewIsolineSegment(tp.zone.Zone(),
		task.previousLocation(index), tp.Target(), task.nextLocation(index))
	return &TargetOptimizer{
		task:     task,
		index:    index,
		aircraft: aircraft,
		iso:      iso,
		finder:   solver.NewZeroFinder(0, 1, tolerance),
	}
}

// Isoline returns the segment searched over.
func (o *TargetOptimizer) Isoline() *IsolineSegment {
	return o.iso
}

// Result returns the glide solution of the last evaluation.
func (o *TargetOptimizer) Result() glide.GlideResult {
	return o.res
}

// Search returns the isoline parameter giving the shortest remaining time,
// leaving the target there. It returns NoOptimization with the target
// untouched when the target is locked, the isoline is degenerate, or no
// feasible solution exists.
func (o *TargetOptimizer) Search(guess float64) float64 {
	tp := o.task.points[o.index]
	if tp.IsTargetLocked() {
		return NoOptimization
	}
	if !o.iso.IsValid() {
		return NoOptimization
	}

	o.task.TargetSave()
	t := o.finder.FindMin(o.f, guess)
	if !o.valid(t) {
		if scanned, ok := o.scan(); ok {
			return scanned
		}
		o.task.TargetRestore()
		o.task.ScanDistanceRemaining(o.aircraft.Location)
		logging.TraceDefault("target search infeasible", "point", tp.Name(), "validity", o.res.Validity)
		return NoOptimization
	}
	slog.Debug("target optimised",
		"point", tp.Name(),
		"t", t,
		"isoline_m", int(o.iso.Length()),
		"time", o.res.TimeElapsed)
	return t
}

// f sets the target at p and returns the remaining time in seconds, or
// infeasiblePenalty when the task cannot be completed from there.
func (o *TargetOptimizer) f(p float64) float64 {
	o.setTarget(p)
	o.res = o.task.GlideSolution(o.aircraft)
	logging.TraceDefault("target trial", "t", p, "time", o.res.TimeElapsed, "ok", o.res.IsOk())
	if !o.res.IsOk() {
		return infeasiblePenalty
	}
	return o.res.TimeElapsed.Seconds()
}

// scan steps along the whole isoline for the fastest feasible sample and
// refines the search around it. It leaves the target on the result.
func (o *TargetOptimizer) scan() (float64, bool) {
	best, bestTime := NoOptimization, math.Inf(1)
	for i := 0; i <= scanSamples; i++ {
		p := float64(i) / scanSamples
		if v := o.f(p); o.res.IsOk() && v < bestTime {
			best, bestTime = p, v
		}
	}
	if best == NoOptimization {
		return NoOptimization, false
	}

	const step = 1.0 / scanSamples
	local := solver.NewZeroFinder(math.Max(best-step, 0), math.Min(best+step, 1), o.finder.Tolerance)
	t := local.FindMin(o.f, best)
	if !o.valid(t) || o.res.TimeElapsed.Seconds() > bestTime {
		t = best
		o.valid(t)
	}
	slog.Debug("target optimised by scan", "point", o.task.points[o.index].Name(), "t", t)
	return t, true
}

func (o *TargetOptimizer) valid(p float64) bool {
	o.f(p)
	return o.res.IsOk()
}

func (o *TargetOptimizer) setTarget(p float64) {
	loc := o.iso.Parametric(solver.Clamp(p, o.finder.XMin, o.finder.XMax))
	o.task.points[o.index].SetTarget(loc)
	o.task.ScanDistanceRemaining(o.aircraft.Location)
}

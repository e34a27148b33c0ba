package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"soartask/pkg/geo"
	"soartask/pkg/glide"
	"soartask/pkg/model"
)

var (
	// ErrNoTaskPoints is returned when an operation needs points and the task has none.
	ErrNoTaskPoints = errors.New("task has no points")
	// ErrInvalidTask is returned when the point sequence is not start, turns, finish.
	ErrInvalidTask = errors.New("invalid task point sequence")
)

// Settings configures an ordered task.
type Settings struct {
	AdvanceMode Mode
	// AATMinTime is the minimum task time for area tasks; zero disables it.
	AATMinTime time.Duration
	// CloseToTarget (m) lets an area point advance near its target without arming.
	CloseToTarget float64
}

// OrderedTask is a sequence of task points flown in order. It is owned by a
// single navigation goroutine.
type OrderedTask struct {
	id       uuid.UUID
	settings Settings
	points   []*Point
	active   int

	solver  glide.Solver
	advance *Advance
	stats   Stats

	saved []geo.Point
}

// NewOrderedTask creates an empty task solved with solver.
func NewOrderedTask(settings Settings, solver glide.Solver) *OrderedTask {
	t := &OrderedTask{
		id:       uuid.New(),
		settings: settings,
		solver:   solver,
		advance:  NewAdvance(settings.AdvanceMode, settings.CloseToTarget),
	}
	t.stats.Reset()
	return t
}

// ID returns the task identifier used in logs.
func (t *OrderedTask) ID() uuid.UUID { return t.id }

// Settings returns the task settings.
func (t *OrderedTask) Settings() Settings { return t.settings }

// Advance returns the advance state machine.
func (t *OrderedTask) Advance() *Advance { return t.advance }

// Stats returns the task statistics.
func (t *OrderedTask) Stats() *Stats { return &t.stats }

// Solver returns the glide solver.
func (t *OrderedTask) Solver() glide.Solver { return t.solver }

// Len returns the number of points.
func (t *OrderedTask) Len() int { return len(t.points) }

// Point returns the point at index i.
func (t *OrderedTask) Point(i int) *Point { return t.points[i] }

// ActiveIndex returns the index of the active point.
func (t *OrderedTask) ActiveIndex() int { return t.active }

// ActivePoint returns the active point, nil for an empty task.
func (t *OrderedTask) ActivePoint() *Point {
	if len(t.points) == 0 {
		return nil
	}
	return t.points[t.active]
}

// Append adds a point and relinks every zone to its neighbours.
func (t *OrderedTask) Append(p *Point) {
	t.points = append(t.points, p)
	t.relink()
}

func (t *OrderedTask) relink() {
	for i, p := range t.points {
		var prev, next *Point
		if i > 0 {
			prev = t.points[i-1]
		}
		if i+1 < len(t.points) {
			next = t.points[i+1]
		}
		// typed nils must not reach the interface
		switch {
		case prev != nil && next != nil:
			p.zone.SetLegs(prev, next)
		case prev != nil:
			p.zone.SetLegs(prev, nil)
		case next != nil:
			p.zone.SetLegs(nil, next)
		}
	}
}

// Validate checks the point sequence: a start, any turnpoints, a finish.
func (t *OrderedTask) Validate() error {
	n := len(t.points)
	if n == 0 {
		return ErrNoTaskPoints
	}
	if n < 2 || t.points[0].kind != KindStart || t.points[n-1].kind != KindFinish {
		return ErrInvalidTask
	}
	for _, p := range t.points[1 : n-1] {
		if p.kind != KindAST && p.kind != KindAAT {
			return fmt.Errorf("%w: %s is a %s in the middle", ErrInvalidTask, p.name, p.kind)
		}
	}
	return nil
}

// SetActive makes point i active and updates the advance phase.
func (t *OrderedTask) SetActive(i int) {
	if i < 0 || i >= len(t.points) {
		return
	}
	t.active = i
	t.advance.SetActivePhase(i == 0)
}

// Reset restarts the task as if never flown.
func (t *OrderedTask) Reset() {
	t.active = 0
	t.advance.Reset()
	t.stats.Reset()
	for _, p := range t.points {
		p.resetTransitions()
	}
}

// TargetSave copies every area target aside.
func (t *OrderedTask) TargetSave() {
	t.saved = t.saved[:0]
	for _, p := range t.points {
		t.saved = append(t.saved, p.target)
	}
}

// TargetRestore copies the saved targets back, ignoring locks.
func (t *OrderedTask) TargetRestore() {
	if len(t.saved) != len(t.points) {
		return
	}
	for i, p := range t.points {
		p.target = t.saved[i]
	}
}

// ScanDistanceRemaining updates every remaining leg from location through the
// targets to the finish and returns the total (m).
func (t *OrderedTask) ScanDistanceRemaining(location geo.Point) float64 {
	total := 0.0
	from := location
	for i, p := range t.points {
		if i < t.active {
			p.legRemaining = geo.Vector{}
			continue
		}
		p.legRemaining = geo.NewVector(from, p.Target())
		total += p.legRemaining.Distance
		from = p.Target()
	}
	return total
}

// PlannedDistance returns the distance (m) from the start through every target to the finish.
func (t *OrderedTask) PlannedDistance() float64 {
	total := 0.0
	for i := 1; i < len(t.points); i++ {
		total += geo.Distance(t.points[i-1].Target(), t.points[i].Target())
	}
	return total
}

// GlideSolution solves the remaining legs of the last scan from state.
func (t *OrderedTask) GlideSolution(state model.AircraftState) glide.GlideResult {
	legs := make([]glide.Leg, 0, len(t.points)-t.active)
	for _, p := range t.points[t.active:] {
		legs = append(legs, glide.Leg{
			Vector:             p.legRemaining,
			MinArrivalAltitude: p.elevation,
		})
	}
	return t.solver.SolveTask(state, legs)
}

// previousLocation returns where the leg into point i starts.
func (t *OrderedTask) previousLocation(i int) geo.Point {
	if i == 0 {
		return t.points[0].Location()
	}
	return t.points[i-1].Target()
}

// nextLocation returns where the leg out of point i ends.
func (t *OrderedTask) nextLocation(i int) geo.Point {
	if i+1 >= len(t.points) {
		return t.points[i].Target()
	}
	return t.points[i+1].Target()
}

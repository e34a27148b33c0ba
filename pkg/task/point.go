package task

import (
	"fmt"

	"soartask/pkg/geo"
	"soartask/pkg/model"
	"soartask/pkg/oz"
)

// PointKind is the role of a point in an ordered task.
type PointKind int

const (
	KindStart PointKind = iota
	// KindAST is a fixed turnpoint.
	KindAST
	// KindAAT is an area turnpoint with a movable target.
	KindAAT
	KindFinish
)

func (k PointKind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindAST:
		return "ast"
	case KindAAT:
		return "aat"
	case KindFinish:
		return "finish"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a config name to a PointKind.
func ParseKind(s string) (PointKind, error) {
	for k := KindStart; k <= KindFinish; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return KindAST, fmt.Errorf("unknown task point kind %q", s)
}

// Point is one ordered task point with its observation zone.
type Point struct {
	name      string
	kind      PointKind
	location  geo.Point
	elevation float64
	zone      *oz.Client

	target       geo.Point
	targetLocked bool

	// MaxStartHeight (m MSL) above which a start zone counts as left
	// through its top. Zero disables the check.
	MaxStartHeight float64

	inside     bool
	hasEntered bool
	hasExited  bool

	// leg from the previous position to this point's target, set by the last scan
	legRemaining geo.Vector
}

// NewPoint creates a task point. The target starts at the waypoint.
func NewPoint(name string, kind PointKind, location geo.Point, elevation float64, zone *oz.Zone) *Point {
	return &Point{
		name:      name,
		kind:      kind,
		location:  location,
		elevation: elevation,
		zone:      oz.NewClient(zone),
		target:    location,
	}
}

func (p *Point) Name() string { return p.name }

func (p *Point) Kind() PointKind { return p.kind }

// Elevation returns the ground elevation (m MSL) used as the arrival floor.
func (p *Point) Elevation() float64 { return p.elevation }

// Location returns the waypoint location.
func (p *Point) Location() geo.Point { return p.location }

// Zone returns the observation zone client.
func (p *Point) Zone() *oz.Client { return p.zone }

// Target returns where the point is aimed at. Only area points have a target
// apart from the waypoint.
func (p *Point) Target() geo.Point {
	if p.kind == KindAAT {
		return p.target
	}
	return p.location
}

// SetTarget moves the target of an area point unless it is locked.
func (p *Point) SetTarget(loc geo.Point) {
	if p.kind != KindAAT || p.targetLocked {
		return
	}
	p.target = loc
}

// SetTargetRange places the target along the zone axis: 0 is the waypoint,
// 1 the furthest point and -1 the nearest point of the zone.
func (p *Point) SetTargetRange(r float64) {
	z := p.zone.Zone()
	switch {
	case r >= 0:
		p.SetTarget(geo.Interpolate(z.Reference, z.LocationMax(), r))
	default:
		p.SetTarget(geo.Interpolate(z.Reference, z.LocationMin(), -r))
	}
}

// LockTarget fixes the target against optimisation.
func (p *Point) LockTarget(locked bool) {
	p.targetLocked = locked
}

// IsTargetLocked reports whether the target is fixed by the pilot.
func (p *Point) IsTargetLocked() bool {
	return p.targetLocked
}

// HasEntered reports whether the aircraft entered the zone since the last reset.
func (p *Point) HasEntered() bool { return p.hasEntered }

// HasExited reports whether the aircraft left the zone after entering it.
func (p *Point) HasExited() bool { return p.hasExited }

// LegRemaining returns the leg vector computed by the last distance scan.
func (p *Point) LegRemaining() geo.Vector { return p.legRemaining }

// IsCloseToTarget reports whether the aircraft is within threshold meters of the target.
func (p *Point) IsCloseToTarget(state model.AircraftState, threshold float64) bool {
	if threshold <= 0 {
		return false
	}
	return geo.Distance(state.Location, p.Target()) <= threshold
}

// isInside reports whether the aircraft is in the zone, treating a start
// left through its top as outside.
func (p *Point) isInside(state model.AircraftState) bool {
	if !p.zone.IsInSector(state.Location) {
		return false
	}
	if p.kind == KindStart && p.MaxStartHeight > 0 && p.zone.CanStartThroughTop() {
		return state.Altitude <= p.MaxStartHeight
	}
	return true
}

// updateTransitions records zone entry and exit for a new fix. previous is
// nil on the first fix. The inside flag always follows the geometry; an
// entry or exit event only fires when the zone's transition constraint
// accepts the step from previous to state.
func (p *Point) updateTransitions(state model.AircraftState, previous *model.AircraftState) (entered, exited bool) {
	inside := p.isInside(state)
	if inside {
		p.hasEntered = true
	}
	if previous == nil || inside == p.inside {
		p.inside = inside
		return false, false
	}
	p.inside = inside

	crossedTop := p.kind == KindStart && p.zone.IsInSector(state.Location) && p.zone.IsInSector(previous.Location)
	if !crossedTop && !p.zone.TransitionConstraint(state.Location, previous.Location) {
		return false, false
	}
	if inside {
		return true, false
	}
	p.hasExited = true
	return false, true
}

// resetTransitions forgets entry and exit state.
func (p *Point) resetTransitions() {
	p.inside = false
	p.hasEntered = false
	p.hasExited = false
}

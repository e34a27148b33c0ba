package task

import (
	"fmt"

	"soartask/pkg/model"
)

// Mode is the pilot-selected advance policy.
type Mode int

const (
	// ModeManual never advances automatically.
	ModeManual Mode = iota
	// ModeAuto advances as soon as a point is achieved.
	ModeAuto
	// ModeArm requires arming before every advance.
	ModeArm
	// ModeArmStart requires arming before the start only.
	ModeArmStart
)

var modeNames = map[Mode]string{
	ModeManual:   "manual",
	ModeAuto:     "auto",
	ModeArm:      "arm",
	ModeArmStart: "armstart",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a config name to a Mode.
func ParseMode(s string) (Mode, error) {
	for m, n := range modeNames {
		if n == s {
			return m, nil
		}
	}
	return ModeManual, fmt.Errorf("unknown advance mode %q", s)
}

// State is the advance state shown to the pilot.
type State int

const (
	StateManual State = iota
	StateAuto
	StateStartArmed
	StateStartDisarmed
	StateTurnArmed
	StateTurnDisarmed
)

func (s State) String() string {
	switch s {
	case StateManual:
		return "MANUAL"
	case StateAuto:
		return "AUTO"
	case StateStartArmed:
		return "START_ARMED"
	case StateStartDisarmed:
		return "START_DISARMED"
	case StateTurnArmed:
		return "TURN_ARMED"
	case StateTurnDisarmed:
		return "TURN_DISARMED"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event drives the advance state table.
type Event int

const (
	EventArm Event = iota
	EventDisarm
	EventStartPhase
	EventTurnPhase
)

type transition struct {
	from  State
	event Event
}

// sticky maps every event on s back to s.
func sticky(s State) map[transition]State {
	return map[transition]State{
		{s, EventArm}:        s,
		{s, EventDisarm}:     s,
		{s, EventStartPhase}: s,
		{s, EventTurnPhase}:  s,
	}
}

var startArming = map[transition]State{
	{StateStartDisarmed, EventArm}:        StateStartArmed,
	{StateStartDisarmed, EventDisarm}:     StateStartDisarmed,
	{StateStartDisarmed, EventStartPhase}: StateStartDisarmed,
	{StateStartArmed, EventArm}:           StateStartArmed,
	{StateStartArmed, EventDisarm}:        StateStartDisarmed,
	{StateStartArmed, EventStartPhase}:    StateStartArmed,
}

func merge(tables ...map[transition]State) map[transition]State {
	out := make(map[transition]State)
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// transitions holds the (state, event) table per mode. A missing entry leaves
// the state unchanged.
var transitions = map[Mode]map[transition]State{
	ModeManual: sticky(StateManual),
	ModeAuto:   sticky(StateAuto),
	ModeArm: merge(startArming, map[transition]State{
		{StateStartDisarmed, EventTurnPhase}: StateTurnDisarmed,
		{StateStartArmed, EventTurnPhase}:    StateTurnDisarmed,
		{StateTurnDisarmed, EventArm}:        StateTurnArmed,
		{StateTurnDisarmed, EventDisarm}:     StateTurnDisarmed,
		{StateTurnDisarmed, EventStartPhase}: StateStartDisarmed,
		{StateTurnDisarmed, EventTurnPhase}:  StateTurnDisarmed,
		{StateTurnArmed, EventArm}:           StateTurnArmed,
		{StateTurnArmed, EventDisarm}:        StateTurnDisarmed,
		{StateTurnArmed, EventStartPhase}:    StateStartDisarmed,
		{StateTurnArmed, EventTurnPhase}:     StateTurnDisarmed,
	}),
	ModeArmStart: merge(startArming, map[transition]State{
		{StateStartDisarmed, EventTurnPhase}: StateAuto,
		{StateStartArmed, EventTurnPhase}:    StateAuto,
		{StateAuto, EventArm}:                StateAuto,
		{StateAuto, EventDisarm}:             StateAuto,
		{StateAuto, EventStartPhase}:         StateStartDisarmed,
		{StateAuto, EventTurnPhase}:          StateAuto,
	}),
}

func initialState(m Mode) State {
	switch m {
	case ModeAuto:
		return StateAuto
	case ModeArm, ModeArmStart:
		return StateStartDisarmed
	}
	return StateManual
}

// IsAATStateReady decides readiness for an area point: entry is mandatory,
// then either the gate is open (auto mode or armed) or the aircraft is close
// to the target.
func IsAATStateReady(gate, hasEntered, closeToTarget bool) bool {
	return hasEntered && (gate || closeToTarget)
}

// IsStateReady decides readiness for a fixed point: the qualifying
// transition happened this step and the gate is open.
func IsStateReady(gate, transitioned bool) bool {
	return gate && transitioned
}

// Advance is the task advance state machine. It is driven from the
// navigation tick and is not safe for concurrent use.
type Advance struct {
	mode         Mode
	state        State
	armed        bool
	requestArmed bool
	startPhase   bool

	// CloseToTarget is the distance (m) at which an area point counts as achieved.
	CloseToTarget float64
}

// NewAdvance creates a state machine in the start phase.
func NewAdvance(mode Mode, closeToTarget float64) *Advance {
	return &Advance{
		mode:          mode,
		state:         initialState(mode),
		startPhase:    true,
		CloseToTarget: closeToTarget,
	}
}

// Mode returns the advance policy.
func (a *Advance) Mode() Mode {
	return a.mode
}

// SetMode changes the policy and recomputes the state for the current phase.
func (a *Advance) SetMode(m Mode) {
	a.mode = m
	a.state = initialState(m)
	if !a.startPhase {
		a.fire(EventTurnPhase)
	}
	a.UpdateState()
}

// State returns the current advance state.
func (a *Advance) State() State {
	return a.state
}

// IsArmed reports whether the pilot armed the advance.
func (a *Advance) IsArmed() bool {
	return a.armed
}

// NeedToArm reports whether the point is achieved but waiting for the pilot to arm.
func (a *Advance) NeedToArm() bool {
	return a.requestArmed
}

// SetArmed forces the arm state and clears any pending request.
func (a *Advance) SetArmed(armed bool) {
	a.armed = armed
	a.requestArmed = false
	a.UpdateState()
}

// ToggleArmed flips the arm state and returns the new value.
func (a *Advance) ToggleArmed() bool {
	a.SetArmed(!a.armed)
	return a.armed
}

// UpdateState recomputes the state after an external arm change.
func (a *Advance) UpdateState() {
	if a.armed {
		a.fire(EventArm)
	} else {
		a.fire(EventDisarm)
	}
}

// SetActivePhase tells the machine whether the active point is the start.
func (a *Advance) SetActivePhase(start bool) {
	a.startPhase = start
	if start {
		a.fire(EventStartPhase)
	} else {
		a.fire(EventTurnPhase)
	}
	a.UpdateState()
}

// Reset returns to the unarmed start phase.
func (a *Advance) Reset() {
	a.armed = false
	a.requestArmed = false
	a.startPhase = true
	a.state = initialState(a.mode)
}

func (a *Advance) fire(e Event) {
	if next, ok := transitions[a.mode][transition{a.state, e}]; ok {
		a.state = next
	}
}

// gate reports whether the mode lets an achieved point advance without arming.
func (a *Advance) gate(start bool) bool {
	switch a.mode {
	case ModeAuto:
		return true
	case ModeArmStart:
		return a.armed || !start
	case ModeArm:
		return a.armed
	}
	return false
}

// transitioned reports the qualifying transition for a fixed point.
func transitioned(tp *Point, entered, exited bool) bool {
	switch tp.Kind() {
	case KindStart:
		return exited
	case KindAST:
		return entered
	}
	return false
}

// CheckReadyToAdvance decides whether the active point tp hands off to the
// next one this step. entered and exited are the transitions seen this step.
// When the point is achieved but the gate is closed, NeedToArm becomes true.
func (a *Advance) CheckReadyToAdvance(tp *Point, state model.AircraftState, entered, exited bool) bool {
	if a.armed {
		a.requestArmed = false
	}
	if a.mode == ModeManual {
		return false
	}

	start := tp.Kind() == KindStart
	gate := a.gate(start)

	var ready, achieved bool
	switch tp.Kind() {
	case KindAAT:
		near := tp.IsCloseToTarget(state, a.CloseToTarget)
		ready = IsAATStateReady(gate, tp.HasEntered(), near)
		achieved = IsAATStateReady(true, tp.HasEntered(), near)
	case KindFinish:
		return false
	default:
		t := transitioned(tp, entered, exited)
		ready = IsStateReady(gate, t)
		achieved = t
	}

	if achieved && !ready && !a.armed {
		a.requestArmed = true
	}
	return ready
}

package sim

import (
	"strings"
	"time"

	"soartask/pkg/model"
)

const (
	StageCruise     = "cruise"
	StageCircling   = "circling"
	StageFinalGlide = "final_glide"
	StageLanded     = "landed"
)

const (
	// circlingTurnRate (deg/s) separates circling from cruise turns.
	circlingTurnRate = 4.0
	// landedGroundSpeed (m/s) below which the glider is on the ground.
	landedGroundSpeed = 2.0
)

// StageMachine classifies the flight phase across ticks. A new phase must be
// seen twice in a row before it is adopted.
type StageMachine struct {
	current        string
	candidate      string
	confirmations  int
	lastTrack      float64
	lastTime       time.Time
	lastTransition map[string]time.Time
}

// NewStageMachine creates a stage machine in an uninitialized state.
func NewStageMachine() *StageMachine {
	return &StageMachine{
		lastTransition: make(map[string]time.Time),
	}
}

// Update evaluates a state and returns the current phase. finalGlide tells
// whether the task can be finished without further climbs.
func (m *StageMachine) Update(s model.AircraftState, finalGlide bool) string {
	turnRate := 0.0
	if !m.lastTime.IsZero() && s.Time.After(m.lastTime) {
		dt := s.Time.Sub(m.lastTime).Seconds()
		turnRate = abs(normalizeTurn(s.Track-m.lastTrack)) / dt
	}
	m.lastTrack, m.lastTime = s.Track, s.Time

	candidate := detectCandidate(s, turnRate, finalGlide)

	if m.current == "" {
		m.current = candidate
		m.lastTransition[m.current] = s.Time
		return m.current
	}

	switch {
	case candidate == m.current:
		m.candidate = ""
		m.confirmations = 0
	case candidate == m.candidate:
		m.confirmations++
		if m.confirmations >= 1 {
			m.current = candidate
			m.lastTransition[m.current] = s.Time
			m.candidate = ""
			m.confirmations = 0
		}
	default:
		m.candidate = candidate
		m.confirmations = 0
	}
	return m.current
}

// Current returns the adopted phase.
func (m *StageMachine) Current() string {
	return m.current
}

// GetLastTransition returns the timestamp of the last transition to the given stage.
func (m *StageMachine) GetLastTransition(stage string) time.Time {
	if m.lastTransition == nil {
		return time.Time{}
	}
	return m.lastTransition[stage]
}

func detectCandidate(s model.AircraftState, turnRate float64, finalGlide bool) string {
	switch {
	case s.GroundSpeed < landedGroundSpeed:
		return StageLanded
	case turnRate >= circlingTurnRate:
		return StageCircling
	case finalGlide:
		return StageFinalGlide
	}
	return StageCruise
}

func normalizeTurn(d float64) float64 {
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return d
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// FormatStage returns a human-readable title for the stage.
func FormatStage(s string) string {
	if s == "" {
		return "Unknown"
	}
	// final_glide -> Final Glide
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[0:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

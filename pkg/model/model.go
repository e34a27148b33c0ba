// Package model holds the data shared between the navigation pipeline and the task engine.
package model

import (
	"math"
	"time"

	"soartask/pkg/geo"
)

// AircraftState is a snapshot of the aircraft produced once per navigation tick.
// Consumers treat it as read-only.
type AircraftState struct {
	Location    geo.Point
	Track       float64 // Degrees true
	GroundSpeed float64 // m/s
	Vario       float64 // m/s, positive up
	Altitude    float64 // Meters MSL
	Time        time.Time
}

// Wind describes the wind the aircraft is flying in.
type Wind struct {
	Speed   float64 `yaml:"speed"`   // m/s
	Bearing float64 `yaml:"bearing"` // Degrees, direction the wind blows from
}

// IsZero reports whether there is no wind.
func (w Wind) IsZero() bool {
	return w.Speed <= 0
}

// HeadWind returns the wind component opposing travel on the given bearing.
// Negative values are tail wind.
func (w Wind) HeadWind(bearing float64) float64 {
	if w.IsZero() {
		return 0
	}
	return w.Speed * math.Cos((w.Bearing-bearing)*math.Pi/180.0)
}

// CrossWind returns the wind component perpendicular to the given bearing.
func (w Wind) CrossWind(bearing float64) float64 {
	if w.IsZero() {
		return 0
	}
	return w.Speed * math.Sin((w.Bearing-bearing)*math.Pi/180.0)
}

// TaskEvent is a task milestone written to the event log.
type TaskEvent struct {
	Timestamp time.Time
	Type      string // start, advance, finish
	Title     string
	Summary   string
}

// Package sim provides the aircraft state source for the task engine: a
// simulated glider flying the task at MacCready speed.
package sim

import (
	"context"
	"errors"
	"time"

	"soartask/pkg/geo"
	"soartask/pkg/model"
)

var (
	// ErrClosed is returned when a closed client is queried.
	ErrClosed = errors.New("simulator closed")
)

// Client defines the interface for aircraft state sources.
type Client interface {
	// GetState returns the current aircraft state.
	GetState(ctx context.Context) (model.AircraftState, error)
	// Step advances the simulation by dt, steering toward target.
	Step(dt time.Duration, target geo.Point)
	// Close releases the client.
	Close() error
}

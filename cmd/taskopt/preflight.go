package main

import (
	"context"
	"errors"
	"fmt"

	"soartask/pkg/geo"
	"soartask/pkg/glide"
	"soartask/pkg/model"
	"soartask/pkg/probe"
	"soartask/pkg/rand"
	"soartask/pkg/task"
)

var errNoAreas = errors.New("aat_min_time is set but the task has no area points")

// preflight checks the built task before the glider is launched.
func preflight(ctx context.Context, t *task.OrderedTask, polar *glide.GlidePolar, startAltitude float64) error {
	launch := launchPoint(t)
	probes := []probe.Probe{
		{
			Name:     "polar",
			Critical: true,
			Check: func(context.Context) error {
				if ld := polar.BestLD(); ld < 10 || ld > 80 {
					return fmt.Errorf("implausible best glide ratio %.1f", ld)
				}
				return nil
			},
		},
		{
			Name:     "zones",
			Critical: true,
			Check: func(context.Context) error {
				return checkZones(t)
			},
		},
		{
			Name: "glide",
			Check: func(context.Context) error {
				t.ScanDistanceRemaining(launch)
				sol := t.GlideSolution(model.AircraftState{Location: launch, Altitude: startAltitude})
				if !sol.IsOk() {
					return fmt.Errorf("task not solvable from launch: %s", sol.Validity)
				}
				return nil
			},
		},
		{
			Name: "min time",
			Check: func(context.Context) error {
				if t.Settings().AATMinTime <= 0 {
					return nil
				}
				for i := 0; i < t.Len(); i++ {
					if t.Point(i).Kind() == task.KindAAT {
						return nil
					}
				}
				return errNoAreas
			},
		},
	}
	return probe.AnalyzeResults(probe.Run(ctx, probes))
}

// checkZones requires every zone to be non-empty and its boundary polygon to
// enclose points sampled from its interior.
func checkZones(t *task.OrderedTask) error {
	rng := rand.New(1)
	for i := 0; i < t.Len(); i++ {
		p := t.Point(i)
		z := p.Zone().Zone()
		if !z.IsValid() {
			return fmt.Errorf("zone of %s is empty", p.Name())
		}
		ring, proj := z.BoundaryRing()
		inner := z.RandomPointInSector(0.5, rng)
		if !geo.PolygonContains(ring, proj.Project(inner)) {
			return fmt.Errorf("boundary of %s does not enclose %.5f,%.5f", p.Name(), inner.Lat, inner.Lon)
		}
	}
	return nil
}

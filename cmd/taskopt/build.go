package main

import (
	"fmt"

	"soartask/pkg/config"
	"soartask/pkg/geo"
	"soartask/pkg/glide"
	"soartask/pkg/oz"
	"soartask/pkg/task"
)

func buildPolar(cfg config.PolarConfig, mc float64) (*glide.GlidePolar, error) {
	shape, err := glide.ParsePolarShape(cfg.Shape)
	if err != nil {
		return nil, err
	}
	coef, err := shape.Coefficients()
	if err != nil {
		return nil, err
	}
	polar, err := glide.NewGlidePolar(coef, mc)
	if err != nil {
		return nil, err
	}
	if cfg.VMax > 0 {
		polar.SetVMax(cfg.VMax / 3.6)
	}
	return polar, nil
}

func buildZone(pc config.PointConfig) (*oz.Zone, error) {
	shape, err := oz.ParseShape(pc.Zone.Shape)
	if err != nil {
		return nil, err
	}
	ref := geo.Point{Lat: pc.Lat, Lon: pc.Lon}
	radius := pc.Zone.Radius.Meters()

	var z *oz.Zone
	switch shape {
	case oz.Cylinder:
		z = oz.NewCylinder(ref, radius)
	case oz.Line:
		z = oz.NewLine(ref, pc.Zone.Length.Meters())
	case oz.Sector:
		z = oz.NewSector(ref, radius, pc.Zone.Opening)
	case oz.Keyhole:
		z = oz.NewKeyhole(ref)
	case oz.SymmetricQuadrant:
		z = oz.NewSymmetricQuadrant(ref, radius)
	}
	if !z.IsValid() {
		return nil, fmt.Errorf("%s zone of %q has no extent", shape, pc.Name)
	}
	return z, nil
}

// buildTask creates the ordered task described by cfg, solved with polar.
func buildTask(cfg *config.Config, polar *glide.GlidePolar) (*task.OrderedTask, error) {
	mode, err := task.ParseMode(cfg.Task.AdvanceMode)
	if err != nil {
		return nil, err
	}
	settings := task.Settings{
		AdvanceMode:   mode,
		AATMinTime:    cfg.Task.AATMinTime.Std(),
		CloseToTarget: cfg.Task.CloseToTarget.Meters(),
	}
	solver := glide.Solver{
		Polar:        polar,
		Wind:         cfg.Glide.Wind,
		SafetyHeight: cfg.Glide.SafetyHeight.Meters(),
	}

	t := task.NewOrderedTask(settings, solver)
	for i, pc := range cfg.Task.Points {
		kind, err := task.ParseKind(pc.Kind)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		zone, err := buildZone(pc)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		p := task.NewPoint(pc.Name, kind, geo.Point{Lat: pc.Lat, Lon: pc.Lon}, pc.Elevation, zone)
		p.MaxStartHeight = pc.MaxStartHeight
		t.Append(p)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// launchPoint places the glider behind the start zone on the first leg.
func launchPoint(t *task.OrderedTask) geo.Point {
	start := t.Point(0)
	next := t.Point(1).Location()
	back := geo.Bearing(next, start.Location())
	return geo.DestinationPoint(start.Location(), start.Zone().Zone().Radius+1000, back)
}

// steerTarget is where the simulated pilot heads: through the start toward
// the first turn, then at each active target.
func steerTarget(t *task.OrderedTask) geo.Point {
	i := max(t.ActiveIndex(), 1)
	return t.Point(i).Target()
}

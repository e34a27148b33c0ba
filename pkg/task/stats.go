package task

import (
	"time"
)

// DistanceStat holds a distance and the speeds derived from it. It is
// undefined after Reset until a distance is set; reading an undefined stat
// is a programming error and panics.
type DistanceStat struct {
	distance         float64
	speed            float64
	speedIncremental float64
}

// NewDistanceStat returns an undefined stat.
func NewDistanceStat() DistanceStat {
	var d DistanceStat
	d.Reset()
	return d
}

// Reset marks the stat undefined.
func (d *DistanceStat) Reset() {
	d.distance = -1
	d.speed = 0
	d.speedIncremental = 0
}

// IsDefined reports whether a distance has been set.
func (d *DistanceStat) IsDefined() bool {
	return d.distance >= 0
}

// SetDistance sets the distance (m).
func (d *DistanceStat) SetDistance(m float64) {
	d.distance = m
}

func (d *DistanceStat) mustBeDefined() {
	if !d.IsDefined() {
		panic("task: access to undefined distance stat")
	}
}

// Distance returns the distance (m).
func (d *DistanceStat) Distance() float64 {
	d.mustBeDefined()
	return d.distance
}

// Speed returns the average speed (m/s).
func (d *DistanceStat) Speed() float64 {
	d.mustBeDefined()
	return d.speed
}

// SpeedIncremental returns the low-pass filtered rate of change of distance (m/s).
func (d *DistanceStat) SpeedIncremental() float64 {
	d.mustBeDefined()
	return d.speedIncremental
}

// DistanceStatComputer derives the average speed from distance and elapsed time.
type DistanceStatComputer struct{}

// CalcSpeed sets stat's speed to distance over elapsed, or zero when either is unknown.
func (DistanceStatComputer) CalcSpeed(stat *DistanceStat, elapsed time.Duration) {
	if elapsed > 0 && stat.IsDefined() {
		stat.speed = stat.distance / elapsed.Seconds()
	} else {
		stat.speed = 0
	}
}

const (
	defaultSpeedWindow = 30 * time.Second
	defaultSpeedAlpha  = 0.3
	// a fix gap longer than this restarts the differentiation
	maxSpeedGap = 60 * time.Second
)

type distanceSample struct {
	t time.Time
	d float64
}

// IncrementalSpeedComputer differentiates a distance over a sliding window
// and low-pass filters the result into the stat's incremental speed.
type IncrementalSpeedComputer struct {
	// Positive is true for distances that grow as the task progresses
	// (travelled) and false for ones that shrink (remaining).
	Positive bool
	Window   time.Duration
	Alpha    float64

	samples  []distanceSample
	filtered float64
	primed   bool
}

// NewIncrementalSpeedComputer creates a computer with the default window and filter.
func NewIncrementalSpeedComputer(positive bool) *IncrementalSpeedComputer {
	return &IncrementalSpeedComputer{
		Positive: positive,
		Window:   defaultSpeedWindow,
		Alpha:    defaultSpeedAlpha,
	}
}

// Reset discards the history.
func (c *IncrementalSpeedComputer) Reset() {
	c.samples = c.samples[:0]
	c.filtered = 0
	c.primed = false
}

// Compute adds the stat's current distance at time t and updates its incremental speed.
func (c *IncrementalSpeedComputer) Compute(stat *DistanceStat, t time.Time) {
	if !stat.IsDefined() {
		c.Reset()
		return
	}
	if n := len(c.samples); n > 0 {
		last := c.samples[n-1].t
		if !t.After(last) {
			return
		}
		if t.Sub(last) > maxSpeedGap {
			c.Reset()
		}
	}

	c.samples = append(c.samples, distanceSample{t: t, d: stat.distance})
	for len(c.samples) > 2 && t.Sub(c.samples[0].t) > c.Window {
		c.samples = c.samples[1:]
	}
	if len(c.samples) < 2 {
		stat.speedIncremental = 0
		return
	}

	first, last := c.samples[0], c.samples[len(c.samples)-1]
	raw := (last.d - first.d) / last.t.Sub(first.t).Seconds()
	if !c.Positive {
		raw = -raw
	}
	if !c.primed {
		c.filtered = raw
		c.primed = true
	} else {
		c.filtered += c.Alpha * (raw - c.filtered)
	}
	stat.speedIncremental = c.filtered
}

// TaskVario is the rate (m/s) at which the glide margin to the finish changes.
type TaskVario struct {
	value float64
}

// Reset zeroes the vario.
func (v *TaskVario) Reset() {
	v.value = 0
}

// Value returns the vario (m/s).
func (v *TaskVario) Value() float64 {
	return v.value
}

// TaskVarioComputer differentiates the altitude difference of successive glide solutions.
type TaskVarioComputer struct {
	Alpha float64

	last    time.Time
	lastAlt float64
	primed  bool
}

// Reset discards the history.
func (c *TaskVarioComputer) Reset() {
	c.primed = false
}

// Update feeds the altitude difference (m) at time t into v.
func (c *TaskVarioComputer) Update(v *TaskVario, altitudeDifference float64, t time.Time) {
	if c.primed && !t.After(c.last) {
		return
	}
	if !c.primed || t.Sub(c.last) > maxSpeedGap {
		c.last, c.lastAlt, c.primed = t, altitudeDifference, true
		v.Reset()
		return
	}
	alpha := c.Alpha
	if alpha <= 0 {
		alpha = defaultSpeedAlpha
	}
	raw := (altitudeDifference - c.lastAlt) / t.Sub(c.last).Seconds()
	v.value += alpha * (raw - v.value)
	c.last, c.lastAlt = t, altitudeDifference
}

// Stats aggregates the per-task statistics.
type Stats struct {
	Remaining DistanceStat
	Travelled DistanceStat
	Planned   DistanceStat
	Vario     TaskVario

	StartTime time.Time
	Started   bool
	Finished  bool
}

// Reset returns every stat to undefined.
func (s *Stats) Reset() {
	s.Remaining.Reset()
	s.Travelled.Reset()
	s.Planned.Reset()
	s.Vario.Reset()
	s.StartTime = time.Time{}
	s.Started = false
	s.Finished = false
}

// Elapsed returns the time since the start, zero before it.
func (s *Stats) Elapsed(now time.Time) time.Duration {
	if !s.Started {
		return 0
	}
	return now.Sub(s.StartTime)
}

package oz

import (
	"soartask/pkg/geo"
	"soartask/pkg/rand"
)

// Locator is anything with a location, typically a neighbouring task point.
type Locator interface {
	Location() geo.Point
}

// Client gives a task point access to its observation zone.
type Client struct {
	zone *Zone
}

// NewClient wraps zone.
func NewClient(zone *Zone) *Client {
	return &Client{zone: zone}
}

// Zone returns the wrapped zone.
func (c *Client) Zone() *Zone {
	return c.zone
}

// IsInSector reports whether location is inside the zone.
func (c *Client) IsInSector(location geo.Point) bool {
	return c.zone.IsInSector(location)
}

// CanStartThroughTop reports whether the zone allows starting through its top.
func (c *Client) CanStartThroughTop() bool {
	return c.zone.CanStartThroughTop()
}

// RandomPointInSector samples a point inside the zone.
func (c *Client) RandomPointInSector(mag float64, rng *rand.Rand) geo.Point {
	return c.zone.RandomPointInSector(mag, rng)
}

// ScoreAdjustment returns the scoring distance correction.
func (c *Client) ScoreAdjustment() float64 {
	return c.zone.ScoreAdjustment()
}

// Boundary returns the zone polygon.
func (c *Client) Boundary() []geo.Point {
	return c.zone.Boundary()
}

// TransitionConstraint reports whether previous to current is an acceptable transition.
func (c *Client) TransitionConstraint(current, previous geo.Point) bool {
	return c.zone.TransitionConstraint(current, previous)
}

// SetLegs reorients the zone from the neighbouring task points; nil means absent.
func (c *Client) SetLegs(previous, next Locator) {
	var prev, nxt *geo.Point
	if previous != nil {
		p := previous.Location()
		prev = &p
	}
	if next != nil {
		n := next.Location()
		nxt = &n
	}
	c.zone.SetLegs(prev, nxt)
}

package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support extended units (d, w) in YAML.
type Duration time.Duration

// Common durations.
const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ParseDuration parses a duration string, supporting d and w on top of the
// units time.ParseDuration knows.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.ContainsAny(s, "dw") {
		return parseExtendedDuration(s)
	}
	return time.ParseDuration(s)
}

var unitMap = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"µs": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  Day,
	"w":  Week,
}

var reDurationPart = regexp.MustCompile(`([0-9.]+)([a-zµ]+)`)

func parseExtendedDuration(s string) (time.Duration, error) {
	var total time.Duration

	matches := reDurationPart.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	for _, match := range matches {
		valStr := match[1]
		unitStr := match[2]

		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in duration: %s", valStr)
		}

		base, ok := unitMap[unitStr]
		if !ok {
			return 0, fmt.Errorf("unknown unit: %s", unitStr)
		}

		total += time.Duration(val * float64(base))
	}

	return total, nil
}

// Distance represents a distance in meters.
type Distance float64

// Meters returns the value as a plain float.
func (d Distance) Meters() float64 {
	return float64(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Distance) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		// plain numbers are meters
		var f float64
		if errNum := value.Decode(&f); errNum == nil {
			*d = Distance(f)
			return nil
		}
		return err
	}

	dist, err := ParseDistance(s)
	if err != nil {
		return err
	}
	*d = Distance(dist)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Distance) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("%.2fm", float64(d)), nil
}

// ParseDistance parses a distance with an optional m, km, nm or ft suffix.
// Unitless values are meters.
func ParseDistance(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	var mult float64
	var numStr string

	switch {
	case strings.HasSuffix(s, "km"):
		mult = 1000
		numStr = strings.TrimSuffix(s, "km")
	case strings.HasSuffix(s, "nm"):
		mult = 1852
		numStr = strings.TrimSuffix(s, "nm")
	case strings.HasSuffix(s, "ft"):
		mult = 0.3048
		numStr = strings.TrimSuffix(s, "ft")
	case strings.HasSuffix(s, "m"):
		mult = 1
		numStr = strings.TrimSuffix(s, "m")
	default:
		mult = 1
		numStr = s
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid distance number: %w", err)
	}

	return val * mult, nil
}

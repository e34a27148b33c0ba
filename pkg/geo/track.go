package geo

import "sync"

// TrackBuffer maintains a rolling window of fixes and derives the ground track from them.
// Fixes closer than minSpacing to the newest stored fix are dropped so that a
// glider drifting in a thermal does not produce a noisy track.
type TrackBuffer struct {
	mu         sync.RWMutex
	samples    []Point
	windowSize int
	minSpacing float64
}

// NewTrackBuffer creates a new buffer with the specified sample window size.
func NewTrackBuffer(windowSize int) *TrackBuffer {
	if windowSize < 2 {
		windowSize = 2
	}
	return &TrackBuffer{
		windowSize: windowSize,
	}
}

// SetMinSpacing sets the distance (m) a fix must be from the previous one to be stored.
func (b *TrackBuffer) SetMinSpacing(meters float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minSpacing = meters
}

// Push adds a new point to the buffer and returns the current calculated track (bearing).
// If the buffer has fewer than 2 points, it returns the provided default heading.
func (b *TrackBuffer) Push(p Point, defaultHeading float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.samples); n == 0 || Distance(b.samples[n-1], p) >= b.minSpacing {
		b.samples = append(b.samples, p)
	}
	if len(b.samples) > b.windowSize {
		b.samples = b.samples[1:]
	}

	if len(b.samples) < 2 {
		return defaultHeading
	}

	return Bearing(b.samples[0], b.samples[len(b.samples)-1])
}

// Len returns the number of stored fixes.
func (b *TrackBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Reset clears the buffer history.
func (b *TrackBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
}

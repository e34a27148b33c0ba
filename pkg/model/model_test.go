package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWind_HeadWind(t *testing.T) {
	tests := []struct {
		name    string
		wind    Wind
		bearing float64
		want    float64
	}{
		{"Calm", Wind{}, 90, 0},
		{"Straight Head", Wind{Speed: 10, Bearing: 90}, 90, 10},
		{"Straight Tail", Wind{Speed: 10, Bearing: 270}, 90, -10},
		{"Cross", Wind{Speed: 10, Bearing: 0}, 90, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.wind.HeadWind(tt.bearing), 1e-9)
		})
	}
}

func TestWind_CrossWind(t *testing.T) {
	w := Wind{Speed: 10, Bearing: 0}
	assert.InDelta(t, 10, abs(w.CrossWind(90)), 1e-9)
	assert.InDelta(t, 0, w.CrossWind(0), 1e-9)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// pkg/entity/wander.go
package entity

import (
	"math"
	"math/rand"

	"github.com/opd-ai/go-outbreak/pkg/physics"
)

// WanderState holds an agent's random-walk heading and the frames left
// before it picks a new one.
type WanderState struct {
	Heading   float64 // radians
	Countdown int
}

// Tick advances the countdown by one frame. When it runs out a new heading
// is drawn from rng and the countdown restarts at interval. Tick reports
// whether the heading changed.
func (w *WanderState) Tick(rng *rand.Rand, interval int) bool {
	if w.Countdown > 0 {
		w.Countdown--
		return false
	}
	w.Heading = rng.Float64() * 2 * math.Pi
	if interval < 1 {
		interval = 1
	}
	w.Countdown = interval - 1
	return true
}

// Direction returns the unit vector for the current heading.
func (w *WanderState) Direction() physics.Vector2D {
	return physics.FromAngle(w.Heading, 1)
}

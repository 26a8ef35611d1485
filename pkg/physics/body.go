// pkg/physics/body.go
package physics

// Body is the kinematic state of a round agent.
type Body struct {
	Position Vector2D // center
	Velocity Vector2D // units per second
	Radius   float64
}

// Integrate advances the body by its velocity over deltaTime seconds.
func (b *Body) Integrate(deltaTime float64) {
	b.Position = b.Position.Add(b.Velocity.Scale(deltaTime))
}

// Steer points the body along direction at the given speed. A zero direction
// stops the body.
func (b *Body) Steer(direction Vector2D, speed float64) {
	b.Velocity = direction.Normalize().Scale(speed)
}

// Circle returns the collision shape of the body.
func (b *Body) Circle() Circle {
	return Circle{Center: b.Position, Radius: b.Radius}
}

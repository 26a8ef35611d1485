// pkg/physics/collision.go
package physics

import "math"

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Collides checks if two circles are colliding. Circles that exactly touch do
// not collide.
func (c Circle) Collides(other Circle) bool {
	return c.Center.Distance(other.Center) < c.Radius+other.Radius
}

// Box is an axis-aligned rectangle described by its center and half extents,
// used for static obstacles.
type Box struct {
	Center Vector2D
	HalfW  float64
	HalfH  float64
}

// CollisionResult contains information about a collision
type CollisionResult struct {
	Collided    bool
	Normal      Vector2D // unit vector from B towards A
	Penetration float64
	Distance    float64
}

// CheckCollision performs detailed collision detection between two circles.
// The normal points from b to a, so moving a along it separates the pair.
func CheckCollision(a, b Circle) CollisionResult {
	delta := a.Center.Sub(b.Center)
	distance := delta.Length()
	minDistance := a.Radius + b.Radius

	if distance >= minDistance {
		return CollisionResult{Collided: false, Distance: distance}
	}

	normal := delta.Normalize()
	if normal.IsZero() {
		// coincident centers: pick a fixed axis so the pair still separates
		normal = Vector2D{X: 1, Y: 0}
	}

	return CollisionResult{
		Collided:    true,
		Normal:      normal,
		Penetration: minDistance - distance,
		Distance:    distance,
	}
}

// Penetration returns how far a circle overlaps a box on each axis, measured
// between centers. Positive values on both axes mean the shapes overlap.
func Penetration(c Circle, b Box) (float64, float64) {
	dx := c.Center.X - b.Center.X
	dy := c.Center.Y - b.Center.Y
	px := c.Radius + b.HalfW - math.Abs(dx)
	py := c.Radius + b.HalfH - math.Abs(dy)
	return px, py
}

// pkg/physics/resolve.go
package physics

import (
	"fmt"
	"math"
)

// MassModel selects how a body's mass is derived from its radius.
type MassModel int

const (
	// MassCubic treats mass as proportional to radius cubed.
	MassCubic MassModel = iota
	// MassUnit gives every body the same mass.
	MassUnit
)

func (m MassModel) String() string {
	switch m {
	case MassCubic:
		return "cubic"
	case MassUnit:
		return "unit"
	default:
		return fmt.Sprintf("MassModel(%d)", int(m))
	}
}

// ParseMassModel converts a configuration value into a MassModel.
func ParseMassModel(s string) (MassModel, error) {
	switch s {
	case "cubic", "":
		return MassCubic, nil
	case "unit":
		return MassUnit, nil
	}
	return 0, fmt.Errorf("unknown mass model %q", s)
}

// StaticPolicy selects how agents respond to hitting a static obstacle.
type StaticPolicy int

const (
	// StaticBounce snaps the agent out and reflects its velocity on the
	// resolution axis.
	StaticBounce StaticPolicy = iota
	// StaticSnap only snaps the agent out of the obstacle.
	StaticSnap
)

func (p StaticPolicy) String() string {
	switch p {
	case StaticBounce:
		return "bounce"
	case StaticSnap:
		return "snap"
	default:
		return fmt.Sprintf("StaticPolicy(%d)", int(p))
	}
}

// ParseStaticPolicy converts a configuration value into a StaticPolicy.
func ParseStaticPolicy(s string) (StaticPolicy, error) {
	switch s {
	case "bounce", "":
		return StaticBounce, nil
	case "snap":
		return StaticSnap, nil
	}
	return 0, fmt.Errorf("unknown static policy %q", s)
}

// Mass returns the mass of a body of the given radius.
func Mass(radius float64, model MassModel) float64 {
	if model == MassUnit {
		return 1
	}
	return radius * radius * radius
}

// Authority says which side of a pair, if any, must not be displaced.
type Authority int

const (
	AuthorityNone Authority = iota
	AuthorityA
	AuthorityB
)

// SeparateCircles pushes two overlapping bodies apart until they just touch.
// Without an authority each body moves half the correction; otherwise the
// other body absorbs all of it. It returns the correction applied along
// A's side, which is zero when the bodies do not overlap.
func SeparateCircles(a, b *Body, authority Authority) (Vector2D, bool) {
	result := CheckCollision(a.Circle(), b.Circle())
	if !result.Collided {
		return Vector2D{}, false
	}

	correction := result.Normal.Scale(result.Penetration)
	switch authority {
	case AuthorityA:
		b.Position = b.Position.Sub(correction)
	case AuthorityB:
		a.Position = a.Position.Add(correction)
	default:
		half := correction.Scale(0.5)
		a.Position = a.Position.Add(half)
		b.Position = b.Position.Sub(half)
	}
	return correction, true
}

// ElasticVelocities exchanges momentum between two bodies using
//
//	v1' = (v1(m1-m2) + 2 m2 v2) / (m1+m2)
//
// and the symmetric form for v2'. Equal masses swap velocities.
func ElasticVelocities(a, b *Body, model MassModel) {
	m1 := Mass(a.Radius, model)
	m2 := Mass(b.Radius, model)
	total := m1 + m2
	if total == 0 {
		return
	}

	v1, v2 := a.Velocity, b.Velocity
	a.Velocity = v1.Scale(m1 - m2).Add(v2.Scale(2 * m2)).Scale(1 / total)
	b.Velocity = v2.Scale(m2 - m1).Add(v1.Scale(2 * m1)).Scale(1 / total)
}

// Axis identifies the axis a static collision was resolved on.
type Axis int

const (
	AxisNone Axis = iota
	AxisX
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "none"
	}
}

// ResolveStatic pushes body out of an obstacle. The axis is the one with the
// larger absolute offset between the two centers; the body is snapped to the
// nearest obstacle edge on that axis. With StaticBounce the velocity
// component on that axis is reversed when it points into the obstacle.
func ResolveStatic(body *Body, obstacle Box, policy StaticPolicy) Axis {
	px, py := Penetration(body.Circle(), obstacle)
	if px <= 0 || py <= 0 {
		return AxisNone
	}

	dx := body.Position.X - obstacle.Center.X
	dy := body.Position.Y - obstacle.Center.Y

	if math.Abs(dx) > math.Abs(dy) {
		side := sign(dx)
		body.Position.X = obstacle.Center.X + side*(obstacle.HalfW+body.Radius)
		if policy == StaticBounce && body.Velocity.X*side < 0 {
			body.Velocity.X = -body.Velocity.X
		}
		return AxisX
	}

	side := sign(dy)
	body.Position.Y = obstacle.Center.Y + side*(obstacle.HalfH+body.Radius)
	if policy == StaticBounce && body.Velocity.Y*side < 0 {
		body.Velocity.Y = -body.Velocity.Y
	}
	return AxisY
}

// sign returns -1 for negative values and 1 otherwise, so a body sitting
// exactly on the obstacle center is pushed towards positive coordinates.
func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

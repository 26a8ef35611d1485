// pkg/physics/resolve_test.go
package physics

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestSeparateCircles_Symmetric(t *testing.T) {
	a := &Body{Position: Vector2D{X: 0, Y: 0}, Radius: 30}
	b := &Body{Position: Vector2D{X: 40, Y: 0}, Radius: 30}

	if _, ok := SeparateCircles(a, b, AuthorityNone); !ok {
		t.Fatal("Expected overlapping bodies to be separated")
	}

	if math.Abs(a.Position.X-(-10)) > epsilon || a.Position.Y != 0 {
		t.Errorf("a moved to %v, expected (-10, 0)", a.Position)
	}
	if math.Abs(b.Position.X-50) > epsilon || b.Position.Y != 0 {
		t.Errorf("b moved to %v, expected (50, 0)", b.Position)
	}
	if d := a.Position.Distance(b.Position); math.Abs(d-60) > epsilon {
		t.Errorf("distance after separation = %v, expected 60", d)
	}
}

func TestSeparateCircles_Authority(t *testing.T) {
	tests := []struct {
		name      string
		authority Authority
		expectedA Vector2D
		expectedB Vector2D
	}{
		{name: "a_authoritative", authority: AuthorityA, expectedA: Vector2D{X: 0}, expectedB: Vector2D{X: 60}},
		{name: "b_authoritative", authority: AuthorityB, expectedA: Vector2D{X: -20}, expectedB: Vector2D{X: 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Body{Position: Vector2D{X: 0, Y: 0}, Radius: 30}
			b := &Body{Position: Vector2D{X: 40, Y: 0}, Radius: 30}
			SeparateCircles(a, b, tt.authority)

			if a.Position.Distance(tt.expectedA) > epsilon {
				t.Errorf("a = %v, expected %v", a.Position, tt.expectedA)
			}
			if b.Position.Distance(tt.expectedB) > epsilon {
				t.Errorf("b = %v, expected %v", b.Position, tt.expectedB)
			}
		})
	}
}

func TestSeparateCircles_NoOverlap(t *testing.T) {
	a := &Body{Position: Vector2D{X: 0, Y: 0}, Radius: 30}
	b := &Body{Position: Vector2D{X: 60, Y: 0}, Radius: 30}
	if _, ok := SeparateCircles(a, b, AuthorityNone); ok {
		t.Error("Expected touching bodies to be left alone")
	}
	if a.Position.X != 0 || b.Position.X != 60 {
		t.Errorf("bodies moved: %v %v", a.Position, b.Position)
	}
}

func TestElasticVelocities(t *testing.T) {
	t.Run("equal_mass_swaps", func(t *testing.T) {
		a := &Body{Velocity: Vector2D{X: 5, Y: 1}, Radius: 30}
		b := &Body{Velocity: Vector2D{X: -3, Y: 2}, Radius: 30}
		ElasticVelocities(a, b, MassCubic)

		if a.Velocity.Distance(Vector2D{X: -3, Y: 2}) > epsilon {
			t.Errorf("a.Velocity = %v, expected (-3, 2)", a.Velocity)
		}
		if b.Velocity.Distance(Vector2D{X: 5, Y: 1}) > epsilon {
			t.Errorf("b.Velocity = %v, expected (5, 1)", b.Velocity)
		}
	})

	t.Run("cubic_mass_conserves_momentum", func(t *testing.T) {
		a := &Body{Velocity: Vector2D{X: 10}, Radius: 20}
		b := &Body{Velocity: Vector2D{X: -2}, Radius: 10}
		m1, m2 := Mass(20, MassCubic), Mass(10, MassCubic)
		before := a.Velocity.Scale(m1).Add(b.Velocity.Scale(m2))

		ElasticVelocities(a, b, MassCubic)

		after := a.Velocity.Scale(m1).Add(b.Velocity.Scale(m2))
		if before.Distance(after) > 1e-6 {
			t.Errorf("momentum changed from %v to %v", before, after)
		}
		if a.Velocity.X <= 0 {
			t.Errorf("heavier body should keep moving forward, got %v", a.Velocity)
		}
	})

	t.Run("unit_mass_ignores_radius", func(t *testing.T) {
		a := &Body{Velocity: Vector2D{X: 10}, Radius: 20}
		b := &Body{Velocity: Vector2D{X: -2}, Radius: 10}
		ElasticVelocities(a, b, MassUnit)

		if a.Velocity.X != -2 || b.Velocity.X != 10 {
			t.Errorf("velocities = %v, %v; expected swap", a.Velocity, b.Velocity)
		}
	})
}

func TestResolveStatic(t *testing.T) {
	wall := Box{Center: Vector2D{X: 0, Y: 0}, HalfW: 32, HalfH: 32}

	tests := []struct {
		name         string
		body         Body
		policy       StaticPolicy
		expectedAxis Axis
		expectedPos  Vector2D
		expectedVel  Vector2D
	}{
		{
			name:         "hit_from_right_bounces",
			body:         Body{Position: Vector2D{X: 50, Y: 10}, Velocity: Vector2D{X: -4, Y: 1}, Radius: 30},
			policy:       StaticBounce,
			expectedAxis: AxisX,
			expectedPos:  Vector2D{X: 62, Y: 10},
			expectedVel:  Vector2D{X: 4, Y: 1},
		},
		{
			name:         "hit_from_below_snaps",
			body:         Body{Position: Vector2D{X: 5, Y: -40}, Velocity: Vector2D{X: 0, Y: 3}, Radius: 30},
			policy:       StaticSnap,
			expectedAxis: AxisY,
			expectedPos:  Vector2D{X: 5, Y: -62},
			expectedVel:  Vector2D{X: 0, Y: 3},
		},
		{
			name:         "moving_away_keeps_velocity",
			body:         Body{Position: Vector2D{X: -50, Y: 0}, Velocity: Vector2D{X: -4, Y: 0}, Radius: 30},
			policy:       StaticBounce,
			expectedAxis: AxisX,
			expectedPos:  Vector2D{X: -62, Y: 0},
			expectedVel:  Vector2D{X: -4, Y: 0},
		},
		{
			name:         "no_contact",
			body:         Body{Position: Vector2D{X: 100, Y: 0}, Velocity: Vector2D{X: -4, Y: 0}, Radius: 30},
			policy:       StaticBounce,
			expectedAxis: AxisNone,
			expectedPos:  Vector2D{X: 100, Y: 0},
			expectedVel:  Vector2D{X: -4, Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			axis := ResolveStatic(&body, wall, tt.policy)
			if axis != tt.expectedAxis {
				t.Errorf("ResolveStatic() axis = %v, expected %v", axis, tt.expectedAxis)
			}
			if body.Position.Distance(tt.expectedPos) > epsilon {
				t.Errorf("position = %v, expected %v", body.Position, tt.expectedPos)
			}
			if body.Velocity != tt.expectedVel {
				t.Errorf("velocity = %v, expected %v", body.Velocity, tt.expectedVel)
			}
		})
	}
}

func TestParsePolicies(t *testing.T) {
	if p, err := ParseStaticPolicy("snap"); err != nil || p != StaticSnap {
		t.Errorf("ParseStaticPolicy(snap) = %v, %v", p, err)
	}
	if _, err := ParseStaticPolicy("teleport"); err == nil {
		t.Error("Expected error for unknown static policy")
	}
	if m, err := ParseMassModel("unit"); err != nil || m != MassUnit {
		t.Errorf("ParseMassModel(unit) = %v, %v", m, err)
	}
	if _, err := ParseMassModel("quadratic"); err == nil {
		t.Error("Expected error for unknown mass model")
	}
}

func TestBody_IntegrateAndSteer(t *testing.T) {
	b := &Body{Position: Vector2D{X: 1, Y: 1}, Radius: 30}
	b.Steer(Vector2D{X: 3, Y: 4}, 10)
	if b.Velocity.Distance(Vector2D{X: 6, Y: 8}) > epsilon {
		t.Errorf("Steer() velocity = %v, expected (6, 8)", b.Velocity)
	}

	b.Integrate(0.5)
	if b.Position.Distance(Vector2D{X: 4, Y: 5}) > epsilon {
		t.Errorf("Integrate() position = %v, expected (4, 5)", b.Position)
	}

	b.Steer(Vector2D{}, 10)
	if !b.Velocity.IsZero() {
		t.Errorf("Steer() with zero direction = %v, expected stop", b.Velocity)
	}
}

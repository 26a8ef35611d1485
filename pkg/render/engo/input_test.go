package engo

import (
	"math"
	"testing"

	"github.com/opd-ai/go-outbreak/pkg/physics"
)

type recordingController struct {
	calls []physics.Vector2D
}

func (c *recordingController) SetPlayerDirection(dir physics.Vector2D) {
	c.calls = append(c.calls, dir)
}

func TestDirectionFrom(t *testing.T) {
	diag := 1 / math.Sqrt2
	tests := []struct {
		name                  string
		up, down, left, right bool
		want                  physics.Vector2D
	}{
		{"idle", false, false, false, false, physics.Vector2D{}},
		{"up", true, false, false, false, physics.Vector2D{Y: -1}},
		{"down", false, true, false, false, physics.Vector2D{Y: 1}},
		{"left", false, false, true, false, physics.Vector2D{X: -1}},
		{"up right", true, false, false, true, physics.Vector2D{X: diag, Y: -diag}},
		{"opposites cancel", true, true, true, true, physics.Vector2D{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := directionFrom(tt.up, tt.down, tt.left, tt.right)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("directionFrom() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInputSystem_ForwardsChangesOnly(t *testing.T) {
	ctrl := &recordingController{}
	is := NewInputSystem(ctrl)

	is.apply(physics.Vector2D{X: 1})
	is.apply(physics.Vector2D{X: 1})
	is.apply(physics.Vector2D{})

	if len(ctrl.calls) != 2 {
		t.Fatalf("expected 2 forwarded directions, got %v", ctrl.calls)
	}

	next := &recordingController{}
	is.SetController(next)
	is.apply(physics.Vector2D{X: 1})
	if len(next.calls) != 1 {
		t.Errorf("expected the new controller to receive the direction, got %v", next.calls)
	}
	if is.Paused() {
		t.Error("input should not start paused")
	}
}

// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-outbreak/pkg/entity"
	"github.com/opd-ai/go-outbreak/pkg/logging"
)

// NullRenderer is an entity.Renderer that only logs what it is asked to draw.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a NullRenderer. A nil logger discards output.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	d.logger.Debug(context.Background(), "Present called")
}

// RenderAgent implements entity.Renderer.
func (d *NullRenderer) RenderAgent(agent *entity.Agent) {
	ctx := context.Background()
	if agent == nil {
		d.logger.Debug(ctx, "RenderAgent called with nil agent")
		return
	}
	d.logger.Debug(ctx, "RenderAgent called",
		"agent_id", agent.ID(),
		"kind", agent.Kind.String(),
		"x", agent.Body.Position.X,
		"y", agent.Body.Position.Y,
	)
}

// RenderObstacle implements entity.Renderer.
func (d *NullRenderer) RenderObstacle(obstacle *entity.Obstacle) {
	ctx := context.Background()
	if obstacle == nil {
		d.logger.Debug(ctx, "RenderObstacle called with nil obstacle")
		return
	}
	d.logger.Debug(ctx, "RenderObstacle called",
		"obstacle_id", obstacle.ID(),
		"material", obstacle.Material.String(),
	)
}

var _ entity.Renderer = (*NullRenderer)(nil)

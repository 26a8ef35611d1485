package entity

// Renderer draws simulation entities. Implementations live in pkg/render.
type Renderer interface {
	RenderAgent(agent *Agent)
	RenderObstacle(obstacle *Obstacle)
	Clear()
	Present()
}

// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"

	"github.com/opd-ai/go-outbreak/pkg/physics"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// GameConfig contains configuration for an outbreak round and the server
// that hosts it.
type GameConfig struct {
	World   WorldConfig   `json:"world"`
	Agents  AgentConfig   `json:"agents"`
	Physics PhysicsConfig `json:"physics"`
	Rules   GameRules     `json:"rules"`
	Server  ServerConfig  `json:"server"`
}

// WorldConfig describes the level and the spatial index built over it.
type WorldConfig struct {
	Level        string  `json:"level"`
	TileSize     float64 `json:"tileSize"`
	TreeCapacity int     `json:"treeCapacity"`
	// ValidateTree checks the index invariants after every frame.
	ValidateTree bool `json:"validateTree"`
}

// AgentConfig contains the size and movement settings of agents.
type AgentConfig struct {
	Radius         float64 `json:"radius"`
	HumanSpeed     float64 `json:"humanSpeed"`
	ZombieSpeed    float64 `json:"zombieSpeed"`
	PlayerSpeed    float64 `json:"playerSpeed"`
	WanderInterval int     `json:"wanderInterval"`
	ChaseRadius    float64 `json:"chaseRadius"`
	Seed           int64   `json:"seed"`
}

// PhysicsConfig selects the collision response.
type PhysicsConfig struct {
	StaticPolicy string `json:"staticPolicy"`
	MassModel    string `json:"massModel"`
	Elastic      bool   `json:"elastic"`
}

// GameRules contains round termination settings.
type GameRules struct {
	FrameLimit int `json:"frameLimit"`
}

// ServerConfig contains settings for the headless server.
type ServerConfig struct {
	ListenAddr       string `json:"listenAddr"`
	TickRate         int    `json:"tickRate"`
	SnapshotEvery    int    `json:"snapshotEvery"`
	ResultsDB        string `json:"resultsDB"`
	MaxSpectators    int    `json:"maxSpectators"`
	WriteTimeoutMs   int    `json:"writeTimeoutMs"`
	BreakerFailures  int    `json:"breakerFailures"`
	BreakerTimeoutMs int    `json:"breakerTimeoutMs"`

	// ConnectsPerMinute limits spectator connection attempts per host.
	ConnectsPerMinute int `json:"connectsPerMinute"`
}

// LoadConfig loads a configuration from a file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *GameConfig, path string) error {
	if config == nil {
		return fmt.Errorf("failed to marshal config: %w", ErrInvalidConfig)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default game configuration
func DefaultConfig() *GameConfig {
	return &GameConfig{
		World: WorldConfig{
			Level:        "levels/level1.txt",
			TileSize:     64,
			TreeCapacity: 2,
		},
		Agents: AgentConfig{
			Radius:         25,
			HumanSpeed:     90,
			ZombieSpeed:    110,
			PlayerSpeed:    220,
			WanderInterval: 60,
			ChaseRadius:    300,
			Seed:           0,
		},
		Physics: PhysicsConfig{
			StaticPolicy: physics.StaticBounce.String(),
			MassModel:    physics.MassCubic.String(),
			Elastic:      true,
		},
		Rules: GameRules{
			FrameLimit: 0,
		},
		Server: ServerConfig{
			ListenAddr:       ":8080",
			TickRate:         60,
			SnapshotEvery:    3,
			ResultsDB:        "outbreak.db",
			MaxSpectators:    64,
			WriteTimeoutMs:   250,
			BreakerFailures:  5,
			BreakerTimeoutMs: 10000,

			ConnectsPerMinute: 30,
		},
	}
}

// Policies returns the parsed collision response settings.
func (p PhysicsConfig) Policies() (physics.StaticPolicy, physics.MassModel, error) {
	policy, err := physics.ParseStaticPolicy(p.StaticPolicy)
	if err != nil {
		return 0, 0, err
	}
	model, err := physics.ParseMassModel(p.MassModel)
	if err != nil {
		return 0, 0, err
	}
	return policy, model, nil
}

// Validate reports every setting that would make the simulation misbehave.
func (c *GameConfig) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.World.TileSize > 0, "world.tileSize must be positive, got %v", c.World.TileSize)
	check(c.World.TreeCapacity >= 1, "world.treeCapacity must be at least 1, got %d", c.World.TreeCapacity)
	check(c.Agents.Radius > 0, "agents.radius must be positive, got %v", c.Agents.Radius)
	check(c.Agents.HumanSpeed >= 0, "agents.humanSpeed must not be negative")
	check(c.Agents.ZombieSpeed >= 0, "agents.zombieSpeed must not be negative")
	check(c.Agents.PlayerSpeed >= 0, "agents.playerSpeed must not be negative")
	check(c.Agents.WanderInterval >= 1, "agents.wanderInterval must be at least 1 frame, got %d", c.Agents.WanderInterval)
	check(c.Agents.ChaseRadius >= 0, "agents.chaseRadius must not be negative")
	check(c.Rules.FrameLimit >= 0, "rules.frameLimit must not be negative")
	check(c.Server.TickRate > 0, "server.tickRate must be positive, got %d", c.Server.TickRate)
	check(c.Server.SnapshotEvery >= 1, "server.snapshotEvery must be at least 1, got %d", c.Server.SnapshotEvery)
	check(c.Server.ConnectsPerMinute >= 0, "server.connectsPerMinute must not be negative, got %d", c.Server.ConnectsPerMinute)
	check(c.Server.BreakerFailures >= 1, "server.breakerFailures must be at least 1, got %d", c.Server.BreakerFailures)

	if _, _, err := c.Physics.Policies(); err != nil {
		problems = append(problems, fmt.Errorf("%w: physics: %v", ErrInvalidConfig, err))
	}

	return errors.Join(problems...)
}

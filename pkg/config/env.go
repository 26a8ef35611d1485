// pkg/config/env.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables that override file settings.
const (
	EnvLevel          = "OUTBREAK_LEVEL"
	EnvListenAddr     = "OUTBREAK_LISTEN_ADDR"
	EnvTickRate       = "OUTBREAK_TICK_RATE"
	EnvResultsDB      = "OUTBREAK_RESULTS_DB"
	EnvStaticPolicy   = "OUTBREAK_STATIC_POLICY"
	EnvMassModel      = "OUTBREAK_MASS_MODEL"
	EnvFrameLimit     = "OUTBREAK_FRAME_LIMIT"
	EnvSeed           = "OUTBREAK_SEED"
	EnvTreeCapacity   = "OUTBREAK_TREE_CAPACITY"
	EnvValidateTree   = "OUTBREAK_VALIDATE_TREE"
	EnvWriteTimeout   = "OUTBREAK_WRITE_TIMEOUT"
	EnvBreakerTimeout = "OUTBREAK_BREAKER_TIMEOUT"
)

// ApplyEnvironmentOverrides replaces settings in config with any OUTBREAK_*
// variables present in the environment, then validates the result.
func ApplyEnvironmentOverrides(config *GameConfig) error {
	config.World.Level = getEnvOrDefault(EnvLevel, config.World.Level)
	config.World.TreeCapacity = getEnvAsIntOrDefault(EnvTreeCapacity, config.World.TreeCapacity)
	config.World.ValidateTree = getEnvAsBoolOrDefault(EnvValidateTree, config.World.ValidateTree)
	config.Agents.Seed = int64(getEnvAsIntOrDefault(EnvSeed, int(config.Agents.Seed)))
	config.Physics.StaticPolicy = getEnvOrDefault(EnvStaticPolicy, config.Physics.StaticPolicy)
	config.Physics.MassModel = getEnvOrDefault(EnvMassModel, config.Physics.MassModel)
	config.Rules.FrameLimit = getEnvAsIntOrDefault(EnvFrameLimit, config.Rules.FrameLimit)
	config.Server.ListenAddr = getEnvOrDefault(EnvListenAddr, config.Server.ListenAddr)
	config.Server.TickRate = getEnvAsIntOrDefault(EnvTickRate, config.Server.TickRate)
	config.Server.ResultsDB = getEnvOrDefault(EnvResultsDB, config.Server.ResultsDB)

	writeTimeout := time.Duration(config.Server.WriteTimeoutMs) * time.Millisecond
	config.Server.WriteTimeoutMs = int(getEnvAsDurationOrDefault(EnvWriteTimeout, writeTimeout) / time.Millisecond)

	breakerTimeout := time.Duration(config.Server.BreakerTimeoutMs) * time.Millisecond
	config.Server.BreakerTimeoutMs = int(getEnvAsDurationOrDefault(EnvBreakerTimeout, breakerTimeout) / time.Millisecond)

	return config.Validate()
}

// WriteTimeout returns the per-message spectator write deadline.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMs) * time.Millisecond
}

// BreakerTimeout returns how long a tripped spectator breaker stays open.
func (s ServerConfig) BreakerTimeout() time.Duration {
	return time.Duration(s.BreakerTimeoutMs) * time.Millisecond
}

// TickInterval returns the wall-clock duration of one simulation frame.
func (s ServerConfig) TickInterval() time.Duration {
	if s.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(s.TickRate)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

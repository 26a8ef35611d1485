package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/go-outbreak/pkg/physics"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if config.World.TreeCapacity != 2 {
		t.Errorf("Expected TreeCapacity 2, got %d", config.World.TreeCapacity)
	}
	if config.World.TileSize != 64 {
		t.Errorf("Expected TileSize 64, got %f", config.World.TileSize)
	}

	policy, model, err := config.Physics.Policies()
	if err != nil {
		t.Fatalf("Policies() failed: %v", err)
	}
	if policy != physics.StaticBounce {
		t.Errorf("Expected bounce policy, got %v", policy)
	}
	if model != physics.MassCubic {
		t.Errorf("Expected cubic mass model, got %v", model)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig should validate, got %v", err)
	}
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"world": {"level": "maps/alley.txt", "treeCapacity": 4},
		"physics": {"staticPolicy": "snap", "massModel": "unit"}
	}`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.World.Level != "maps/alley.txt" {
		t.Errorf("Expected level 'maps/alley.txt', got '%s'", config.World.Level)
	}
	if config.World.TreeCapacity != 4 {
		t.Errorf("Expected TreeCapacity 4, got %d", config.World.TreeCapacity)
	}
	// untouched sections keep their defaults
	if config.Server.TickRate != 60 {
		t.Errorf("Expected default TickRate 60, got %d", config.Server.TickRate)
	}

	policy, model, err := config.Physics.Policies()
	if err != nil {
		t.Fatalf("Policies() failed: %v", err)
	}
	if policy != physics.StaticSnap || model != physics.MassUnit {
		t.Errorf("Expected snap/unit, got %v/%v", policy, model)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	config, err := LoadConfig("/path/that/does/not/exist/config.json")

	if err == nil {
		t.Fatal("Expected error when loading non-existent file, got nil")
	}
	if config != nil {
		t.Error("Expected nil config when file not found, got non-nil")
	}
	if !strings.Contains(err.Error(), "failed to open config file") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid_config.json")
	if err := os.WriteFile(configPath, []byte(`{"world": {"treeCapacity": 4}, invalid json}`), 0o644); err != nil {
		t.Fatalf("Failed to write invalid JSON file: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error when loading invalid JSON, got nil")
	}
	if config != nil {
		t.Error("Expected nil config when JSON is invalid, got non-nil")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "saved.json")
	original := DefaultConfig()
	original.World.Level = "maps/mall.txt"
	original.Rules.FrameLimit = 3600

	if err := SaveConfig(original, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("Loaded config %+v differs from saved %+v", loaded, original)
	}
}

func TestSaveConfig_Errors(t *testing.T) {
	if err := SaveConfig(nil, filepath.Join(t.TempDir(), "nil.json")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil config, got %v", err)
	}
	if err := SaveConfig(DefaultConfig(), "/invalid/path/that/does/not/exist/config.json"); err == nil {
		t.Error("Expected error when saving to invalid path")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*GameConfig)
	}{
		{name: "zero_tile_size", modify: func(c *GameConfig) { c.World.TileSize = 0 }},
		{name: "zero_capacity", modify: func(c *GameConfig) { c.World.TreeCapacity = 0 }},
		{name: "negative_radius", modify: func(c *GameConfig) { c.Agents.Radius = -1 }},
		{name: "zero_wander_interval", modify: func(c *GameConfig) { c.Agents.WanderInterval = 0 }},
		{name: "unknown_policy", modify: func(c *GameConfig) { c.Physics.StaticPolicy = "stick" }},
		{name: "unknown_mass_model", modify: func(c *GameConfig) { c.Physics.MassModel = "square" }},
		{name: "zero_tick_rate", modify: func(c *GameConfig) { c.Server.TickRate = 0 }},
		{name: "negative_connect_limit", modify: func(c *GameConfig) { c.Server.ConnectsPerMinute = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvLevel, "maps/test.txt")
	t.Setenv(EnvTickRate, "30")
	t.Setenv(EnvStaticPolicy, "snap")
	t.Setenv(EnvTreeCapacity, "8")
	t.Setenv(EnvValidateTree, "true")
	t.Setenv(EnvWriteTimeout, "1s")
	t.Setenv(EnvSeed, "not-a-number")

	config := DefaultConfig()
	if err := ApplyEnvironmentOverrides(config); err != nil {
		t.Fatalf("ApplyEnvironmentOverrides failed: %v", err)
	}

	if config.World.Level != "maps/test.txt" {
		t.Errorf("Expected level override, got %s", config.World.Level)
	}
	if config.Server.TickRate != 30 {
		t.Errorf("Expected TickRate 30, got %d", config.Server.TickRate)
	}
	if config.Server.TickInterval() != time.Second/30 {
		t.Errorf("Expected tick interval 1/30s, got %v", config.Server.TickInterval())
	}
	if config.Physics.StaticPolicy != "snap" {
		t.Errorf("Expected snap policy, got %s", config.Physics.StaticPolicy)
	}
	if config.World.TreeCapacity != 8 || !config.World.ValidateTree {
		t.Errorf("Expected tree overrides, got %+v", config.World)
	}
	if config.Server.WriteTimeout() != time.Second {
		t.Errorf("Expected write timeout 1s, got %v", config.Server.WriteTimeout())
	}
	if config.Agents.Seed != 0 {
		t.Errorf("Invalid seed should keep default, got %d", config.Agents.Seed)
	}
}

func TestApplyEnvironmentOverrides_Invalid(t *testing.T) {
	t.Setenv(EnvMassModel, "quadratic")

	if err := ApplyEnvironmentOverrides(DefaultConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestGetEnvHelperFunctions(t *testing.T) {
	t.Setenv("TEST_STRING", "test_value")
	if result := getEnvOrDefault("TEST_STRING", "default"); result != "test_value" {
		t.Errorf("getEnvOrDefault: expected 'test_value', got '%s'", result)
	}
	if result := getEnvOrDefault("OUTBREAK_NONEXISTENT", "default"); result != "default" {
		t.Errorf("getEnvOrDefault: expected 'default', got '%s'", result)
	}

	t.Setenv("TEST_INT", "invalid")
	if result := getEnvAsIntOrDefault("TEST_INT", 10); result != 10 {
		t.Errorf("getEnvAsIntOrDefault with invalid value: expected 10, got %d", result)
	}

	t.Setenv("TEST_BOOL", "invalid")
	if result := getEnvAsBoolOrDefault("TEST_BOOL", true); result != true {
		t.Errorf("getEnvAsBoolOrDefault with invalid value: expected true, got %v", result)
	}

	t.Setenv("TEST_DURATION", "5s")
	if result := getEnvAsDurationOrDefault("TEST_DURATION", time.Second); result != 5*time.Second {
		t.Errorf("getEnvAsDurationOrDefault: expected 5s, got %v", result)
	}
}

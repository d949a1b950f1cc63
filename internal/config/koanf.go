// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/folio/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/folio/config.yaml",
	"/etc/folio/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix scopes the environment variables read by the loader.
const envPrefix = "FOLIO_"

// defaultConfig returns a Config struct with all default values.
// Engine defaults come from recommend.DefaultConfig so both stay in step.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			ContentWeight:               engine.ContentWeight,
			CollaborativeWeight:         engine.CollaborativeWeight,
			NeighborCount:               engine.NeighborCount,
			MinRatingCountForPopularity: engine.MinRatingCountForPopularity,
			ColdStartRatingThreshold:    engine.ColdStartRatingThreshold,
			BookmarksAsAnchors:          engine.BookmarksAsAnchors,
			MaxFeatures:                 engine.MaxFeatures,
			RetrainMinInterval:          engine.RetrainMinInterval,
			Workers:                     engine.Workers,
			DefaultLimit:                engine.Limits.DefaultLimit,
			MaxLimit:                    engine.Limits.MaxLimit,
			TrainTimeout:                30 * time.Minute,
		},
		Snapshot: SnapshotConfig{
			PollInterval: 30 * time.Second,
			Breaker: BreakerConfig{
				FailureThreshold: 3,
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
			},
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "/var/lib/folio/history",
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
			TrainOnStartup:   true,
			EventBuffer:      64,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML file from CONFIG_PATH or DefaultConfigPaths
//  3. Environment Variables: FOLIO_* overrides
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is LoadWithKoanf with an explicit config file path.
// Unlike the search paths, an explicit file must exist.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// FOLIO_RECOMMEND_CONTENT_WEIGHT -> recommend.content_weight
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sections are the top-level config keys; the first underscore after one of
// them separates the section from the field name.
var sections = []string{"logging", "recommend", "snapshot_breaker", "snapshot", "history", "supervisor"}

// envTransformFunc maps FOLIO_SECTION_FIELD_NAME to section.field_name.
// Unknown sections return "" so stray variables never reach the config.
//
// Examples:
//   - FOLIO_RECOMMEND_NEIGHBOR_COUNT -> recommend.neighbor_count
//   - FOLIO_SNAPSHOT_BREAKER_TIMEOUT -> snapshot.breaker.timeout
//   - FOLIO_LOGGING_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	for _, section := range sections {
		field, ok := strings.CutPrefix(key, section+"_")
		if !ok || field == "" {
			continue
		}
		return strings.ReplaceAll(section, "_", ".") + "." + field
	}
	return ""
}

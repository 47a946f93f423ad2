// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// BackendMongo selects the MongoDB document store.
	BackendMongo = "mongo"
	// BackendBadger selects the embedded badger store.
	BackendBadger = "badger"

	// DefaultConfigFile is read when neither --config nor CONFIG_FILE is set.
	DefaultConfigFile = "voicetrack.toml"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds settings for the store and the legacy migration.
type Config struct {
	Store   StoreConfig   `toml:"store"`
	Migrate MigrateConfig `toml:"migrate"`
}

// StoreConfig selects and addresses the target store.
type StoreConfig struct {
	// Backend is "mongo" or "badger".
	// Default: "mongo"
	Backend string `toml:"backend"`

	// URL is the MongoDB connection string.
	// Default: "mongodb://localhost:27017/"
	URL string `toml:"url"`

	// DBName is the MongoDB database holding the students and teachers collections.
	// Default: "studentdb"
	DBName string `toml:"db_name"`

	// BadgerPath is the badger data directory. Empty runs badger in memory.
	BadgerPath string `toml:"badger_path"`

	// OpTimeout bounds every MongoDB call.
	// Default: 5s
	OpTimeout time.Duration `toml:"op_timeout"`
}

// MigrateConfig controls the legacy migration.
type MigrateConfig struct {
	// LegacyPath is the SQLite file written by the legacy application.
	// Default: "student_voice_track.db"
	LegacyPath string `toml:"legacy_path"`

	// PoolSize is the number of rows written concurrently. 1 keeps legacy order.
	PoolSize int `toml:"pool_size"`

	// ReportInterval is the number of rows between progress lines.
	ReportInterval int `toml:"report_interval"`
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:   BackendMongo,
			URL:       "mongodb://localhost:27017/",
			DBName:    "studentdb",
			OpTimeout: 5 * time.Second,
		},
		Migrate: MigrateConfig{
			LegacyPath:     "student_voice_track.db",
			PoolSize:       1,
			ReportInterval: 100,
		},
	}
}

// Load builds a Config from defaults, then the TOML file, then the environment.
//
// If path is empty, CONFIG_FILE is consulted and then DefaultConfigFile; a
// missing file is ignored in that case. An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = getEnv("CONFIG_FILE", DefaultConfigFile)
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := overrideByEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can be used to open a store.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMongo:
		if c.Store.URL == "" {
			return fmt.Errorf("%w: store url is required for mongo", ErrInvalidConfig)
		}
		if c.Store.DBName == "" {
			return fmt.Errorf("%w: store db_name is required for mongo", ErrInvalidConfig)
		}
	case BackendBadger:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Store.OpTimeout <= 0 {
		return fmt.Errorf("%w: store op_timeout must be positive, got %v", ErrInvalidConfig, c.Store.OpTimeout)
	}
	if c.Migrate.PoolSize <= 0 {
		return fmt.Errorf("%w: migrate pool_size must be positive, got %d", ErrInvalidConfig, c.Migrate.PoolSize)
	}
	if c.Migrate.ReportInterval <= 0 {
		return fmt.Errorf("%w: migrate report_interval must be positive, got %d", ErrInvalidConfig, c.Migrate.ReportInterval)
	}
	return nil
}

func overrideByEnv(cfg *Config) error {
	var err error
	cfg.Store.Backend = getEnv("STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.URL = getEnv("MONGO_URL", cfg.Store.URL)
	cfg.Store.DBName = getEnv("DB_NAME", cfg.Store.DBName)
	cfg.Store.BadgerPath = getEnv("BADGER_PATH", cfg.Store.BadgerPath)
	if cfg.Store.OpTimeout, err = getEnvAsDuration("STORE_OP_TIMEOUT", cfg.Store.OpTimeout); err != nil {
		return err
	}

	cfg.Migrate.LegacyPath = getEnv("LEGACY_DB_PATH", cfg.Migrate.LegacyPath)
	if cfg.Migrate.PoolSize, err = getEnvAsInt("MIGRATE_POOL_SIZE", cfg.Migrate.PoolSize); err != nil {
		return err
	}
	if cfg.Migrate.ReportInterval, err = getEnvAsInt("MIGRATE_REPORT_INTERVAL", cfg.Migrate.ReportInterval); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return parsed, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return parsed, nil
}

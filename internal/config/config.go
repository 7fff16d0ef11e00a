// Package config loads the server configuration from a YAML file, a .env file and the
// environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"example.com/candle-predict/internal/chart"
)

// Profile backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr        string `yaml:"addr"`
		CORSOrigins string `yaml:"cors_origins"`
		DataDir     string `yaml:"data_dir"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Game struct {
		MinCandles    int           `yaml:"min_candles"`
		ContextLength int           `yaml:"context_length"`
		SessionTTL    time.Duration `yaml:"session_ttl"`
		Seed          uint64        `yaml:"seed"`
	} `yaml:"game"`
	Profile struct {
		Backend       string `yaml:"backend"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
	} `yaml:"profile"`
	History struct {
		File string `yaml:"file"`
		Max  int    `yaml:"max"`
	} `yaml:"history"`
	Database struct {
		SQLitePath string        `yaml:"sqlite_path"`
		Retention  time.Duration `yaml:"retention"`
	} `yaml:"database"`
	Schedule struct {
		CleanupCron string `yaml:"cleanup_cron"`
		PruneCron   string `yaml:"prune_cron"`
		RankingCron string `yaml:"ranking_cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides,
// then fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// .env never overrides variables already set in the process environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnvString("CANDLE_ADDR", c.Server.Addr)
	c.Server.CORSOrigins = getEnvString("CANDLE_CORS_ORIGINS", c.Server.CORSOrigins)
	c.Server.DataDir = getEnvString("CANDLE_DATA_DIR", c.Server.DataDir)

	c.Log.Level = getEnvString("LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = getEnvBool("LOG_PRETTY", c.Log.Pretty)

	c.Game.MinCandles = getEnvInt("GAME_MIN_CANDLES", c.Game.MinCandles)
	c.Game.ContextLength = getEnvInt("GAME_CONTEXT_LENGTH", c.Game.ContextLength)
	c.Game.SessionTTL = getEnvDuration("GAME_SESSION_TTL", c.Game.SessionTTL)
	if v := os.Getenv("GAME_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Game.Seed = seed
		}
	}

	c.Profile.Backend = getEnvString("PROFILE_BACKEND", c.Profile.Backend)
	c.Profile.RedisAddr = getEnvString("REDIS_ADDR", c.Profile.RedisAddr)
	c.Profile.RedisPassword = getEnvString("REDIS_PASSWORD", c.Profile.RedisPassword)
	c.Profile.RedisDB = getEnvInt("REDIS_DB", c.Profile.RedisDB)

	c.History.File = getEnvString("HISTORY_FILE", c.History.File)
	c.History.Max = getEnvInt("HISTORY_MAX", c.History.Max)

	c.Database.SQLitePath = getEnvString("SQLITE_PATH", c.Database.SQLitePath)
	c.Database.Retention = getEnvDuration("ROUND_RETENTION", c.Database.Retention)

	c.Schedule.CleanupCron = getEnvString("CRON_CLEANUP", c.Schedule.CleanupCron)
	c.Schedule.PruneCron = getEnvString("CRON_PRUNE", c.Schedule.PruneCron)
	c.Schedule.RankingCron = getEnvString("CRON_RANKING", c.Schedule.RankingCron)
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.CORSOrigins == "" {
		c.Server.CORSOrigins = "*"
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = "data"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Game.MinCandles == 0 {
		c.Game.MinCandles = 15
	}
	if c.Game.ContextLength == 0 {
		c.Game.ContextLength = 5
	}
	if c.Game.SessionTTL == 0 {
		c.Game.SessionTTL = 30 * time.Minute
	}
	if c.Profile.Backend == "" {
		c.Profile.Backend = BackendFile
	}
	if c.Profile.RedisAddr == "" {
		c.Profile.RedisAddr = "localhost:6379"
	}
	if c.History.File == "" {
		c.History.File = "rounds/history.jsonl"
	}
	if c.History.Max == 0 {
		c.History.Max = 1000
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "rounds.db"
	}
	if c.Database.Retention == 0 {
		c.Database.Retention = 30 * 24 * time.Hour
	}
	if c.Schedule.CleanupCron == "" {
		c.Schedule.CleanupCron = "@every 1m"
	}
	if c.Schedule.PruneCron == "" {
		c.Schedule.PruneCron = "0 30 3 * * *"
	}
	if c.Schedule.RankingCron == "" {
		c.Schedule.RankingCron = "@every 5m"
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Game.MinCandles < chart.DefaultMinLength {
		return fmt.Errorf("game.min_candles must be at least %d, got %d", chart.DefaultMinLength, c.Game.MinCandles)
	}
	if c.Game.ContextLength < 0 || c.Game.ContextLength > chart.MaxContextLength {
		return fmt.Errorf("game.context_length must be within 0..%d, got %d", chart.MaxContextLength, c.Game.ContextLength)
	}
	if c.Game.SessionTTL < 0 {
		return fmt.Errorf("game.session_ttl must not be negative")
	}
	switch c.Profile.Backend {
	case BackendFile:
	case BackendRedis:
		if c.Profile.RedisAddr == "" {
			return fmt.Errorf("profile.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("profile.backend must be %q or %q, got %q", BackendFile, BackendRedis, c.Profile.Backend)
	}
	if c.History.Max < 0 {
		return fmt.Errorf("history.max must not be negative")
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getEnvBool reads a boolean from environment variable.
func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	v = strings.ToLower(v)
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

// getEnvInt reads an integer from environment variable.
func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return defaultVal
}

// getEnvDuration reads a duration from environment variable.
// Supports both "5m" format and plain number "5" (interpreted as minutes).
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if mins, err := strconv.Atoi(v); err == nil && mins > 0 {
		return time.Duration(mins) * time.Minute
	}
	return defaultVal
}

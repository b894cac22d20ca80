package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/learnflow/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

type Config struct {
	Addr     string `yaml:"addr"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	CacheBackend  string `yaml:"cache_backend"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	CoachingCardTTLHours int `yaml:"coaching_card_ttl_hours"`
	ColdStartSessions    int `yaml:"cold_start_sessions"`
	AssessmentEventLimit int `yaml:"assessment_event_limit"`

	GenAIAPIKey string `yaml:"genai_api_key"`
	GenAIModel  string `yaml:"genai_model"`
}

func defaults() Config {
	return Config{
		Addr:                 ":8080",
		DBPath:               "file:learnflow.db",
		LogLevel:             "INFO",
		CacheBackend:         CacheBackendSQLite,
		RedisAddr:            "localhost:6379",
		CoachingCardTTLHours: 24,
		ColdStartSessions:    5,
		AssessmentEventLimit: 5,
		GenAIModel:           "gemini-2.5-flash",
	}
}

// Load reads configuration from a .env file (if present), an optional YAML
// file named by CONFIG_FILE, and environment variables. Environment values
// win over the file, which wins over defaults.
func Load() (Config, error) {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Addr = envOr("ADDR", cfg.Addr)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogJSON = envBoolOr("LOG_JSON", cfg.LogJSON)
	cfg.CacheBackend = strings.ToLower(envOr("CACHE_BACKEND", cfg.CacheBackend))
	cfg.RedisAddr = envOr("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = envOr("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = envIntOr("REDIS_DB", cfg.RedisDB)
	cfg.CoachingCardTTLHours = envIntOr("COACHING_CARD_TTL_HOURS", cfg.CoachingCardTTLHours)
	cfg.ColdStartSessions = envIntOr("COLD_START_SESSIONS", cfg.ColdStartSessions)
	cfg.AssessmentEventLimit = envIntOr("ASSESSMENT_EVENT_LIMIT", cfg.AssessmentEventLimit)
	cfg.GenAIAPIKey = envOr("GENAI_API_KEY", cfg.GenAIAPIKey)
	cfg.GenAIModel = envOr("GENAI_MODEL", cfg.GenAIModel)

	return cfg, nil
}

// mergeFile overlays the non-zero values of a YAML file onto cfg.
func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	// Unmarshal leaves fields absent from the file untouched.
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// CoachingCardTTL is the lifetime of a cached coaching card.
func (c Config) CoachingCardTTL() time.Duration {
	return time.Duration(c.CoachingCardTTLHours) * time.Hour
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	switch c.CacheBackend {
	case CacheBackendSQLite:
	case CacheBackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR cannot be empty when CACHE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND %q must be sqlite or redis", c.CacheBackend))
	}
	if c.RedisDB < 0 {
		errs = append(errs, errors.New("REDIS_DB cannot be negative"))
	}
	if c.CoachingCardTTLHours < 1 {
		errs = append(errs, errors.New("COACHING_CARD_TTL_HOURS must be at least 1"))
	}
	if c.ColdStartSessions < 0 {
		errs = append(errs, errors.New("COLD_START_SESSIONS cannot be negative"))
	}
	if c.AssessmentEventLimit < 1 {
		errs = append(errs, errors.New("ASSESSMENT_EVENT_LIMIT must be at least 1"))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		logger.Warn("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		logger.Warn("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

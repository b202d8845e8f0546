// Package config loads process configuration from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of the server.
type Config struct {
	Port           string        `yaml:"port"`
	LogLevel       string        `yaml:"log_level"`
	DefaultLocale  string        `yaml:"default_locale"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	QuizCatalog    string        `yaml:"quiz_catalog"`
	TickInterval   time.Duration `yaml:"tick_interval"`
	AudioCues      bool          `yaml:"audio_cues"`
	NATS           NATSConfig    `yaml:"nats"`
}

// NATSConfig configures the JetStream event relay. An empty URL disables it.
type NATSConfig struct {
	URL           string `yaml:"url"`
	Stream        string `yaml:"stream"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:           "8080",
		LogLevel:       "info",
		DefaultLocale:  "en",
		AllowedOrigins: []string{"*"},
		TickInterval:   time.Second,
		AudioCues:      true,
		NATS: NATSConfig{
			Stream:        "ROOM_EVENTS",
			SubjectPrefix: "rooms.events",
		},
	}
}

// Load reads .env when present, then CONFIG_FILE when set, then the
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.DefaultLocale = getEnv("DEFAULT_LOCALE", cfg.DefaultLocale)
	cfg.AllowedOrigins = getEnvAsList("ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.QuizCatalog = getEnv("QUIZ_CATALOG", cfg.QuizCatalog)
	cfg.TickInterval = getEnvAsDuration("TICK_INTERVAL", cfg.TickInterval)
	cfg.AudioCues = getEnvAsBool("AUDIO_CUES", cfg.AudioCues)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	cfg.NATS.Stream = getEnv("NATS_STREAM", cfg.NATS.Stream)
	cfg.NATS.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", cfg.NATS.SubjectPrefix)
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.NATS.URL != "" && (c.NATS.Stream == "" || c.NATS.SubjectPrefix == "") {
		return fmt.Errorf("nats stream and subject prefix are required when NATS_URL is set")
	}
	return nil
}

// Level returns the zerolog level, defaulting to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// RelayEnabled reports whether the NATS relay should run.
func (c Config) RelayEnabled() bool {
	return c.NATS.URL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

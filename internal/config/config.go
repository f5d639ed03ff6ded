package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the AuraMed server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Engine   EngineConfig
	Jobs     JobsConfig
	Chat     ChatConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// EngineConfig points at the external image-analysis engine.
type EngineConfig struct {
	BaseURL string
	Timeout time.Duration
}

// JobsConfig controls the client-facing poll loop.
type JobsConfig struct {
	PollInterval time.Duration
	PollMaxWait  time.Duration
}

type ChatConfig struct {
	HistoryWindow int
	Ollama        OllamaConfig
	Gemini        GeminiConfig
}

type OllamaConfig struct {
	BaseURL        string
	Model          string
	ProbeTimeout   time.Duration
	RequestTimeout time.Duration
}

// GeminiConfig configures the paid cloud fallback. An empty APIKey disables
// the cloud provider entirely; it is not an error.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message if any required value
// is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("AURAMED_PORT", 8080),
			Env:  envString("AURAMED_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Engine: EngineConfig{
			BaseURL: os.Getenv("ENGINE_BASE_URL"),
			Timeout: envDuration("ENGINE_TIMEOUT", 30*time.Second),
		},
		Jobs: JobsConfig{
			PollInterval: envDuration("JOB_POLL_INTERVAL", time.Second),
			PollMaxWait:  envDuration("JOB_POLL_MAX_WAIT", 10*time.Minute),
		},
		Chat: ChatConfig{
			HistoryWindow: envInt("CHAT_HISTORY_WINDOW", 15),
			Ollama: OllamaConfig{
				BaseURL:        envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:          envString("OLLAMA_MODEL", "llama3"),
				ProbeTimeout:   envDuration("OLLAMA_PROBE_TIMEOUT", time.Second),
				RequestTimeout: envDuration("OLLAMA_REQUEST_TIMEOUT", 60*time.Second),
			},
			Gemini: GeminiConfig{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  envString("GEMINI_MODEL", "gemini-1.5-flash"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Engine.BaseURL == "" {
		return fmt.Errorf("ENGINE_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Engine.BaseURL, "http://") && !strings.HasPrefix(c.Engine.BaseURL, "https://") {
		return fmt.Errorf("ENGINE_BASE_URL must start with http:// or https://, got %q", c.Engine.BaseURL)
	}

	if c.Jobs.PollInterval <= 0 {
		return fmt.Errorf("JOB_POLL_INTERVAL must be positive")
	}
	if c.Jobs.PollMaxWait < c.Jobs.PollInterval {
		return fmt.Errorf("JOB_POLL_MAX_WAIT must be at least JOB_POLL_INTERVAL")
	}

	if c.Chat.HistoryWindow <= 0 {
		return fmt.Errorf("CHAT_HISTORY_WINDOW must be positive")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

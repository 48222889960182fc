package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"ai_email_copywriter/store"
)

const (
	DefaultPath       = "config/config.json"
	DefaultServerAddr = ":8080"
	DefaultUserID     = "1"
	DefaultProvider   = "gemini"
	DefaultModel      = "gemini-1.5-flash"
	DefaultLogMode    = "development"
)

// Config is the service configuration. The JSON file is read first, then
// environment variables override it.
type Config struct {
	ServerAddr string       `json:"server_addr,omitempty" env:"COPYWRITER_SERVER_ADDR"`
	UserID     string       `json:"user_id,omitempty" env:"COPYWRITER_USER_ID"`
	LLM        LLMConfig    `json:"llm"`
	Store      store.Config `json:"store"`
	Log        LogConfig    `json:"log"`
}

// LLMConfig selects the model provider. The API key may stay empty when
// clients send their own with each request.
type LLMConfig struct {
	Provider string `json:"provider,omitempty" env:"COPYWRITER_LLM_PROVIDER"`
	Model    string `json:"model,omitempty" env:"COPYWRITER_LLM_MODEL"`
	APIKey   string `json:"api_key,omitempty" env:"COPYWRITER_LLM_API_KEY"`
	BaseURL  string `json:"base_url,omitempty" env:"COPYWRITER_LLM_BASE_URL"`
}

type LogConfig struct {
	Mode string `json:"mode,omitempty" env:"COPYWRITER_LOG_MODE"`
}

// LoadConfig reads the JSON file at path (skipped when it does not exist),
// applies a .env file if present, then environment overrides and defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	// .env is optional
	_ = godotenv.Load()

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.loadDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadDefaults() {
	if c.ServerAddr == "" {
		c.ServerAddr = DefaultServerAddr
	}
	if c.UserID == "" {
		c.UserID = DefaultUserID
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.Store.Driver == "" {
		c.Store.Driver = store.DriverMemory
	}
	if c.Log.Mode == "" {
		c.Log.Mode = DefaultLogMode
	}
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "gemini", "openai", "mock":
	case "deepseek":
		// DeepSeek only exposes an OpenAI-compatible API behind a base_url.
		if c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	switch c.Store.Driver {
	case store.DriverMemory:
	case store.DriverPostgres:
		if c.Store.PostgresURL == "" {
			return errors.New("store driver postgres requires postgres_url")
		}
	case store.DriverRedis:
		if c.Store.RedisURL == "" {
			return errors.New("store driver redis requires redis_url")
		}
	default:
		return fmt.Errorf("store driver %s not supported", c.Store.Driver)
	}
	return nil
}

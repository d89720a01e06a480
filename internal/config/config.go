// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// BaseURL is the public URL the call provider reaches the webhooks on,
	// e.g. https://callbot.example.com
	BaseURL string `yaml:"base_url"`
	Voice   string `yaml:"voice"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	OpenAIKey       string        `yaml:"openai_key"`
	DefaultModel    string        `yaml:"default_model"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Temperature     float32       `yaml:"temperature"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type ConversationConfig struct {
	ListenTimeoutEarly time.Duration `yaml:"listen_timeout_early"`
	ListenTimeoutLate  time.Duration `yaml:"listen_timeout_late"`
	// IdleTTL enables the idle-session sweeper when > 0. Left zero the store
	// grows for the process lifetime, matching the minimal design.
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type AdminConfig struct {
	APIKey string `yaml:"api_key"`
}

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	AI           AIConfig           `yaml:"ai"`
	Twilio       TwilioConfig       `yaml:"twilio"`
	Conversation ConversationConfig `yaml:"conversation"`
	Admin        AdminConfig        `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Voice == "" {
		cfg.Server.Voice = "alice"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gemini-2.0-flash"
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 120
	}
	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.RequestTimeout <= 0 {
		cfg.AI.RequestTimeout = 5 * time.Second
	}
	if cfg.Conversation.ListenTimeoutEarly <= 0 {
		cfg.Conversation.ListenTimeoutEarly = 5 * time.Second
	}
	if cfg.Conversation.ListenTimeoutLate <= 0 {
		cfg.Conversation.ListenTimeoutLate = 3 * time.Second
	}
	if cfg.Conversation.SweepInterval <= 0 {
		cfg.Conversation.SweepInterval = time.Minute
	}

	// Minimal validation
	if cfg.Server.BaseURL == "" {
		return nil, errors.New("server.base_url is required")
	}
	if cfg.AI.GeminiKey == "" && cfg.AI.OpenAIKey == "" && !dev {
		return nil, errors.New("one of ai.gemini_key or ai.openai_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

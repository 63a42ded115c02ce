package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quizdeck/quizdeck/go/internal/session"
)

// Config holds the full server configuration. Values come from an optional
// YAML file with environment variable overrides on top.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Host struct {
		Secret string `yaml:"secret"`
	} `yaml:"host"`
	Timers struct {
		AnswerMs      int `yaml:"answer_ms"`
		FinalWagerMs  int `yaml:"final_wager_ms"`
		FinalAnswerMs int `yaml:"final_answer_ms"`
	} `yaml:"timers"`
	Store struct {
		// Backend is "file" or "postgres".
		Backend string `yaml:"backend"`
		File    string `yaml:"file"`
	} `yaml:"store"`
	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Host.Secret = "admin"
	cfg.Timers.AnswerMs = 5000
	cfg.Timers.FinalWagerMs = 30000
	cfg.Timers.FinalAnswerMs = 30000
	cfg.Store.Backend = "file"
	cfg.Store.File = "games.json"
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.NATS.SubjectPrefix = "quizdeck.events"
	return cfg
}

// loadConfig reads the YAML file if present and applies env overrides.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Host.Secret = getEnv("HOST_SECRET", cfg.Host.Secret)
	cfg.Timers.AnswerMs = getEnvAsInt("ANSWER_TIMEOUT_MS", cfg.Timers.AnswerMs)
	cfg.Timers.FinalWagerMs = getEnvAsInt("FINAL_WAGER_TIMEOUT_MS", cfg.Timers.FinalWagerMs)
	cfg.Timers.FinalAnswerMs = getEnvAsInt("FINAL_ANSWER_TIMEOUT_MS", cfg.Timers.FinalAnswerMs)
	cfg.Store.Backend = getEnv("BOARD_STORE", cfg.Store.Backend)
	cfg.Store.File = getEnv("BOARD_FILE", cfg.Store.File)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	if v := os.Getenv("NATS_ENABLED"); v != "" {
		cfg.NATS.Enabled = v == "true" || v == "1"
	}
	return cfg, nil
}

// SessionConfig converts the timer settings for the controller.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		AnswerTimeout:      time.Duration(c.Timers.AnswerMs) * time.Millisecond,
		FinalWagerTimeout:  time.Duration(c.Timers.FinalWagerMs) * time.Millisecond,
		FinalAnswerTimeout: time.Duration(c.Timers.FinalAnswerMs) * time.Millisecond,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// internal/config/config.go
package config

import (
	"strings"
	"sync"

	"github.com/spf13/viper"

	apperrors "portfolio-service/internal/errors"
)

// Config holds all configuration for the application. It is loaded once at
// startup and is the single source of process-wide settings; there is no
// settings row in the database with a pinned primary key.
type Config struct {
	mu sync.RWMutex

	LogLevel         string `mapstructure:"LOG_LEVEL"`
	HTTPAddr         string `mapstructure:"HTTP_ADDR"`
	DBURL            string `mapstructure:"DB_URL"`
	GithubUsername   string `mapstructure:"GITHUB_USERNAME"`
	GithubToken      string `mapstructure:"GITHUB_TOKEN"`
	OpenAIAPIKey     string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel      string `mapstructure:"OPENAI_MODEL"`
	CurrentIndustry  string `mapstructure:"CURRENT_INDUSTRY"`
	CommitFetchLimit int    `mapstructure:"COMMIT_FETCH_LIMIT"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Reload re-reads configuration from the same sources, replacing the
// current values in place. Safe for concurrent readers.
func (c *Config) Reload() error {
	return c.load()
}

func (c *Config) load() error {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o")
	viper.SetDefault("COMMIT_FETCH_LIMIT", 10)

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{
		"LOG_LEVEL", "HTTP_ADDR", "DB_URL", "GITHUB_USERNAME", "GITHUB_TOKEN",
		"OPENAI_API_KEY", "OPENAI_MODEL", "CURRENT_INDUSTRY", "COMMIT_FETCH_LIMIT",
	} {
		_ = viper.BindEnv(key)
	}

	var next Config
	if err := viper.Unmarshal(&next); err != nil {
		return err
	}

	// Validate required fields
	if next.DBURL == "" {
		return &apperrors.ErrMissingConfig{Field: "DB_URL"}
	}
	if next.GithubUsername == "" {
		return &apperrors.ErrMissingConfig{Field: "GITHUB_USERNAME"}
	}
	if next.CommitFetchLimit <= 0 || next.CommitFetchLimit > 100 {
		next.CommitFetchLimit = 10
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.LogLevel = next.LogLevel
	c.HTTPAddr = next.HTTPAddr
	c.DBURL = next.DBURL
	c.GithubUsername = next.GithubUsername
	c.GithubToken = next.GithubToken
	c.OpenAIAPIKey = next.OpenAIAPIKey
	c.OpenAIModel = next.OpenAIModel
	c.CurrentIndustry = next.CurrentIndustry
	c.CommitFetchLimit = next.CommitFetchLimit
	return nil
}

// RankingCredential returns the API key for the ranking provider. An empty
// key means ranking generation must fail before any network call. Read at
// generation time, not startup, so a Reload takes effect on the next run.
func (c *Config) RankingCredential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.OpenAIAPIKey
}

// RankingModel returns the chat model used for ranking generation.
func (c *Config) RankingModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.OpenAIModel
}

// CurrentIndustryLabel returns the operator-declared current industry,
// used to seed the ranking settings when they are still blank.
func (c *Config) CurrentIndustryLabel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.CurrentIndustry
}

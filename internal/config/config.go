package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles are loaded, when present, before the environment is parsed.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config holds the intake server configuration
type Config struct {
	HTTPPort string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	GitHub    GitHubConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// GitHubConfig configures the issue tracker the submissions are relayed to.
type GitHubConfig struct {
	Token        string        `env:"GITHUB_TOKEN"`
	OwnerDefault string        `env:"GITHUB_OWNER" envDefault:"aoz-jcf-1165"`
	RepoDefault  string        `env:"GITHUB_REPO" envDefault:"Ary-event-survey-web-2025.12"`
	APIBaseURL   string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	Label        string        `env:"GITHUB_LABEL" envDefault:"survey"`
	UserAgent    string        `env:"GITHUB_USER_AGENT" envDefault:"surveyrelay"`
	Timeout      time.Duration `env:"GITHUB_TIMEOUT" envDefault:"15s"`
}

// HasToken returns true if an API token is configured
func (c GitHubConfig) HasToken() bool {
	return strings.TrimSpace(c.Token) != ""
}

// IssuesURL returns the issues collection endpoint of the default repository.
func (c GitHubConfig) IssuesURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/issues", strings.TrimRight(c.APIBaseURL, "/"), c.OwnerDefault, c.RepoDefault)
}

// RateLimitConfig configures the submit endpoint limiter.
type RateLimitConfig struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	PerMinute int64  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURI  string `env:"REDIS_URI" envDefault:"localhost:6379"`
}

// Validate checks the rate limit configuration for errors
func (r RateLimitConfig) Validate() error {
	if r.PerMinute <= 0 {
		return fmt.Errorf("rate limit per minute must be positive, got %d", r.PerMinute)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURI == "" {
		return fmt.Errorf("REDIS_URI is required when rate limit storage is 'redis'")
	}
	return nil
}

// CORSConfig holds the cross-origin headers set on every response.
type CORSConfig struct {
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	AllowedMethods string `env:"CORS_ALLOWED_METHODS" envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders string `env:"CORS_ALLOWED_HEADERS" envDefault:"Content-Type"`
}

// LoadEnv loads the env files that exist. Variables already set win.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads the configuration from env files and the environment.
func Load() (*Config, error) {
	if _, err := LoadEnv(DefaultEnvFiles); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.GitHub.Token = strings.TrimSpace(cfg.GitHub.Token)
	cfg.GitHub.OwnerDefault = strings.TrimSpace(cfg.GitHub.OwnerDefault)
	cfg.GitHub.RepoDefault = strings.TrimSpace(cfg.GitHub.RepoDefault)

	if cfg.RateLimit.Enabled {
		if err := cfg.RateLimit.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

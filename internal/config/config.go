package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"infinite-experiment/skyboard/internal/constants"
)

// Config holds all configuration for the dashboard service
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"SKYBOARD_PORT" envDefault:"3000"`

	// Flights API
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:5000"`

	// Cache backend for flash notifications: memory or redis
	CacheBackend  string `env:"CACHE_BACKEND" envDefault:"memory"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	FlashTTL     time.Duration `env:"FLASH_TTL" envDefault:"4s"`
	WorkspaceTTL time.Duration `env:"WORKSPACE_TTL" envDefault:"30m"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	DisplayTimezone string `env:"DISPLAY_TIMEZONE" envDefault:"Local"`
	DefaultTheme    string `env:"DEFAULT_THEME" envDefault:"light"`
}

// Load reads .env files when present and parses the environment
func Load() (*Config, error) {
	if err := loadEnvFiles(".env", ".env.local"); err != nil {
		return nil, err
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFiles(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		return fmt.Errorf("CACHE_BACKEND must be 'memory' or 'redis', got '%s'", c.CacheBackend)
	}
	if c.FlashTTL <= 0 {
		return fmt.Errorf("FLASH_TTL must be positive, got %s", c.FlashTTL)
	}
	if c.WorkspaceTTL <= 0 {
		return fmt.Errorf("WORKSPACE_TTL must be positive, got %s", c.WorkspaceTTL)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive, got rps=%v burst=%d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if !constants.ValidThemes[constants.Theme(c.DefaultTheme)] {
		return fmt.Errorf("DEFAULT_THEME %q is not a known theme", c.DefaultTheme)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves DisplayTimezone
func (c *Config) Location() (*time.Location, error) {
	if c.DisplayTimezone == "" || c.DisplayTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// ListenAddr returns the HTTP listen address
func (c *Config) ListenAddr() string {
	return ":" + c.Port
}

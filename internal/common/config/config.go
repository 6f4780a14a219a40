// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Backend BackendConfig `mapstructure:"backend"`
	Widget  WidgetConfig  `mapstructure:"widget"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig points the widget at the onboarding / recommendation / FAQ service.
type BackendConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds, per request
	MaxRetries int    `mapstructure:"max_retries"`
}

// WidgetConfig holds conversation pacing and copy.
type WidgetConfig struct {
	WelcomeDelay    int    `mapstructure:"welcome_delay"` // milliseconds
	StepDelay       int    `mapstructure:"step_delay"`    // milliseconds
	SuggestionCount int    `mapstructure:"suggestion_count"`
	Greeting        string `mapstructure:"greeting"`
	Seed            uint64 `mapstructure:"seed"` // 0 picks a random seed
}

// CacheConfig selects where onboarding options and the FAQ list are cached.
type CacheConfig struct {
	Driver string      `mapstructure:"driver"` // memory, redis, none
	TTL    int         `mapstructure:"ttl"`    // milliseconds
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MetricsConfig enables the Prometheus endpoint when Address is set.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
	CacheDriverNone   = "none"
)

// String renders the redis target without the password.
func (r RedisConfig) String() string {
	return fmt.Sprintf("redis://%s/%d", r.Address, r.DB)
}

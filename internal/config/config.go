// Package config loads service configuration from YAML, the environment and an optional .env file.
package config

import (
	"time"

	"github.com/maxviazov/pokemon-battle-service/internal/logger"
)

type Config struct {
	App        AppConfig           `mapstructure:"app"`
	Logger     logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	JWT        JWTConfig           `mapstructure:"jwt"`
	HTTP       HTTPConfig          `mapstructure:"http"`
	Monitoring MonitoringConfig    `mapstructure:"monitoring"`
	Seed       SeedConfig          `mapstructure:"seed"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name" validate:"required"`
	Version         string        `mapstructure:"version" validate:"required"`
	Env             string        `mapstructure:"env" validate:"oneof=dev staging prod"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// JWTConfig holds token settings. The secret has no default and must come from the environment or the file.
type JWTConfig struct {
	Secret        string `mapstructure:"secret" validate:"required,min=32"`
	Issuer        string `mapstructure:"issuer" validate:"required"`
	Audience      string `mapstructure:"audience" validate:"required"`
	ExpiryMinutes int    `mapstructure:"expiry_minutes" validate:"min=1"`
	BcryptCost    int    `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
}

// Expiry is the token lifetime.
func (j JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryMinutes) * time.Minute
}

type HTTPConfig struct {
	CORSOrigins []string `mapstructure:"cors_origins"`
	// LoginRateLimit is the number of login attempts allowed per client IP per minute; 0 disables the limiter.
	LoginRateLimit int           `mapstructure:"login_rate_limit" validate:"min=0"`
	LoginBurst     int           `mapstructure:"login_burst" validate:"min=0"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
}

type MonitoringConfig struct {
	// ReportSchedule is a cron spec for the periodic statistics log line; empty disables it.
	ReportSchedule string `mapstructure:"report_schedule"`
	// ReportEvery logs the statistics every N requests; 0 disables it.
	ReportEvery    int           `mapstructure:"report_every" validate:"min=0"`
	SlowRequest    time.Duration `mapstructure:"slow_request" validate:"gte=0"`
	MetricsEnabled bool          `mapstructure:"metrics_enabled"`
}

// SeedConfig controls the demo data. A seeded account is skipped when its password is empty.
type SeedConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	AdminPassword   string `mapstructure:"admin_password" validate:"omitempty,min=6"`
	TrainerPassword string `mapstructure:"trainer_password" validate:"omitempty,min=6"`
}

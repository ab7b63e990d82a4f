package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadDotEnv loads KEY=VALUE pairs from files into the process environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the YAML file at path and applies APP_* environment overrides (app.port -> APP_APP_PORT,
// jwt.secret -> APP_JWT_SECRET). An empty path means environment and defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// the logger follows the app unless configured on its own
	if config.Logger.Env == "" {
		config.Logger.Env = config.App.Env
	}
	if config.Logger.ServiceName == "" {
		config.Logger.ServiceName = config.App.Name
	}
	if config.Logger.ServiceVersion == "" {
		config.Logger.ServiceVersion = config.App.Version
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pokemon-battle-service")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", "10s")

	v.SetDefault("logger.level", "")
	v.SetDefault("logger.format", "")
	v.SetDefault("logger.output_target", "")
	v.SetDefault("logger.env", "")

	// no default secret: registered so APP_JWT_SECRET is picked up by Unmarshal
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "pokemon-battle-service")
	v.SetDefault("jwt.audience", "pokemon-battle-clients")
	v.SetDefault("jwt.expiry_minutes", 60)
	v.SetDefault("jwt.bcrypt_cost", 10)

	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.login_rate_limit", 10)
	v.SetDefault("http.login_burst", 5)
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "15s")

	v.SetDefault("monitoring.report_schedule", "@every 30s")
	v.SetDefault("monitoring.report_every", 10)
	v.SetDefault("monitoring.slow_request", "1s")
	v.SetDefault("monitoring.metrics_enabled", true)

	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.admin_password", "")
	v.SetDefault("seed.trainer_password", "")
}

package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "keygate/internal/shared/config"
)

type Config struct {
	Server      sharedConfig.ServerConfig      `mapstructure:"server"`
	Database    sharedConfig.DatabaseConfig    `mapstructure:"database"`
	Logger      sharedConfig.LoggerConfig      `mapstructure:"logger"`
	Redis       sharedConfig.RedisConfig       `mapstructure:"redis"`
	Email       sharedConfig.EmailConfig       `mapstructure:"email"`
	Gateway     sharedConfig.GatewayConfig     `mapstructure:"gateway"`
	Admin       sharedConfig.AdminConfig       `mapstructure:"admin"`
	Entitlement sharedConfig.EntitlementConfig `mapstructure:"entitlement"`
	Session     sharedConfig.SessionConfig     `mapstructure:"session"`
	RateLimit   sharedConfig.RateLimitConfig   `mapstructure:"rate_limit"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("KEYGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.base_url", "http://localhost:8080")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "keygate_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Email defaults
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 1025)
	viper.SetDefault("email.smtp_user", "")
	viper.SetDefault("email.smtp_password", "")
	viper.SetDefault("email.from_address", "noreply@keygate.local")
	viper.SetDefault("email.from_name", "Keygate")
	viper.SetDefault("email.admin_address", "")
	viper.SetDefault("email.download_url", "http://localhost:8080/download")

	// Gateway defaults (secrets must be configured)
	viper.SetDefault("gateway.api_key", "")
	viper.SetDefault("gateway.webhook_secret", "change-me-in-production")
	viper.SetDefault("gateway.endpoint", "")
	viper.SetDefault("gateway.tolerance_seconds", 300)

	// Admin defaults
	viper.SetDefault("admin.password_hash", "")
	viper.SetDefault("admin.jwt_secret", "change-me-in-production")
	viper.SetDefault("admin.token_exp_minutes", 60)

	// Entitlement defaults
	viper.SetDefault("entitlement.grace_period_hours", 5)

	// Session defaults
	viper.SetDefault("session.heartbeat_timeout_seconds", 60)
	viper.SetDefault("session.sweep_interval_minutes", 5)

	// Rate limit defaults
	viper.SetDefault("rate_limit.requests_per_hour", 120)
}

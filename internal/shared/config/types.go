package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	AdminAddress string `mapstructure:"admin_address"`
	DownloadURL  string `mapstructure:"download_url"`
}

// GatewayConfig configures the payment gateway integration.
// WebhookSecret signs callback payloads; APIKey authenticates reconcile queries.
type GatewayConfig struct {
	APIKey           string `mapstructure:"api_key"`
	WebhookSecret    string `mapstructure:"webhook_secret"`
	Endpoint         string `mapstructure:"endpoint"`
	ToleranceSeconds int    `mapstructure:"tolerance_seconds"`
}

type AdminConfig struct {
	PasswordHash    string `mapstructure:"password_hash"`
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenExpMinutes int    `mapstructure:"token_exp_minutes"`
}

type EntitlementConfig struct {
	GracePeriodHours int `mapstructure:"grace_period_hours"`
}

type SessionConfig struct {
	HeartbeatTimeoutSeconds int `mapstructure:"heartbeat_timeout_seconds"`
	SweepIntervalMinutes    int `mapstructure:"sweep_interval_minutes"`
}

type RateLimitConfig struct {
	RequestsPerHour int `mapstructure:"requests_per_hour"`
}

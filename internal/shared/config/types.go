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

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// Enabled toggles the redis-backed rate limiter. When false the
	// in-memory limiter is used (single-instance deployments only).
	Enabled bool `mapstructure:"enabled"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PayFastConfig holds credentials for the PayFast ITN webhook channel.
// A provider with an empty merchant ID is treated as not configured and is
// never registered.
type PayFastConfig struct {
	MerchantID  string `mapstructure:"merchant_id"`
	MerchantKey string `mapstructure:"merchant_key"`
	Passphrase  string `mapstructure:"passphrase"`
}

// PaystackConfig holds credentials for the Paystack webhook channel.
type PaystackConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type ProvidersConfig struct {
	PayFast  PayFastConfig  `mapstructure:"payfast"`
	Paystack PaystackConfig `mapstructure:"paystack"`
}

type SubscriptionConfig struct {
	// ExpirySweepHours controls how often the entitlement expiry sweep runs.
	ExpirySweepHours int `mapstructure:"expiry_sweep_hours"`
	// WebhookRetrySweepMinutes controls how often recorded-but-unprocessed
	// webhook events are reprocessed.
	WebhookRetrySweepMinutes int `mapstructure:"webhook_retry_sweep_minutes"`
}

type RateLimitConfig struct {
	WebhookPerMinute int `mapstructure:"webhook_per_minute"`
	SeatOpsPerMinute int `mapstructure:"seat_ops_per_minute"`
}

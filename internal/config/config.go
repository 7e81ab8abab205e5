package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Notify    NotifyConfig    `mapstructure:"notify" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lt=44640"`         // Max 31 days
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=87600"` // Max ~60 days
	CookieSecure                bool   `mapstructure:"cookie_secure"`
}

// RateLimitConfig bounds how often a single client IP may call the login endpoint.
type RateLimitConfig struct {
	LoginPerMinute  int           `mapstructure:"login_per_minute" validate:"required,gt=0"`
	LoginBurst      int           `mapstructure:"login_burst" validate:"required,gt=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
}

// KafkaConfig configures the notification producer.
// Notifications are logged instead of published when Brokers is empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" validate:"omitempty,dive,hostname_port"`
	Topic   string   `mapstructure:"topic" validate:"required_with=Brokers"`

	// Username and Password enable SASL/PLAIN over TLS when set.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password" validate:"required_with=Username"`
}

// NotifyConfig sizes the background queue that delivers notifications
// after the request that produced them has returned.
type NotifyConfig struct {
	Workers         int           `mapstructure:"workers" validate:"required,gt=0,lte=64"`
	QueueSize       int           `mapstructure:"queue_size" validate:"required,gt=0"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout" validate:"gt=0"`
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	envPrefix = "CARRENTAL"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Payment  PaymentConfig  `yaml:"payment"`
	Auth     AuthConfig     `yaml:"auth"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
	Worker   WorkerConfig   `yaml:"worker"`
	Seed     SeedConfig     `yaml:"seed" ignored:"true"`
}

type HTTPConfig struct {
	Address    string `yaml:"address" split_words:"true"`
	WebDir     string `yaml:"web_dir" split_words:"true"`
	SwaggerDir string `yaml:"swagger_dir" split_words:"true"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" split_words:"true"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" split_words:"true"`
	Port     int    `yaml:"port" split_words:"true"`
	User     string `yaml:"user" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	Name     string `yaml:"name" split_words:"true"`
	SSLMode  string `yaml:"ssl_mode" split_words:"true"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig with an empty Addr disables the car cache and idempotency keys.
type RedisConfig struct {
	Addr     string `yaml:"addr" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	DB       int    `yaml:"db" split_words:"true"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// KafkaConfig with no brokers disables event publishing.
type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" split_words:"true"`
	BookingEventsTopic string   `yaml:"booking_events_topic" split_words:"true"`
	NotificationsTopic string   `yaml:"notifications_topic" split_words:"true"`
	GroupID            string   `yaml:"group_id" split_words:"true"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type BookingConfig struct {
	ExpiryThresholdSeconds int     `yaml:"expiry_threshold_seconds" split_words:"true"`
	SweepIntervalSeconds   int     `yaml:"sweep_interval_seconds" split_words:"true"`
	PaymentTimeoutSeconds  int     `yaml:"payment_timeout_seconds" split_words:"true"`
	WeekendMultiplier      float64 `yaml:"weekend_multiplier" split_words:"true"`
	CarsCacheTTLSeconds    int     `yaml:"cars_cache_ttl_seconds" split_words:"true"`
	IdempotencyTTLMinutes  int     `yaml:"idempotency_ttl_minutes" split_words:"true"`
	RunExpiryMonitor       bool    `yaml:"run_expiry_monitor" split_words:"true"`
}

func (b BookingConfig) ExpiryThreshold() time.Duration {
	return time.Duration(b.ExpiryThresholdSeconds) * time.Second
}

func (b BookingConfig) SweepInterval() time.Duration {
	return time.Duration(b.SweepIntervalSeconds) * time.Second
}

func (b BookingConfig) PaymentTimeout() time.Duration {
	return time.Duration(b.PaymentTimeoutSeconds) * time.Second
}

func (b BookingConfig) CarsCacheTTL() time.Duration {
	return time.Duration(b.CarsCacheTTLSeconds) * time.Second
}

func (b BookingConfig) IdempotencyTTL() time.Duration {
	return time.Duration(b.IdempotencyTTLMinutes) * time.Minute
}

// PaymentConfig drives the simulated processor. MaxAmount of 0 means no limit.
type PaymentConfig struct {
	Approve   bool    `yaml:"approve" split_words:"true"`
	MaxAmount float64 `yaml:"max_amount" split_words:"true"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret" split_words:"true"`
	TokenTTLHours int    `yaml:"token_ttl_hours" split_words:"true"`
	CookieName    string `yaml:"cookie_name" split_words:"true"`
	CookieSecure  bool   `yaml:"cookie_secure" split_words:"true"`
	AdminName     string `yaml:"admin_name" split_words:"true"`
	AdminEmail    string `yaml:"admin_email" split_words:"true"`
	AdminPassword string `yaml:"admin_password" split_words:"true"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

type CORSConfig struct {
	AllowOrigins     []string `yaml:"allow_origins" split_words:"true"`
	AllowMethods     []string `yaml:"allow_methods" split_words:"true"`
	AllowHeaders     []string `yaml:"allow_headers" split_words:"true"`
	AllowCredentials bool     `yaml:"allow_credentials" split_words:"true"`
	MaxAgeHours      int      `yaml:"max_age_hours" split_words:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level" split_words:"true"`
	Format string `yaml:"format" split_words:"true"`
}

type WorkerConfig struct {
	RunExpirySweep bool `yaml:"run_expiry_sweep" split_words:"true"`
}

type SeedConfig struct {
	Cars []SeedCar `yaml:"cars"`
}

type SeedCar struct {
	Name               string   `yaml:"name"`
	PricePerDay        float64  `yaml:"price_per_day"`
	Image              string   `yaml:"image"`
	Features           []string `yaml:"features"`
	Type               string   `yaml:"type"`
	RegistrationNumber string   `yaml:"registration_number"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, then lets CARRENTAL_* environment variables override it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageMemory
	}
	if c.Booking.ExpiryThresholdSeconds == 0 {
		c.Booking.ExpiryThresholdSeconds = 30
	}
	if c.Booking.SweepIntervalSeconds == 0 {
		c.Booking.SweepIntervalSeconds = 5
	}
	if c.Booking.PaymentTimeoutSeconds == 0 {
		c.Booking.PaymentTimeoutSeconds = 5
	}
	if c.Booking.WeekendMultiplier == 0 {
		c.Booking.WeekendMultiplier = 1.25
	}
	if c.Booking.CarsCacheTTLSeconds == 0 {
		c.Booking.CarsCacheTTLSeconds = 60
	}
	if c.Booking.IdempotencyTTLMinutes == 0 {
		c.Booking.IdempotencyTTLMinutes = 24 * 60
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "access_token"
	}
	if len(c.CORS.AllowMethods) == 0 {
		c.CORS.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowHeaders) == 0 {
		c.CORS.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Booking.ExpiryThresholdSeconds < 0 || c.Booking.SweepIntervalSeconds < 0 {
		return fmt.Errorf("booking timings must be positive")
	}
	if c.Booking.WeekendMultiplier < 1 {
		return fmt.Errorf("booking.weekend_multiplier must be at least 1")
	}
	for _, car := range c.Seed.Cars {
		if car.PricePerDay < 0 {
			return fmt.Errorf("seed car %q has a negative price", car.Name)
		}
	}
	return nil
}

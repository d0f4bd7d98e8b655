package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	MongoDB   MongoDBConfig   `mapstructure:"mongodb"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Geocode   GeocodeConfig   `mapstructure:"geocode"`
	Activity  ActivityConfig  `mapstructure:"activity"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	Mode         string   `mapstructure:"mode"`
	AllowedHosts []string `mapstructure:"allowed_hosts"`
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	Issuer    string `mapstructure:"issuer"`
	ExpiresIn int    `mapstructure:"expires_in"` // seconds
}

// AuthConfig controls sign-up and sign-in rules
type AuthConfig struct {
	RequireEmailConfirmation bool `mapstructure:"require_email_confirmation"`
	MinPasswordLength        int  `mapstructure:"min_password_length"`
}

// StorageConfig holds object storage configuration for activity proof files
type StorageConfig struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// GeocodeConfig holds reverse-geocoding client configuration
type GeocodeConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MockAPI        bool   `mapstructure:"mock_api"`
}

// ActivityConfig holds activity-submission rules
type ActivityConfig struct {
	Timezone                string `mapstructure:"timezone"`
	MaxProofBytes           int64  `mapstructure:"max_proof_bytes"`
	RequireProofForAllTypes bool   `mapstructure:"require_proof_for_all_types"`
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ExpiryCron string `mapstructure:"expiry_cron"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// LoadConfig loads configuration from a .env file, config.yaml under path and
// the environment. Environment variables use upper-case keys with "_" in place
// of ".", e.g. MONGODB_URI or STORAGE_BUCKET.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(path + "/config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings the server cannot run without
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret (JWT_SECRET) is required")
	}
	if c.MongoDB.URI == "" {
		return errors.New("mongodb.uri (MONGODB_URI) is required")
	}
	if c.Activity.MaxProofBytes <= 0 {
		return errors.New("activity.max_proof_bytes must be positive")
	}
	if c.Auth.MinPasswordLength < 1 {
		return errors.New("auth.min_password_length must be at least 1")
	}
	return nil
}

// setDefaults sets default values for configuration. Every key needs a default
// so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_hosts", []string{"http://localhost:3000"})

	v.SetDefault("mongodb.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("mongodb.database", "carbonova")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "carbonova")
	v.SetDefault("jwt.expires_in", 24*60*60)

	v.SetDefault("auth.require_email_confirmation", false)
	v.SetDefault("auth.min_password_length", 6)

	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "activity-photos")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.public_base_url", "")

	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "carbonova-backend/1.0")
	v.SetDefault("geocode.timeout_seconds", 5)
	v.SetDefault("geocode.mock_api", false)

	v.SetDefault("activity.timezone", "UTC")
	v.SetDefault("activity.max_proof_bytes", 10*1024*1024)
	v.SetDefault("activity.require_proof_for_all_types", true)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.expiry_cron", "0 */15 * * * *")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Limits    LimitsConfig    `mapstructure:"limits"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Mode         string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig points at MongoDB. A URI of "memory://" runs on the
// in-process store instead.
type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// InMemory reports whether the in-process store was requested.
func (d DatabaseConfig) InMemory() bool {
	return strings.HasPrefix(d.URI, "memory://")
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	CatalogKey      string        `mapstructure:"catalog_key"` // JSON catalog object read by catalog-import
	PresignTTL      time.Duration `mapstructure:"presign_ttl"`
}

// Enabled is false when no bucket is configured.
func (s S3Config) Enabled() bool {
	return s.BucketName != ""
}

// JWTConfig holds the verification settings for identity provider tokens.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"` // Optional; checked when set
}

// LLMConfig configures the chat-completions compatible generation endpoint.
type LLMConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"` // Takes precedence over Addr when set
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled is false when neither URL nor Addr is set.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Addr != ""
}

type RateLimitConfig struct {
	Window time.Duration `mapstructure:"window"`
	Limit  int           `mapstructure:"limit"`
}

type LogConfig struct {
	Mode  string `mapstructure:"mode"` // production or development
	Level string `mapstructure:"level"`
}

type WebhookConfig struct {
	Secret string `mapstructure:"secret"`
}

// LimitsConfig holds the volume ceilings applied when materializing a day.
type LimitsConfig struct {
	MaxSetsPerSession      int `mapstructure:"max_sets_per_session"`
	MaxSetsPerBodyPartWeek int `mapstructure:"max_sets_per_body_part_week"`
	AccessorySessions      int `mapstructure:"accessory_sessions"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No file; defaults and env vars only.
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s") // generation calls are slow
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("database.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("database.name", "coach_app")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.catalog_key", "catalog/exercises.json")
	v.SetDefault("s3.presign_ttl", "15m")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("ratelimit.limit", 10)
	v.SetDefault("log.mode", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("limits.max_sets_per_session", 24)
	v.SetDefault("limits.max_sets_per_body_part_week", 20)
	v.SetDefault("limits.accessory_sessions", 2)
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Database.Name == "" && !c.Database.InMemory() {
		return errors.New("database.name is required")
	}
	if c.Limits.MaxSetsPerSession <= 0 {
		return fmt.Errorf("limits.max_sets_per_session must be positive, got %d", c.Limits.MaxSetsPerSession)
	}
	if c.Limits.MaxSetsPerBodyPartWeek <= 0 {
		return fmt.Errorf("limits.max_sets_per_body_part_week must be positive, got %d", c.Limits.MaxSetsPerBodyPartWeek)
	}
	if c.Limits.AccessorySessions <= 0 {
		return fmt.Errorf("limits.accessory_sessions must be positive, got %d", c.Limits.AccessorySessions)
	}
	if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("ratelimit.limit and ratelimit.window must be positive")
	}
	return nil
}

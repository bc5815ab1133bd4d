package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Auth modes.
const (
	AuthModeAPIKey = "apikey"
	AuthModeJWT    = "jwt"
)

// Daylight provider selection.
const (
	ProviderSunriseSunset = "sunrisesunset"
	ProviderAstronomical  = "astro"
)

// DaylightConfig selects and tunes the day-length data source.
type DaylightConfig struct {
	Provider         string        `yaml:"provider"`
	BaseURL          string        `yaml:"base_url"`
	Timeout          time.Duration `yaml:"timeout"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"`
}

// MQTTConfig configures the optional result publisher.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// Config is the process configuration. Values come from an optional YAML
// file overridden by environment variables; secrets are handed to components
// explicitly at construction time.
type Config struct {
	HTTPAddr    string         `yaml:"http_addr"`
	AuthMode    string         `yaml:"auth_mode"`
	APIKey      string         `yaml:"api_key"`
	JWTSecret   string         `yaml:"jwt_secret"`
	DatabaseURL string         `yaml:"database_url"`
	Daylight    DaylightConfig `yaml:"daylight"`
	MQTT        MQTTConfig     `yaml:"mqtt"`
}

// Load reads configuration from the YAML file at path (or $LUMENGRID_CONFIG
// when path is empty) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{
		HTTPAddr: ":8080",
		AuthMode: AuthModeAPIKey,
		Daylight: DaylightConfig{
			Provider:         ProviderSunriseSunset,
			Timeout:          10 * time.Second,
			BreakerThreshold: 3,
			BreakerCooldown:  time.Minute,
		},
	}

	if path == "" {
		path = os.Getenv("LUMENGRID_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.AuthMode = getenvDefault("AUTH_MODE", cfg.AuthMode)
	cfg.APIKey = getenvDefault("API_KEY", cfg.APIKey)
	cfg.JWTSecret = getenvDefault("AUTH_JWT_SECRET", cfg.JWTSecret)
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.Daylight.Provider = getenvDefault("DAYLIGHT_PROVIDER", cfg.Daylight.Provider)
	cfg.Daylight.BaseURL = getenvDefault("DAYLIGHT_BASE_URL", cfg.Daylight.BaseURL)
	cfg.Daylight.Timeout = getenvDuration("DAYLIGHT_TIMEOUT", cfg.Daylight.Timeout)
	cfg.Daylight.BreakerThreshold = getenvIntDefault("DAYLIGHT_BREAKER_THRESHOLD", cfg.Daylight.BreakerThreshold)
	cfg.Daylight.BreakerCooldown = getenvDuration("DAYLIGHT_BREAKER_COOLDOWN", cfg.Daylight.BreakerCooldown)
	cfg.MQTT.Broker = getenvDefault("MQTT_BROKER", cfg.MQTT.Broker)
	cfg.MQTT.Username = getenvDefault("MQTT_USERNAME", cfg.MQTT.Username)
	cfg.MQTT.Password = getenvDefault("MQTT_PASSWORD", cfg.MQTT.Password)
	cfg.MQTT.TopicPrefix = getenvDefault("MQTT_TOPIC_PREFIX", cfg.MQTT.TopicPrefix)
	if os.Getenv("MQTT_BROKER") != "" {
		cfg.MQTT.Enabled = true
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.AuthMode {
	case AuthModeAPIKey:
		if c.APIKey == "" {
			return errors.New("config: API_KEY is required in apikey auth mode")
		}
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return errors.New("config: AUTH_JWT_SECRET is required in jwt auth mode")
		}
	default:
		return fmt.Errorf("config: unknown auth mode %q", c.AuthMode)
	}

	switch c.Daylight.Provider {
	case ProviderSunriseSunset, ProviderAstronomical:
	default:
		return fmt.Errorf("config: unknown daylight provider %q", c.Daylight.Provider)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("config: mqtt broker is required when mqtt is enabled")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

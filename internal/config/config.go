package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fieldesk/internal/models"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Portal     PortalConfig     `yaml:"portal"`
	HTTP       HTTPConfig       `yaml:"http"`
	Redis      RedisConfig      `yaml:"redis"`
	Audit      AuditConfig      `yaml:"audit"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	Tenant      string `yaml:"tenant"`
}

// UpstreamConfig points at the remote portal API serving this tenant.
type UpstreamConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TenantHeader   string `yaml:"tenant_header"`
	APIKeyHeader   string `yaml:"api_key_header"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PortalConfig holds booking-screen behavior.
type PortalConfig struct {
	// DisplayZone is the business's physical zone; bookings are entered
	// and rendered in it regardless of where the admin sits.
	DisplayZone string `yaml:"display_zone"`
	SlotMinutes int    `yaml:"slot_minutes"`
	SessionTTL  int    `yaml:"session_ttl_seconds"`
}

type HTTPConfig struct {
	Port      int             `yaml:"port"`
	Auth      HTTPAuthConfig  `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type HTTPAuthConfig struct {
	Enabled      bool        `yaml:"enabled"`
	HeaderAPIKey string      `yaml:"header_api_key"`
	HeaderExtra  string      `yaml:"header_extra"`
	APIKeys      []ClientKey `yaml:"api_keys"`
}

type ClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type AuditConfig struct {
	Path string `yaml:"path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; YAML values may reference its variables.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream base_url is required")
	}
	if c.App.Tenant == "" {
		return errors.New("app tenant is required")
	}
	if _, err := time.LoadLocation(c.Portal.DisplayZone); err != nil {
		return fmt.Errorf("invalid portal display_zone %q: %w", c.Portal.DisplayZone, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "fieldesk"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.Auth.HeaderAPIKey == "" {
		c.HTTP.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.HTTP.Auth.HeaderExtra == "" {
		c.HTTP.Auth.HeaderExtra = "x-api-extra"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Portal.DisplayZone == "" {
		c.Portal.DisplayZone = models.DefaultDisplayZone
	}
	if c.Portal.SlotMinutes == 0 {
		c.Portal.SlotMinutes = models.DefaultSlotMinutes
	}
	if c.Portal.SessionTTL == 0 {
		c.Portal.SessionTTL = models.DefaultSessionTTL
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = 15
	}
	if c.Audit.Path == "" {
		c.Audit.Path = "data/audit.db"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}

// DisplayLocation loads the configured display zone. Validate has already
// checked it parses.
func (c *Config) DisplayLocation() *time.Location {
	loc, err := time.LoadLocation(c.Portal.DisplayZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

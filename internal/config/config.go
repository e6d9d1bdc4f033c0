package config

import (
	"crypto/subtle"
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/viper"
)

// Presentation modes for validation messages on the client
const (
	PresentationModeSingle = "single"
	PresentationModeList   = "list"
)

// DefaultInvalidValueMessage is used when a sanitizer rejects a value without a message
const DefaultInvalidValueMessage = "Invalid value."

// Config holds all configuration for the application
type Config struct {
	Server           ServerConfig           `mapstructure:"server"`
	Database         DatabaseConfig         `mapstructure:"database"`
	ServiceExtension ServiceExtensionConfig `mapstructure:"service_extension"`
	Logging          LoggingConfig          `mapstructure:"logging"`
	Validation       ValidationConfig       `mapstructure:"validation"`
	Security         SecurityConfig         `mapstructure:"security"`
	CORS             CORSConfig             `mapstructure:"cors"`
	Settings         []SettingDefinition    `mapstructure:"settings"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

// DatabaseConfig holds database configuration.
// Type is either "mysql" or "sqlite"; for sqlite only Path is used.
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ServiceExtensionConfig holds extension service configuration
type ServiceExtensionConfig struct {
	Enabled   bool               `mapstructure:"enabled"`
	BaseURL   string             `mapstructure:"base_url"`
	Timeout   time.Duration      `mapstructure:"timeout"`
	Endpoints ExtensionEndpoints `mapstructure:"endpoints"`
}

// ExtensionEndpoints holds all extension service endpoint paths
type ExtensionEndpoints struct {
	EnrichSaveResponse string `mapstructure:"enrich_save_response"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ValidationConfig holds settings for the save gate and message presentation
type ValidationConfig struct {
	InvalidValueMessage string `mapstructure:"invalid_value_message"`
	PresentationMode    string `mapstructure:"presentation_mode"`
}

// SettingDefinition describes one registered setting
type SettingDefinition struct {
	ID        string                 `mapstructure:"id"`
	Type      string                 `mapstructure:"type"`
	Default   interface{}            `mapstructure:"default"`
	Params    map[string]interface{} `mapstructure:"params"`
	Transport string                 `mapstructure:"transport"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	BasicAuth BasicAuthConfig `mapstructure:"basic_auth"`
}

// BasicAuthConfig holds basic authentication configuration
type BasicAuthConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	Users   []BasicAuthUser `mapstructure:"users"`
}

// BasicAuthUser represents a basic auth user
type BasicAuthUser struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

var globalConfig *Config

var settingIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+(\[[A-Za-z0-9_\-]+\])*$`)

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("CUSTOMIZE_VALIDATION")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.hostname", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("database.type", "mysql")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("validation.invalid_value_message", DefaultInvalidValueMessage)
	v.SetDefault("validation.presentation_mode", PresentationModeSingle)
	v.SetDefault("service_extension.timeout", 5*time.Second)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Database.Type {
	case "mysql":
		if config.Database.Hostname == "" {
			return fmt.Errorf("database hostname is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	case "sqlite":
		if config.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database type: %q", config.Database.Type)
	}

	if config.ServiceExtension.Enabled && config.ServiceExtension.BaseURL == "" {
		return fmt.Errorf("service extension base URL is required when extension is enabled")
	}

	if !IsValidPresentationMode(config.Validation.PresentationMode) {
		return fmt.Errorf("invalid presentation mode: %q", config.Validation.PresentationMode)
	}

	seen := make(map[string]bool, len(config.Settings))
	for i, def := range config.Settings {
		if def.ID == "" {
			return fmt.Errorf("setting at index %d has no id", i)
		}
		if !settingIDPattern.MatchString(def.ID) {
			return fmt.Errorf("setting id %q contains invalid characters", def.ID)
		}
		if seen[def.ID] {
			return fmt.Errorf("duplicate setting id: %s", def.ID)
		}
		seen[def.ID] = true
		if def.Type == "" {
			return fmt.Errorf("setting %s has no type", def.ID)
		}
	}

	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// IsValidPresentationMode reports whether mode is a supported presentation mode
func IsValidPresentationMode(mode string) bool {
	return mode == PresentationModeSingle || mode == PresentationModeList
}

// GetDSN returns the database connection string for the configured driver
func (d *DatabaseConfig) GetDSN() string {
	if d.Type == "sqlite" {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", d.Path)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// DriverName returns the database/sql driver name for the configured type
func (d *DatabaseConfig) DriverName() string {
	if d.Type == "sqlite" {
		return "sqlite3"
	}
	return "mysql"
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// GetExtensionURL returns the full URL for a service extension endpoint
func (e *ServiceExtensionConfig) GetExtensionURL(endpoint string) string {
	return e.BaseURL + endpoint
}

// IsBasicAuthEnabled returns whether basic auth is enabled
func (s *SecurityConfig) IsBasicAuthEnabled() bool {
	return s.BasicAuth.Enabled
}

// ValidateUser validates basic auth credentials. Every configured user is
// compared in constant time.
func (s *SecurityConfig) ValidateUser(username, password string) bool {
	matched := 0
	for _, user := range s.BasicAuth.Users {
		nameOK := subtle.ConstantTimeCompare([]byte(user.Username), []byte(username))
		passOK := subtle.ConstantTimeCompare([]byte(user.Password), []byte(password))
		matched |= nameOK & passOK
	}
	return matched == 1
}

// GetInvalidValueMessage returns the generic rejection message
func (v *ValidationConfig) GetInvalidValueMessage() string {
	if v.InvalidValueMessage == "" {
		return DefaultInvalidValueMessage
	}
	return v.InvalidValueMessage
}

package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

const defaultRetention = 24 * time.Hour

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Documents DocumentsConfig   `yaml:"documents"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Convert   ConvertConfig     `yaml:"convert"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Documents.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DocumentsConfig holds the template and output directory paths and the
// retention window for artifacts that were generated but never
// downloaded.
type DocumentsConfig struct {
	TemplatesPath string `yaml:"templates_path"`
	OutputPath    string `yaml:"output_path"`
	Retention     string `yaml:"retention"`
}

// Validate validates the documents configuration.
func (c *DocumentsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.TemplatesPath, validation.Required),
		validation.Field(&c.OutputPath, validation.Required),
	); err != nil {
		return err
	}
	if c.Retention != "" {
		if _, err := time.ParseDuration(c.Retention); err != nil {
			return fmt.Errorf("documents: invalid retention %q: %w", c.Retention, err)
		}
	}
	return nil
}

// RetentionDuration returns the parsed retention window, defaulting to
// 24h when unset.
func (c *DocumentsConfig) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return defaultRetention
	}
	d, err := time.ParseDuration(c.Retention)
	if err != nil || d <= 0 {
		return defaultRetention
	}
	return d
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ConvertConfig holds PDF conversion configuration. An empty Command
// disables conversion; format=pdf downloads then fail with a conversion
// error instead of silently returning docx bytes.
type ConvertConfig struct {
	Command string `yaml:"command"`
}

// Enabled reports whether a converter command is configured.
func (c *ConvertConfig) Enabled() bool {
	return c.Command != ""
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Documents: DocumentsConfig{
			TemplatesPath: "./templates",
			OutputPath:    "./generated",
			Retention:     "24h",
		},
		SQLite: SQLiteConfig{
			Path: "./gebo.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

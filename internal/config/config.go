// Package config provides configuration types and defaults for comfyctl.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/zjrosen/comfyctl/internal/log"
)

// Config holds all configuration options for comfyctl.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Templates TemplatesConfig `mapstructure:"templates"`
	History   HistoryConfig   `mapstructure:"history"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// ServerConfig holds ComfyUI server connection settings.
type ServerConfig struct {
	// URL is the base address of the ComfyUI server.
	// Default: http://localhost:8188
	URL string `mapstructure:"url"`
}

// DefaultsConfig holds default generation parameters, applied to the
// template when the corresponding flag is not given. Zero values mean
// "leave the template's own value alone".
type DefaultsConfig struct {
	Model    string `mapstructure:"model"`
	Width    int64  `mapstructure:"width"`
	Height   int64  `mapstructure:"height"`
	Negative string `mapstructure:"negative"`
}

// TemplatesConfig holds workflow template settings.
type TemplatesConfig struct {
	// Dir is the user template directory.
	// Default: ~/.comfyctl/templates
	Dir string `mapstructure:"dir"`
}

// HistoryConfig holds local generation history settings.
type HistoryConfig struct {
	// Enabled controls whether finished generations are recorded.
	Enabled bool `mapstructure:"enabled"`

	// DBPath is the SQLite database location.
	// Default: ~/.comfyctl/history.db
	DBPath string `mapstructure:"db_path"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/comfyctl/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/comfyctl/traces/traces.jsonl or empty string if home
// dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "comfyctl", "traces", "traces.jsonl")
}

// DefaultTemplatesDir returns ~/.comfyctl/templates or empty string if
// home dir unavailable.
func DefaultTemplatesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".comfyctl", "templates")
}

// DefaultHistoryDBPath returns ~/.comfyctl/history.db or empty string if
// home dir unavailable.
func DefaultHistoryDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".comfyctl", "history.db")
}

// ValidateServer checks server configuration for errors.
func ValidateServer(server ServerConfig) error {
	if server.URL == "" {
		return nil // Will use default
	}
	u, err := url.Parse(server.URL)
	if err != nil {
		return fmt.Errorf("server.url is not a valid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url must use http or https, got %q", u.Scheme)
	}
	return nil
}

// ValidateDefaults checks default generation parameters for errors.
func ValidateDefaults(defaults DefaultsConfig) error {
	if defaults.Width < 0 {
		return fmt.Errorf("defaults.width must not be negative, got %d", defaults.Width)
	}
	if defaults.Height < 0 {
		return fmt.Errorf("defaults.height must not be negative, got %d", defaults.Height)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Validate checks the full configuration for errors.
func (c Config) Validate() error {
	if err := ValidateServer(c.Server); err != nil {
		return err
	}
	if err := ValidateDefaults(c.Defaults); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			URL: "http://localhost:8188",
		},
		Defaults: DefaultsConfig{},
		Templates: TemplatesConfig{
			Dir: DefaultTemplatesDir(),
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  DefaultHistoryDBPath(),
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# comfyctl Configuration

# ComfyUI server connection
server:
  url: http://localhost:8188

# Default generation parameters
# These are applied to the workflow template when the corresponding
# flag is not given. Omit (or zero) a value to keep the template's own.
defaults:
  # model: sd15.safetensors
  # width: 512
  # height: 512
  # negative: "text, watermark"

# Workflow templates
# Built-in templates can be shadowed by files in the template directory.
# templates:
#   dir: ~/.comfyctl/templates

# Local generation history
history:
  enabled: true
  # db_path: ~/.comfyctl/history.db

# Distributed tracing configuration
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/comfyctl/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

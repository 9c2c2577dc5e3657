// Package config loads the export service configuration.
package config

import (
	"compress/flate"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/javajack/xlexport"
	"gopkg.in/yaml.v3"
)

// Config holds all xlexport configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Export  ExportConfig  `yaml:"export"`

	// Theme overrides individual palette entries; unset entries keep the
	// dashboard defaults.
	Theme xlexport.Theme `yaml:"theme"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
	ShutdownTimeout   string `yaml:"shutdown_timeout"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes"`
	CORSOrigin        string `yaml:"cors_origin"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// ExportConfig configures the generated workbooks.
type ExportConfig struct {
	// Creator replaces the author property of every workbook. Empty keeps
	// each report's own default.
	Creator string `yaml:"creator"`
	// CompressionLevel is the flate level of patched archives, from
	// -2 (Huffman only) to 9.
	CompressionLevel int `yaml:"compression_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: "5s",
			ShutdownTimeout:   "10s",
			MaxBodyBytes:      10 << 20,
			CORSOrigin:        "*",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Export: ExportConfig{
			CompressionLevel: flate.BestCompression,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("XLEXPORT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("XLEXPORT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if creator := os.Getenv("XLEXPORT_CREATOR"); creator != "" {
		c.Export.Creator = creator
	}
}

// ValidLevels lists the accepted logging levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	valid := false
	for _, l := range ValidLevels {
		if c.Logging.Level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if f := c.Logging.Format; f != "json" && f != "console" {
		return fmt.Errorf("invalid logging format: %s (valid: json, console)", f)
	}
	if l := c.Export.CompressionLevel; l < flate.HuffmanOnly || l > flate.BestCompression {
		return fmt.Errorf("export.compression_level must be between %d and %d, got %d",
			flate.HuffmanOnly, flate.BestCompression, l)
	}
	return nil
}

// GetReadHeaderTimeout returns the read header timeout as a duration.
func (c *Config) GetReadHeaderTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ReadHeaderTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// ResolvedTheme returns the configured palette over the defaults.
func (c *Config) ResolvedTheme() xlexport.Theme {
	return c.Theme.Merge(xlexport.DefaultTheme())
}

// Options returns the library options implied by the configuration.
func (c *Config) Options() []xlexport.Option {
	opts := []xlexport.Option{
		xlexport.WithTheme(c.ResolvedTheme()),
		xlexport.WithCompressionLevel(c.Export.CompressionLevel),
	}
	if c.Export.Creator != "" {
		opts = append(opts, xlexport.WithCreator(c.Export.Creator))
	}
	return opts
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/proto2openrpc/pkg/observability"
	"github.com/platinummonkey/proto2openrpc/pkg/openrpc"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PROTO2OPENRPC_"

// FileNames are searched in order by LoadFromDir
var FileNames = []string{".proto2openrpc.yaml", ".proto2openrpc.yml", "proto2openrpc.yaml"}

// Config holds all application configuration
type Config struct {
	Document  DocumentConfig  `yaml:"document"`
	Output    OutputConfig    `yaml:"output"`
	Parser    ParserConfig    `yaml:"parser"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Batch     BatchConfig     `yaml:"batch"`
}

// DocumentConfig is the default document metadata
type DocumentConfig struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// OutputConfig controls encoding
type OutputConfig struct {
	Format string `yaml:"format"`
	Pretty bool   `yaml:"pretty"`
}

// ParserConfig controls proto parsing
type ParserConfig struct {
	ImportPaths []string `yaml:"import_paths"`
	JSONNames   bool     `yaml:"json_names"`
}

// LogConfig controls the logrus logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// BatchConfig controls the batch command
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Document: DocumentConfig{
			Title:   openrpc.DefaultTitle,
			Version: openrpc.DefaultVersion,
		},
		Output: OutputConfig{
			Format: string(openrpc.FormatJSON),
		},
		Parser: ParserConfig{
			ImportPaths: []string{},
		},
		Log: LogConfig{
			Level:  "info",
			Format: string(observability.TextFormat),
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    4 << 20,
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4317",
			ServiceName: "proto2openrpc",
			Insecure:    true,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides and validates. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFromDir loads the first of FileNames found in dir, or the defaults
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Load("")
}

func (c *Config) applyEnv() {
	c.Document.Title = getEnv(EnvPrefix+"TITLE", c.Document.Title)
	c.Document.Version = getEnv(EnvPrefix+"VERSION", c.Document.Version)
	c.Document.Description = getEnv(EnvPrefix+"DESCRIPTION", c.Document.Description)

	c.Output.Format = getEnv(EnvPrefix+"FORMAT", c.Output.Format)
	c.Output.Pretty = getEnvBool(EnvPrefix+"PRETTY", c.Output.Pretty)

	if paths := getEnv(EnvPrefix+"IMPORT_PATHS", ""); paths != "" {
		c.Parser.ImportPaths = filepath.SplitList(paths)
	}
	c.Parser.JSONNames = getEnvBool(EnvPrefix+"JSON_NAMES", c.Parser.JSONNames)

	c.Log.Level = getEnv(EnvPrefix+"LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv(EnvPrefix+"LOG_FORMAT", c.Log.Format)

	c.Server.Addr = getEnv(EnvPrefix+"ADDR", c.Server.Addr)
	c.Server.ReadTimeout = getEnvDuration(EnvPrefix+"READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration(EnvPrefix+"WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration(EnvPrefix+"IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration(EnvPrefix+"SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.MaxBodyBytes = getEnvInt64(EnvPrefix+"MAX_BODY_BYTES", c.Server.MaxBodyBytes)

	c.Telemetry.Enabled = getEnvBool(EnvPrefix+"OTEL_ENABLED", c.Telemetry.Enabled)
	c.Telemetry.Endpoint = getEnv(EnvPrefix+"OTEL_ENDPOINT", c.Telemetry.Endpoint)
	c.Telemetry.ServiceName = getEnv(EnvPrefix+"OTEL_SERVICE_NAME", c.Telemetry.ServiceName)
	c.Telemetry.Insecure = getEnvBool(EnvPrefix+"OTEL_INSECURE", c.Telemetry.Insecure)

	c.Batch.Concurrency = getEnvInt(EnvPrefix+"BATCH_CONCURRENCY", c.Batch.Concurrency)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := openrpc.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if _, err := observability.ParseLogFormat(c.Log.Format); err != nil {
		return err
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max body bytes must be positive")
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch concurrency must be at least 1")
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when telemetry is enabled")
		}
		if c.Telemetry.ServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when telemetry is enabled")
		}
	}

	return nil
}

// OTel converts the telemetry section for observability.InitOTel
func (c *Config) OTel(serviceVersion string) observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.Telemetry.Enabled,
		Endpoint:       c.Telemetry.Endpoint,
		ServiceName:    c.Telemetry.ServiceName,
		ServiceVersion: serviceVersion,
		Insecure:       c.Telemetry.Insecure,
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

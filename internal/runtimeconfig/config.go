package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrStorageDriverRequired = errors.New("doctree config: storage driver is required")
var ErrStorageDriverUnknown = errors.New("doctree config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("doctree config: storage dsn is required")

// ErrCacheTTLInvalid guards against negative cache lifetimes.
var ErrCacheTTLInvalid = errors.New("doctree config: cache ttl must be zero or positive")
var ErrCommandTimeoutInvalid = errors.New("doctree config: command timeout must be zero or positive")
var ErrMarkdownExtensionUnknown = errors.New("doctree config: markdown extension is invalid")
var ErrLoggingProviderRequired = errors.New("doctree config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("doctree config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("doctree config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("doctree config: logging format is invalid")

// Storage drivers understood by the container.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config aggregates storage, parser and ambient settings for the document
// tree module.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Tags     TagsConfig     `yaml:"tags"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Commands CommandsConfig `yaml:"commands"`
}

// StorageConfig selects the database driver and connection string.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// MarkdownConfig mirrors interfaces.ParseOptions.
type MarkdownConfig struct {
	Extensions  []string `yaml:"extensions"`
	FrontMatter bool     `yaml:"front_matter"`
}

type TagsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CacheConfig toggles the cached tag repository.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// LoggingConfig selects the logger provider and its verbosity.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

type CommandsConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns defaults suitable for a local sqlite database.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    "file:doctree.db?cache=shared&_fk=1",
		},
		Markdown: MarkdownConfig{
			Extensions:  []string{"gfm"},
			FrontMatter: true,
		},
		Tags: TagsConfig{
			Enabled: true,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Commands: CommandsConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	driver := NormalizeDriver(cfg.Storage.Driver)
	if driver == "" {
		return ErrStorageDriverRequired
	}
	if !isSupportedDriver(driver) {
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	for _, ext := range cfg.Markdown.Extensions {
		if !isSupportedExtension(ext) {
			return fmt.Errorf("%w: %s", ErrMarkdownExtensionUnknown, ext)
		}
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// NormalizeDriver maps driver aliases onto DriverSQLite or DriverPostgres.
func NormalizeDriver(driver string) string {
	switch d := normalize(driver); d {
	case "sqlite3":
		return DriverSQLite
	case "pg", "pgx", "postgresql":
		return DriverPostgres
	default:
		return d
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDriver(driver string) bool {
	return driver == DriverSQLite || driver == DriverPostgres
}

func isSupportedExtension(ext string) bool {
	switch normalize(ext) {
	case "gfm", "table", "strikethrough", "tasklist", "linkify":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

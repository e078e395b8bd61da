package runtimeconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "DOCTREE_"

// LoadFile reads a YAML configuration file on top of DefaultConfig. Keys that
// are absent keep their defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("doctree config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("doctree config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg from DOCTREE_* variables. Unset or blank variables
// are ignored.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		value, ok := lookup(EnvPrefix + key)
		value = strings.TrimSpace(value)
		return value, ok && value != ""
	}

	if v, ok := get("STORAGE_DRIVER"); ok {
		cfg.Storage.Driver = v
	}
	if v, ok := get("STORAGE_DSN"); ok {
		cfg.Storage.DSN = v
	}
	if v, ok := get("MARKDOWN_EXTENSIONS"); ok {
		cfg.Markdown.Extensions = splitList(v)
	}
	if v, ok := get("LOG_PROVIDER"); ok {
		cfg.Logging.Provider = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.Logging.Format = v
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{"MARKDOWN_FRONT_MATTER", &cfg.Markdown.FrontMatter},
		{"TAGS_ENABLED", &cfg.Tags.Enabled},
		{"CACHE_ENABLED", &cfg.Cache.Enabled},
		{"LOG_ADD_SOURCE", &cfg.Logging.AddSource},
	}
	for _, b := range bools {
		v, ok := get(b.key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("doctree config: %s%s: %w", EnvPrefix, b.key, err)
		}
		*b.target = parsed
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"CACHE_TTL", &cfg.Cache.DefaultTTL},
		{"COMMAND_TIMEOUT", &cfg.Commands.Timeout},
	}
	for _, d := range durations {
		v, ok := get(d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("doctree config: %s%s: %w", EnvPrefix, d.key, err)
		}
		*d.target = parsed
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package runtimeconfig_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-doctree/internal/runtimeconfig"
)

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doctree.yaml")
	body := `storage:
  driver: postgres
  dsn: postgres://localhost/notes
cache:
  enabled: true
  default_ttl: 90s
logging:
  provider: gologger
  format: pretty
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := runtimeconfig.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN != "postgres://localhost/notes" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if !cfg.Cache.Enabled || cfg.Cache.DefaultTTL != 90*time.Second {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default level to survive, got %q", cfg.Logging.Level)
	}
	if !cfg.Tags.Enabled || !cfg.Markdown.FrontMatter {
		t.Fatalf("expected defaults for tags and front matter, got %+v %+v", cfg.Tags, cfg.Markdown)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestLoadFileReportsMissingFile(t *testing.T) {
	_, err := runtimeconfig.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected read error naming the file, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"DOCTREE_STORAGE_DRIVER":      "sqlite3",
		"DOCTREE_STORAGE_DSN":         "file:notes.db",
		"DOCTREE_MARKDOWN_EXTENSIONS": "table, strikethrough ,",
		"DOCTREE_TAGS_ENABLED":        "false",
		"DOCTREE_COMMAND_TIMEOUT":     "5s",
		"DOCTREE_LOG_LEVEL":           " ",
	}
	lookup := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}

	cfg := runtimeconfig.DefaultConfig()
	if err := runtimeconfig.ApplyEnv(&cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv returned error: %v", err)
	}

	if cfg.Storage.DSN != "file:notes.db" {
		t.Fatalf("expected dsn override, got %q", cfg.Storage.DSN)
	}
	if got := runtimeconfig.NormalizeDriver(cfg.Storage.Driver); got != runtimeconfig.DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", got)
	}
	if want := []string{"table", "strikethrough"}; !reflect.DeepEqual(cfg.Markdown.Extensions, want) {
		t.Fatalf("expected extensions %v, got %v", want, cfg.Markdown.Extensions)
	}
	if cfg.Tags.Enabled {
		t.Fatal("expected tags to be disabled")
	}
	if cfg.Commands.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.Commands.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("blank variables must not override, got %q", cfg.Logging.Level)
	}
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "DOCTREE_CACHE_ENABLED" {
			return "maybe", true
		}
		return "", false
	}
	cfg := runtimeconfig.DefaultConfig()
	err := runtimeconfig.ApplyEnv(&cfg, lookup)
	if err == nil || !strings.Contains(err.Error(), "DOCTREE_CACHE_ENABLED") {
		t.Fatalf("expected error naming the variable, got %v", err)
	}
}

package doctree_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-doctree"
)

func TestConfigValidateRejectsUnknownDriver(t *testing.T) {
	cfg := doctree.DefaultConfig()
	cfg.Storage.Driver = "oracle"
	if err := cfg.Validate(); !errors.Is(err, doctree.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestConfigValidateRequiresDSN(t *testing.T) {
	cfg := doctree.DefaultConfig()
	cfg.Storage.DSN = "  "
	if err := cfg.Validate(); !errors.Is(err, doctree.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestConfigValidateLoggingProvider(t *testing.T) {
	cfg := doctree.DefaultConfig()
	cfg.Logging.Provider = "stdout"
	if err := cfg.Validate(); !errors.Is(err, doctree.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

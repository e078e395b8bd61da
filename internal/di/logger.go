package di

import (
	"io"
	"strings"

	"github.com/goliatone/go-doctree/internal/logging/console"
	"github.com/goliatone/go-doctree/internal/logging/gologger"
	"github.com/goliatone/go-doctree/internal/runtimeconfig"
	"github.com/goliatone/go-doctree/pkg/interfaces"
)

// NewLoggerProvider builds the provider named by cfg.Provider. Console output
// goes to w, or stdout when w is nil.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig, w io.Writer) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		level, _ := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{
			Writer:   w,
			MinLevel: level,
		}), nil
	}
}

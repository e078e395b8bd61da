package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-doctree/internal/logging/console"
)

type pingMessage struct {
	Name string
}

func (pingMessage) Type() string { return "doctree.test.ping" }

func (m pingMessage) Validate() error {
	if m.Name == "" {
		return errors.New("name required")
	}
	return nil
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), pingMessage{Name: "ok"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, pingMessage{Name: "late"})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), pingMessage{Name: "fail"})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(err, execErr) {
		t.Fatalf("expected original error in chain, got %v", err)
	}
}

func TestHandlerKeepsCategorisedErrors(t *testing.T) {
	notFound := goerrors.Wrap(errors.New("missing"), goerrors.CategoryNotFound, "document tree not found").
		WithTextCode("DOCTREE_DOCUMENT_NOT_FOUND")
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		return notFound
	})

	err := h.Execute(context.Background(), pingMessage{Name: "gone"})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected service category to survive, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	var status TelemetryStatus
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
			return nil
		}
	},
		WithTimeout[pingMessage](10*time.Millisecond),
		WithTelemetry[pingMessage](func(_ context.Context, _ pingMessage, info TelemetryInfo) {
			status = info.Status
		}),
	)

	err := h.Execute(context.Background(), pingMessage{Name: "slow"})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
	if status != TelemetryStatusContextError {
		t.Fatalf("expected context_error telemetry, got %q", status)
	}
}

func TestHandlerLogsMessageFields(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		return nil
	},
		WithLogger[pingMessage](CommandLogger(provider, "documents")),
		WithOperation[pingMessage]("documents.ping"),
		WithMessageFields(func(msg pingMessage) map[string]any {
			return map[string]any{"ping_name": msg.Name}
		}),
	)

	if err := h.Execute(context.Background(), pingMessage{Name: "fields"}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	out := buf.String()
	for _, fragment := range []string{
		"INFO command.execute.success",
		"command=doctree.test.ping",
		"command_module=documents",
		"module=doctree.commands.documents",
		"operation=documents.ping",
		"ping_name=fields",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in %q", fragment, out)
		}
	}
}

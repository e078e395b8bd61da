package logging

import (
	"context"
	"maps"
	"testing"

	"github.com/goliatone/go-doctree/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := map[string]any{}
	maps.Copy(copied, fields)
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "doctree.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, persistModule)

	if len(provider.requested) != 1 || provider.requested[0] != persistModule {
		t.Fatalf("expected module %s, got %v", persistModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != persistModule {
		t.Fatalf("expected module field %s, got %v", persistModule, rec.fields)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestTreeAndMarkdownLoggersRequestTheirModules(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	_ = TreeLogger(provider)
	_ = MarkdownLogger(provider)
	if len(provider.requested) != 2 || provider.requested[0] != treeModule || provider.requested[1] != markdownModule {
		t.Fatalf("unexpected module requests %v", provider.requested)
	}
}

func TestWithDocumentContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithDocumentContext(rec, " doc-1 ", "", "rebuild")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got[fieldDocumentID] != "doc-1" || got[fieldOperation] != "rebuild" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, ok := got[fieldProjectID]; ok {
		t.Fatalf("expected project field to be omitted, got %v", got)
	}
}

func TestContextWithDocumentMergesFields(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "r-1"})
	ctx = ContextWithDocument(ctx, "doc-1", "proj-1")

	fields := ContextFields(ctx)
	if fields["request_id"] != "r-1" || fields[fieldDocumentID] != "doc-1" || fields[fieldProjectID] != "proj-1" {
		t.Fatalf("unexpected context fields %v", fields)
	}

	fields["request_id"] = "mutated"
	if ContextFields(ctx)["request_id"] != "r-1" {
		t.Fatal("expected ContextFields to return a copy")
	}
}

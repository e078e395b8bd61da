package logging

import (
	"context"
	"maps"
)

type contextKey string

const contextFieldsKey contextKey = "doctree.logging.fields"

// ContextWithFields returns a context carrying structured logging fields that
// console loggers merge into later entries. Fields already on the context are
// kept; new values win on key collisions.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}

	existing := ContextFields(ctx)
	merged := make(map[string]any, len(existing)+len(fields))
	maps.Copy(merged, existing)
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields extracts fields previously attached with ContextWithFields.
// The returned map is a copy.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// ContextWithDocument annotates ctx with the document and project being
// rebuilt so nested log entries can be correlated.
func ContextWithDocument(ctx context.Context, documentID, projectID string) context.Context {
	fields := map[string]any{}
	if documentID != "" {
		fields[fieldDocumentID] = documentID
	}
	if projectID != "" {
		fields[fieldProjectID] = projectID
	}
	return ContextWithFields(ctx, fields)
}

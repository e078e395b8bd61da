// Package doctree turns markdown notes into persisted document trees and
// project hashtag indexes.
package doctree

import (
	"context"

	"github.com/google/uuid"

	documentscmd "github.com/goliatone/go-doctree/internal/commands/documents"
	"github.com/goliatone/go-doctree/internal/di"
	engine "github.com/goliatone/go-doctree/internal/doctree"
)

// Service exports the document tree service contract.
type Service = engine.Service

type (
	Tree          = engine.Tree
	TreeNode      = engine.TreeNode
	Kind          = engine.Kind
	Attributes    = engine.Attributes
	Tag           = engine.Tag
	TagCandidate  = engine.TagCandidate
	RebuildInput  = engine.RebuildInput
	RebuildResult = engine.RebuildResult
)

// CorruptionError exports the stored-tree corruption report.
type CorruptionError = engine.CorruptionError

// DocumentCommands exports the rebuild, delete and sync command handlers.
type DocumentCommands = *documentscmd.HandlerSet

var (
	ErrMalformedTree    = engine.ErrMalformedTree
	ErrDocumentNotFound = engine.ErrDocumentNotFound
)

const (
	CodeParseFailed      = engine.CodeParseFailed
	CodeMalformedTree    = engine.CodeMalformedTree
	CodePersistFailed    = engine.CodePersistFailed
	CodeTreeCorrupt      = engine.CodeTreeCorrupt
	CodeDocumentNotFound = engine.CodeDocumentNotFound
	CodeInvalidInput     = engine.CodeInvalidInput
)

// ErrorCode returns the text code attached to err, or "" when none is set.
func ErrorCode(err error) string {
	return engine.ErrorCode(err)
}

// DocumentIDForPath derives a stable document id for a note path.
func DocumentIDForPath(projectID uuid.UUID, path string) uuid.UUID {
	return engine.DocumentIDForPath(projectID, path)
}

// Module represents the top level document tree runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI
// overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Documents returns the configured document tree service.
func (m *Module) Documents() Service {
	return m.container.DocumentService()
}

func (m *Module) Commands() DocumentCommands {
	return m.container.DocumentCommands()
}

// Migrate applies pending schema migrations.
func (m *Module) Migrate(ctx context.Context) error {
	return m.container.Migrate(ctx)
}

// Close releases the database when the module opened it.
func (m *Module) Close() error {
	return m.container.Close()
}

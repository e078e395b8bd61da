package documentscmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-doctree/internal/commands"
	"github.com/goliatone/go-doctree/internal/doctree"
	"github.com/goliatone/go-doctree/internal/logging"
	"github.com/goliatone/go-doctree/internal/markdown"
	"github.com/goliatone/go-doctree/pkg/interfaces"
)

const (
	rebuildOperation = "documents.rebuild"
	deleteOperation  = "documents.delete"
	syncOperation    = "documents.sync"
)

var (
	_ command.Commander[RebuildDocumentCommand]    = (*RebuildDocumentHandler)(nil)
	_ command.Commander[DeleteDocumentTreeCommand] = (*DeleteDocumentTreeHandler)(nil)
	_ command.Commander[SyncDirectoryCommand]      = (*SyncDirectoryHandler)(nil)
)

// RebuildObserver receives the outcome of every successful rebuild.
type RebuildObserver func(ctx context.Context, result *doctree.RebuildResult)

// DeleteObserver receives the number of nodes removed by a delete.
type DeleteObserver func(ctx context.Context, documentID uuid.UUID, removed int)

// SyncReport summarises a directory sync. Unchanged lists notes skipped
// because their content matches the last sync of the same handler.
type SyncReport struct {
	ProjectID uuid.UUID
	Rebuilt   []*doctree.RebuildResult
	Paths     []string
	Unchanged []string
}

// SyncObserver receives the report of a completed sync.
type SyncObserver func(ctx context.Context, report *SyncReport)

// RebuildDocumentHandler rebuilds one document tree.
type RebuildDocumentHandler struct {
	inner *commands.Handler[RebuildDocumentCommand]
}

// NewRebuildDocumentHandler creates a handler bound to the tree service.
func NewRebuildDocumentHandler(service doctree.Service, logger interfaces.Logger, observer RebuildObserver, opts ...commands.HandlerOption[RebuildDocumentCommand]) *RebuildDocumentHandler {
	exec := func(ctx context.Context, msg RebuildDocumentCommand) error {
		ctx = logging.ContextWithDocument(ctx, msg.DocumentID.String(), msg.ProjectID.String())
		result, err := service.Rebuild(ctx, doctree.RebuildInput{
			DocumentID: msg.DocumentID,
			ProjectID:  msg.ProjectID,
			Markdown:   msg.Markdown,
		})
		if err != nil {
			return err
		}
		if observer != nil {
			observer(ctx, result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RebuildDocumentCommand]{
		commands.WithLogger[RebuildDocumentCommand](logger),
		commands.WithOperation[RebuildDocumentCommand](rebuildOperation),
		commands.WithMessageFields(func(msg RebuildDocumentCommand) map[string]any {
			return map[string]any{
				"document_id":    msg.DocumentID,
				"project_id":     msg.ProjectID,
				"markdown_bytes": len(msg.Markdown),
			}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RebuildDocumentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RebuildDocumentCommand].
func (h *RebuildDocumentHandler) Execute(ctx context.Context, msg RebuildDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteDocumentTreeHandler removes one document tree.
type DeleteDocumentTreeHandler struct {
	inner *commands.Handler[DeleteDocumentTreeCommand]
}

// NewDeleteDocumentTreeHandler creates a handler bound to the tree service.
func NewDeleteDocumentTreeHandler(service doctree.Service, logger interfaces.Logger, observer DeleteObserver, opts ...commands.HandlerOption[DeleteDocumentTreeCommand]) *DeleteDocumentTreeHandler {
	exec := func(ctx context.Context, msg DeleteDocumentTreeCommand) error {
		removed, err := service.Delete(ctx, msg.DocumentID)
		if err != nil {
			return err
		}
		if observer != nil {
			observer(ctx, msg.DocumentID, removed)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[DeleteDocumentTreeCommand]{
		commands.WithLogger[DeleteDocumentTreeCommand](logger),
		commands.WithOperation[DeleteDocumentTreeCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeleteDocumentTreeCommand) map[string]any {
			return map[string]any{"document_id": msg.DocumentID}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteDocumentTreeHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteDocumentTreeCommand].
func (h *DeleteDocumentTreeHandler) Execute(ctx context.Context, msg DeleteDocumentTreeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// FSResolver opens the filesystem a sync reads notes from.
type FSResolver func(directory string) (fs.FS, error)

func osResolver(directory string) (fs.FS, error) {
	info, err := os.Stat(directory)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", directory)
	}
	return os.DirFS(directory), nil
}

// SyncDirectoryHandler rebuilds every note in a directory. Notes whose
// content has not changed since this handler last rebuilt them are skipped
// unless the command sets Force.
type SyncDirectoryHandler struct {
	inner     *commands.Handler[SyncDirectoryCommand]
	checksums *checksumIndex
}

// NewSyncDirectoryHandler creates a handler bound to the tree service. A nil
// resolver reads from the local filesystem.
func NewSyncDirectoryHandler(service doctree.Service, logger interfaces.Logger, resolver FSResolver, observer SyncObserver, opts ...commands.HandlerOption[SyncDirectoryCommand]) *SyncDirectoryHandler {
	if resolver == nil {
		resolver = osResolver
	}
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}
	checksums := newChecksumIndex()

	exec := func(ctx context.Context, msg SyncDirectoryCommand) error {
		filesystem, err := resolver(msg.Directory)
		if err != nil {
			return err
		}
		loader := markdown.NewLoader(filesystem, markdown.LoaderConfig{
			Pattern:   msg.Pattern,
			Recursive: msg.Recursive,
		})
		notes, err := loader.LoadDirectory(ctx, ".")
		if err != nil {
			return err
		}

		report := &SyncReport{ProjectID: msg.ProjectID}
		var failures []error
		for _, note := range notes {
			docID := doctree.DocumentIDForPath(msg.ProjectID, note.Path)
			if !msg.Force && checksums.unchanged(docID, note.Checksum) {
				report.Unchanged = append(report.Unchanged, note.Path)
				continue
			}
			result, err := service.Rebuild(ctx, doctree.RebuildInput{
				DocumentID: docID,
				ProjectID:  msg.ProjectID,
				Markdown:   string(note.Source),
			})
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				baseLogger.Warn("documents.command.sync.note_failed", "path", note.Path, "error", err)
				failures = append(failures, fmt.Errorf("%s: %w", note.Path, err))
				continue
			}
			checksums.record(docID, note.Checksum)
			report.Rebuilt = append(report.Rebuilt, result)
			report.Paths = append(report.Paths, note.Path)
		}

		logging.WithFields(baseLogger, map[string]any{
			"directory":     msg.Directory,
			"note_count":    len(notes),
			"rebuilt_count": len(report.Rebuilt),
			"unchanged":     len(report.Unchanged),
			"failed_count":  len(failures),
		}).Info("documents.command.sync.completed")

		if observer != nil {
			observer(ctx, report)
		}
		return errors.Join(failures...)
	}

	handlerOpts := []commands.HandlerOption[SyncDirectoryCommand]{
		commands.WithLogger[SyncDirectoryCommand](baseLogger),
		commands.WithOperation[SyncDirectoryCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncDirectoryCommand) map[string]any {
			fields := map[string]any{
				"project_id": msg.ProjectID,
				"directory":  msg.Directory,
			}
			if msg.Recursive {
				fields["recursive"] = true
			}
			if msg.Force {
				fields["force"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncDirectoryHandler{
		inner:     commands.NewHandler(exec, handlerOpts...),
		checksums: checksums,
	}
}

// Forget drops the remembered checksum of a document so the next sync
// rebuilds it. Rebuilds and deletes outside the sync call this.
func (h *SyncDirectoryHandler) Forget(documentID uuid.UUID) {
	h.checksums.forget(documentID)
}

// Execute satisfies command.Commander[SyncDirectoryCommand].
func (h *SyncDirectoryHandler) Execute(ctx context.Context, msg SyncDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

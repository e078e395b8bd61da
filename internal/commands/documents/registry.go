package documentscmd

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-doctree/internal/commands"
	"github.com/goliatone/go-doctree/internal/doctree"
	"github.com/goliatone/go-doctree/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring
// command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the document command handlers.
type HandlerSet struct {
	Rebuild *RebuildDocumentHandler
	Delete  *DeleteDocumentTreeHandler
	Sync    *SyncDirectoryHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	timeout         time.Duration
	rebuildObserver RebuildObserver
	deleteObserver  DeleteObserver
	syncObserver    SyncObserver
	resolver        FSResolver
}

// WithCommandTimeout applies a timeout to every handler. Zero keeps the
// handler default.
func WithCommandTimeout(timeout time.Duration) Option {
	return func(cfg *options) {
		cfg.timeout = timeout
	}
}

// WithRebuildObserver receives every successful rebuild result.
func WithRebuildObserver(observer RebuildObserver) Option {
	return func(cfg *options) {
		cfg.rebuildObserver = observer
	}
}

// WithDeleteObserver receives every successful delete.
func WithDeleteObserver(observer DeleteObserver) Option {
	return func(cfg *options) {
		cfg.deleteObserver = observer
	}
}

// WithSyncObserver receives every sync report.
func WithSyncObserver(observer SyncObserver) Option {
	return func(cfg *options) {
		cfg.syncObserver = observer
	}
}

// WithFSResolver overrides how sync opens directories.
func WithFSResolver(resolver FSResolver) Option {
	return func(cfg *options) {
		cfg.resolver = resolver
	}
}

// RegisterDocumentCommands builds the document command handlers and registers
// them with reg when it is non-nil.
func RegisterDocumentCommands(reg CommandRegistry, service doctree.Service, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("document command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "documents")

	var (
		rebuildOpts []commands.HandlerOption[RebuildDocumentCommand]
		deleteOpts  []commands.HandlerOption[DeleteDocumentTreeCommand]
		syncOpts    []commands.HandlerOption[SyncDirectoryCommand]
	)
	if cfg.timeout > 0 {
		rebuildOpts = append(rebuildOpts, commands.WithTimeout[RebuildDocumentCommand](cfg.timeout))
		deleteOpts = append(deleteOpts, commands.WithTimeout[DeleteDocumentTreeCommand](cfg.timeout))
		syncOpts = append(syncOpts, commands.WithTimeout[SyncDirectoryCommand](cfg.timeout))
	}

	syncHandler := NewSyncDirectoryHandler(service, logger, cfg.resolver, cfg.syncObserver, syncOpts...)
	set := &HandlerSet{
		Rebuild: NewRebuildDocumentHandler(service, logger, func(ctx context.Context, result *doctree.RebuildResult) {
			syncHandler.Forget(result.DocumentID)
			if cfg.rebuildObserver != nil {
				cfg.rebuildObserver(ctx, result)
			}
		}, rebuildOpts...),
		Delete: NewDeleteDocumentTreeHandler(service, logger, func(ctx context.Context, documentID uuid.UUID, removed int) {
			syncHandler.Forget(documentID)
			if cfg.deleteObserver != nil {
				cfg.deleteObserver(ctx, documentID, removed)
			}
		}, deleteOpts...),
		Sync: syncHandler,
	}

	if reg != nil {
		for _, handler := range []any{set.Rebuild, set.Delete, set.Sync} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// RegisterSyncCron wires the sync handler into a cron registrar. The handler
// runs with a background context.
func RegisterSyncCron(reg CronRegistrar, handler *SyncDirectoryHandler, cfg command.HandlerConfig, msg SyncDirectoryCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}

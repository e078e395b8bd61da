package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	documentscmd "github.com/goliatone/go-doctree/internal/commands/documents"
	"github.com/goliatone/go-doctree/internal/doctree"
	"github.com/goliatone/go-doctree/internal/logging"
	"github.com/goliatone/go-doctree/internal/markdown"
	"github.com/goliatone/go-doctree/internal/migrations"
	"github.com/goliatone/go-doctree/internal/runtimeconfig"
	"github.com/goliatone/go-doctree/pkg/interfaces"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	bunDB   *bun.DB
	closers []io.Closer

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	parser   doctree.Parser
	treeRepo doctree.TreeRepository
	tagRepo  doctree.TagRepository
	service  doctree.Service

	commandRegistry documentscmd.CommandRegistry
	commandOptions  []documentscmd.Option
	handlers        *documentscmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB supplies an existing database. The container will not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithLogWriter redirects console logging.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		c.logWriter = w
	}
}

// WithCache overrides the cache service used by the cached tag repository.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithParser overrides the markdown parser built from Config.Markdown.
func WithParser(parser doctree.Parser) Option {
	return func(c *Container) {
		c.parser = parser
	}
}

// WithRepositories replaces the bun repositories, for example with a
// doctree.MemoryStore.
func WithRepositories(trees doctree.TreeRepository, tags doctree.TagRepository) Option {
	return func(c *Container) {
		c.treeRepo = trees
		c.tagRepo = tags
	}
}

// WithCommandRegistry registers the document command handlers with reg.
func WithCommandRegistry(reg documentscmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCommandOptions forwards options to the document command registration.
func WithCommandOptions(opts ...documentscmd.Option) Option {
	return func(c *Container) {
		c.commandOptions = append(c.commandOptions, opts...)
	}
}

// NewContainer validates cfg and builds the service graph. A database is
// opened from cfg.Storage unless repositories or a database were supplied.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	if err := c.configureCacheDefaults(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureRepositories()
	c.configureService()
	if err := c.configureCommands(); err != nil {
		c.Close()
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "doctree.container").Debug("container.configured",
		"driver", runtimeconfig.NormalizeDriver(cfg.Storage.Driver),
		"cache", c.cacheService != nil,
		"tags", cfg.Tags.Enabled,
	)
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := NewLoggerProvider(c.Config.Logging, c.logWriter)
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureStorage() error {
	if c.bunDB != nil || (c.treeRepo != nil && c.tagRepo != nil) {
		return nil
	}
	db, err := OpenDB(c.Config.Storage)
	if err != nil {
		return err
	}
	c.bunDB = db
	c.closers = append(c.closers, db)
	return nil
}

// newCacheService is swapped in tests to exercise construction failures.
var newCacheService = repocache.NewCacheService

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := newCacheService(cfg)
		if err != nil {
			logging.ModuleLogger(c.loggerProvider, "doctree.container").Error("container.cache_failed", "error", err)
			return fmt.Errorf("configure tag cache: %w", err)
		}
		c.cacheService = service
	}

	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}
	if c.treeRepo == nil {
		c.treeRepo = doctree.NewBunTreeRepository(c.bunDB)
	}
	if c.tagRepo == nil {
		c.tagRepo = doctree.NewBunTagRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	}
}

func (c *Container) configureService() {
	if c.parser == nil {
		c.parser = markdown.NewGoldmarkParser(interfaces.ParseOptions{
			Extensions:  c.Config.Markdown.Extensions,
			FrontMatter: c.Config.Markdown.FrontMatter,
		})
	}
	c.service = doctree.NewService(c.treeRepo, c.tagRepo,
		doctree.WithParser(c.parser),
		doctree.WithLogger(logging.TreeLogger(c.loggerProvider)),
		doctree.WithTagsEnabled(c.Config.Tags.Enabled),
	)
}

func (c *Container) configureCommands() error {
	opts := make([]documentscmd.Option, 0, len(c.commandOptions)+1)
	if c.Config.Commands.Timeout > 0 {
		opts = append(opts, documentscmd.WithCommandTimeout(c.Config.Commands.Timeout))
	}
	opts = append(opts, c.commandOptions...)

	handlers, err := documentscmd.RegisterDocumentCommands(c.commandRegistry, c.service, c.loggerProvider, opts...)
	if err != nil {
		return err
	}
	c.handlers = handlers
	return nil
}

// Migrate applies pending schema migrations. It is a no-op when the
// container runs without a database.
func (c *Container) Migrate(ctx context.Context) error {
	if c.bunDB == nil {
		return nil
	}
	runner, err := migrations.NewRunner(c.bunDB)
	if err != nil {
		return err
	}
	group, err := runner.Up(ctx)
	if err != nil {
		return err
	}
	if group != nil {
		logging.ModuleLogger(c.loggerProvider, "doctree.migrations").Info("migrations.applied",
			"group", group.ID,
			"count", len(group.Migrations),
		)
	}
	return nil
}

// Close releases resources the container opened itself.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) DB() *bun.DB { return c.bunDB }

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) DocumentService() doctree.Service { return c.service }

func (c *Container) TreeRepository() doctree.TreeRepository { return c.treeRepo }

func (c *Container) TagRepository() doctree.TagRepository { return c.tagRepo }

// DocumentCommands returns the rebuild, delete and sync handlers.
func (c *Container) DocumentCommands() *documentscmd.HandlerSet { return c.handlers }

// CacheTTL reports the effective tag cache lifetime, zero when caching is off.
func (c *Container) CacheTTL() time.Duration {
	if c.cacheService == nil {
		return 0
	}
	if c.Config.Cache.DefaultTTL > 0 {
		return c.Config.Cache.DefaultTTL
	}
	return repocache.DefaultConfig().TTL
}

package doctree

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-doctree/internal/logging"
	"github.com/goliatone/go-doctree/internal/markdown"
	"github.com/goliatone/go-doctree/pkg/interfaces"
)

// Service rebuilds, loads and removes document trees.
type Service interface {
	Rebuild(ctx context.Context, input RebuildInput) (*RebuildResult, error)
	Load(ctx context.Context, documentID uuid.UUID) (*Tree, error)
	Delete(ctx context.Context, documentID uuid.UUID) (int, error)
	ListTags(ctx context.Context, projectID uuid.UUID) ([]*Tag, error)
	Preview(ctx context.Context, source string) (*Tree, []TagCandidate, error)
}

// Parser turns note text into a parse tree.
type Parser interface {
	Parse(source []byte) (*markdown.Parsed, error)
}

// ServiceOption configures the tree service.
type ServiceOption func(*service)

// WithParser overrides the markdown parser.
func WithParser(parser Parser) ServiceOption {
	return func(s *service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// WithLogger wires the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTagsEnabled toggles hashtag extraction.
func WithTagsEnabled(enabled bool) ServiceOption {
	return func(s *service) {
		s.tagsEnabled = enabled
	}
}

// WithClock overrides the internal time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type service struct {
	trees       TreeRepository
	tags        TagRepository
	parser      Parser
	logger      interfaces.Logger
	tagsEnabled bool
	now         func() time.Time
}

// NewService constructs the tree service. Tag extraction is on by default and
// the parser defaults to goldmark with GFM extensions.
func NewService(trees TreeRepository, tags TagRepository, opts ...ServiceOption) Service {
	s := &service{
		trees:       trees,
		tags:        tags,
		parser:      markdown.NewGoldmarkParser(interfaces.ParseOptions{}),
		logger:      logging.NoOp(),
		tagsEnabled: true,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Validate checks that both ids are set.
func (in RebuildInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.DocumentID, validation.By(requireUUID)),
		validation.Field(&in.ProjectID, validation.By(requireUUID)),
	)
}

func requireUUID(value any) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return validation.NewError("validation_required", "must be a non-nil uuid")
	}
	return nil
}

func (s *service) Rebuild(ctx context.Context, input RebuildInput) (*RebuildResult, error) {
	if err := input.Validate(); err != nil {
		return nil, wrapInputError(err)
	}

	started := s.now()
	logger := logging.WithDocumentContext(s.logger.WithContext(ctx), input.DocumentID.String(), input.ProjectID.String(), "rebuild")

	flat, err := s.flatten(input.Markdown)
	if err != nil {
		logger.Warn("doctree.rebuild.flatten_failed", "error", err)
		return nil, err
	}
	if !s.tagsEnabled {
		flat.Tags = nil
	}

	replaced, err := s.trees.ReplaceTree(ctx, ReplaceTreeInput{
		DocumentID: input.DocumentID,
		ProjectID:  input.ProjectID,
		Nodes:      flat.Nodes,
		Tags:       flat.Tags,
	})
	if err != nil {
		logger.Error("doctree.rebuild.persist_failed", "error", err)
		return nil, wrapPersistError(err)
	}
	s.invalidateTags(ctx, logger)

	result := &RebuildResult{
		DocumentID:    input.DocumentID,
		ProjectID:     input.ProjectID,
		NodeCount:     replaced.InsertedNodes,
		RemovedNodes:  replaced.RemovedNodes,
		TagCandidates: len(flat.Tags),
		TagsInserted:  replaced.TagsInserted,
		Duration:      s.now().Sub(started),
	}
	logging.WithFields(logger, map[string]any{
		"node_count":     result.NodeCount,
		"removed_nodes":  result.RemovedNodes,
		"tag_candidates": result.TagCandidates,
		"tags_inserted":  result.TagsInserted,
		"duration_ms":    result.Duration.Milliseconds(),
	}).Info("doctree.rebuild.completed")
	return result, nil
}

func (s *service) Load(ctx context.Context, documentID uuid.UUID) (*Tree, error) {
	if documentID == uuid.Nil {
		return nil, wrapInputError(fmt.Errorf("document id: %w", validation.ErrRequired))
	}

	rows, err := s.trees.ListNodes(ctx, documentID)
	if err != nil {
		return nil, wrapPersistError(err)
	}
	if len(rows) == 0 {
		return nil, wrapNotFoundError(fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID))
	}

	tree, err := Reconstruct(documentID, rows)
	if err != nil {
		logging.WithDocumentContext(s.logger.WithContext(ctx), documentID.String(), "", "load").
			Error("doctree.load.corrupt", "error", err, "rows", len(rows))
		return nil, wrapCorruptionError(err)
	}
	return tree, nil
}

func (s *service) Delete(ctx context.Context, documentID uuid.UUID) (int, error) {
	if documentID == uuid.Nil {
		return 0, wrapInputError(fmt.Errorf("document id: %w", validation.ErrRequired))
	}

	logger := logging.WithDocumentContext(s.logger.WithContext(ctx), documentID.String(), "", "delete")
	removed, err := s.trees.DeleteTree(ctx, documentID)
	if err != nil {
		logger.Error("doctree.delete.failed", "error", err)
		return 0, wrapPersistError(err)
	}
	s.invalidateTags(ctx, logger)
	logger.Info("doctree.delete.completed", "removed_nodes", removed)
	return removed, nil
}

func (s *service) ListTags(ctx context.Context, projectID uuid.UUID) ([]*Tag, error) {
	if projectID == uuid.Nil {
		return nil, wrapInputError(fmt.Errorf("project id: %w", validation.ErrRequired))
	}
	tags, err := s.tags.ListByProject(ctx, projectID)
	if err != nil {
		return nil, wrapPersistError(err)
	}
	return tags, nil
}

func (s *service) Preview(ctx context.Context, source string) (*Tree, []TagCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	flat, err := s.flatten(source)
	if err != nil {
		return nil, nil, err
	}
	tree, err := BuildTree(uuid.Nil, flat.Nodes)
	if err != nil {
		return nil, nil, wrapMalformedError(err)
	}
	if !s.tagsEnabled {
		flat.Tags = nil
	}
	return tree, flat.Tags, nil
}

// flatten parses and projects source; the parse tree does not outlive it.
func (s *service) flatten(source string) (*Flattened, error) {
	parsed, err := s.parser.Parse([]byte(source))
	if err != nil {
		return nil, wrapParseError(err)
	}
	flat, err := Flatten(parsed)
	if err != nil {
		return nil, wrapMalformedError(err)
	}
	return flat, nil
}

func (s *service) invalidateTags(ctx context.Context, logger interfaces.Logger) {
	if s.tags == nil {
		return
	}
	if err := s.tags.InvalidateCache(ctx); err != nil {
		logger.Warn("doctree.tags.cache_invalidation_failed", "error", err)
	}
}

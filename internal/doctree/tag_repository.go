package doctree

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const tagNamespace = "document_tag"

// NewTagRecordRepository creates a generic repository for Tag records.
func NewTagRecordRepository(db *bun.DB) repository.Repository[*Tag] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Tag]{
		NewRecord: func() *Tag { return &Tag{} },
		GetID: func(t *Tag) uuid.UUID {
			return t.ID
		},
		SetID: func(t *Tag, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "tag_name"
		},
		GetIdentifierValue: func(t *Tag) string {
			return t.TagName
		},
	})
}

// BunTagRepository implements TagRepository with optional caching. Cached
// listings are keyed by project so invalidation can drop them by prefix.
type BunTagRepository struct {
	repo         repository.Repository[*Tag]
	cacheService cache.CacheService
	serializer   cache.KeySerializer
}

// NewBunTagRepository creates a tag repository without caching.
func NewBunTagRepository(db *bun.DB) *BunTagRepository {
	return NewBunTagRepositoryWithCache(db, nil, nil)
}

// NewBunTagRepositoryWithCache creates a tag repository with caching services.
// Caching is enabled only when both the service and serializer are set.
func NewBunTagRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunTagRepository {
	repo := &BunTagRepository{repo: NewTagRecordRepository(db)}
	if cacheService != nil && serializer != nil {
		repo.cacheService = cacheService
		repo.serializer = serializer
	}
	return repo
}

func (r *BunTagRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Tag, error) {
	if r.cacheService == nil {
		return r.listByProject(ctx, projectID)
	}
	key := r.serializer.SerializeKey(tagNamespace+cache.KeySeparator+"list_by_project", projectID.String())
	return cache.GetOrFetch(ctx, r.cacheService, key, func(ctx context.Context) ([]*Tag, error) {
		return r.listByProject(ctx, projectID)
	})
}

func (r *BunTagRepository) listByProject(ctx context.Context, projectID uuid.UUID) ([]*Tag, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.project_id = ?", projectID).
				OrderExpr("?TableAlias.tag_name ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "document_tag", projectID.String())
	}
	return records, nil
}

func (r *BunTagRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, tagNamespace+cache.KeySeparator)
}

package doctree

import (
	"context"

	"github.com/google/uuid"
)

// TreeRepository persists and loads whole document trees.
type TreeRepository interface {
	// ReplaceTree atomically swaps a document's stored tree and records its
	// first-seen tags. On error nothing is changed.
	ReplaceTree(ctx context.Context, input ReplaceTreeInput) (*ReplaceResult, error)
	ListNodes(ctx context.Context, documentID uuid.UUID) ([]*Node, error)
	DeleteTree(ctx context.Context, documentID uuid.UUID) (int, error)
}

// TagRepository reads project tags.
type TagRepository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Tag, error)
	InvalidateCache(ctx context.Context) error
}

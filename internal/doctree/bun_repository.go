package doctree

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// InsertHook runs inside the replace transaction after the old tree is
// removed and before new rows are written. A non-nil error aborts and rolls
// back the whole replace.
type InsertHook func(ctx context.Context, tx bun.Tx, documentID uuid.UUID) error

// BunTreeRepository implements TreeRepository on bun.
type BunTreeRepository struct {
	db           *bun.DB
	beforeInsert InsertHook
}

// BunTreeOption customises a BunTreeRepository.
type BunTreeOption func(*BunTreeRepository)

// WithBeforeInsert installs a hook that runs between delete and insert.
func WithBeforeInsert(hook InsertHook) BunTreeOption {
	return func(r *BunTreeRepository) {
		r.beforeInsert = hook
	}
}

// NewBunTreeRepository creates a tree repository backed by db.
func NewBunTreeRepository(db *bun.DB, opts ...BunTreeOption) *BunTreeRepository {
	repo := &BunTreeRepository{db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (r *BunTreeRepository) ReplaceTree(ctx context.Context, input ReplaceTreeInput) (*ReplaceResult, error) {
	if r.db == nil {
		return nil, errors.New("tree repository: database not configured")
	}

	var result *ReplaceResult
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		removed, err := deleteDocumentTree(ctx, tx, input.DocumentID)
		if err != nil {
			return err
		}

		if r.beforeInsert != nil {
			if err := r.beforeInsert(ctx, tx, input.DocumentID); err != nil {
				return err
			}
		}

		storageIDs, err := insertNodes(ctx, tx, input.DocumentID, input.Nodes)
		if err != nil {
			return err
		}

		inserted, err := insertTags(ctx, tx, input.ProjectID, input.Tags, storageIDs)
		if err != nil {
			return err
		}

		result = &ReplaceResult{
			RemovedNodes:  removed,
			InsertedNodes: len(storageIDs),
			StorageIDs:    storageIDs,
			TagsInserted:  inserted,
			TagsSkipped:   len(input.Tags) - inserted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *BunTreeRepository) ListNodes(ctx context.Context, documentID uuid.UUID) ([]*Node, error) {
	if r.db == nil {
		return nil, errors.New("tree repository: database not configured")
	}
	var nodes []*Node
	err := r.db.NewSelect().
		Model(&nodes).
		Where("?TableAlias.document_id = ?", documentID).
		OrderExpr("?TableAlias.parent_id ASC, ?TableAlias.sibling_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list document nodes: %w", err)
	}
	return nodes, nil
}

func (r *BunTreeRepository) DeleteTree(ctx context.Context, documentID uuid.UUID) (int, error) {
	if r.db == nil {
		return 0, errors.New("tree repository: database not configured")
	}
	var removed int
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		removed, err = deleteDocumentTree(ctx, tx, documentID)
		return err
	})
	return removed, err
}

// deleteDocumentTree removes a document's tags and nodes, returning the
// number of nodes that existed. Each table is cleared in one statement, so
// the parent_id constraint is only checked once the whole document is gone.
func deleteDocumentTree(ctx context.Context, tx bun.Tx, documentID uuid.UUID) (int, error) {
	count, err := tx.NewSelect().
		Model((*Node)(nil)).
		Where("?TableAlias.document_id = ?", documentID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count document nodes: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	nodeIDs := tx.NewSelect().
		Table("document_nodes").
		Column("id").
		Where("document_id = ?", documentID)
	if _, err := tx.NewDelete().
		Model((*Tag)(nil)).
		Where("?TableAlias.source_node_id IN (?)", nodeIDs).
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("delete document tags: %w", err)
	}

	if _, err := tx.NewDelete().
		Model((*Node)(nil)).
		Where("?TableAlias.document_id = ?", documentID).
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("delete document nodes: %w", err)
	}
	return count, nil
}

// insertNodes writes pre-nodes in local id order and returns the storage id
// assigned to each local id.
func insertNodes(ctx context.Context, tx bun.Tx, documentID uuid.UUID, nodes []PreNode) ([]int64, error) {
	storageIDs := make([]int64, len(nodes))
	for i, pre := range nodes {
		if pre.LocalID != i {
			return nil, fmt.Errorf("%w: local id %d at position %d", ErrMalformedTree, pre.LocalID, i)
		}
		row := &Node{
			DocumentID:   documentID,
			SiblingIndex: pre.SiblingIndex,
			Kind:         pre.Kind,
			Content:      pre.Content,
			Attributes:   pre.Attributes,
		}
		if pre.ParentLocalID != NoParent {
			if pre.ParentLocalID < 0 || pre.ParentLocalID >= i {
				return nil, fmt.Errorf("%w: local id %d has parent %d", ErrUnknownParent, i, pre.ParentLocalID)
			}
			parentID := storageIDs[pre.ParentLocalID]
			row.ParentID = &parentID
		}
		if _, err := tx.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
			return nil, fmt.Errorf("insert node %d: %w", i, err)
		}
		storageIDs[i] = row.ID
	}
	return storageIDs, nil
}

// insertTags writes tag candidates in order. Names already held by the
// project are skipped.
func insertTags(ctx context.Context, tx bun.Tx, projectID uuid.UUID, tags []TagCandidate, storageIDs []int64) (int, error) {
	inserted := 0
	for _, candidate := range tags {
		if candidate.LocalNodeID < 0 || candidate.LocalNodeID >= len(storageIDs) {
			return 0, fmt.Errorf("%w: tag %q references local id %d", ErrUnknownParent, candidate.Name, candidate.LocalNodeID)
		}
		tag := &Tag{
			ID:           uuid.New(),
			ProjectID:    projectID,
			TagName:      candidate.Name,
			SourceNodeID: storageIDs[candidate.LocalNodeID],
		}
		res, err := tx.NewInsert().
			Model(tag).
			On("CONFLICT (project_id, tag_name) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("insert tag %q: %w", candidate.Name, err)
		}
		affected, _ := res.RowsAffected()
		inserted += int(affected)
	}
	return inserted, nil
}

package doctree

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory TreeRepository and TagRepository. A replace is
// staged on copies and swapped in under the lock, so a failed replace leaves
// the store untouched.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	nodes  map[uuid.UUID][]*Node
	tags   map[uuid.UUID]map[string]*Tag
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[uuid.UUID][]*Node),
		tags:  make(map[uuid.UUID]map[string]*Tag),
	}
}

func (m *MemoryStore) ReplaceTree(ctx context.Context, input ReplaceTreeInput) (*ReplaceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	nextID := m.nextID
	staged := make([]*Node, len(input.Nodes))
	storageIDs := make([]int64, len(input.Nodes))
	for i, pre := range input.Nodes {
		if pre.LocalID != i {
			return nil, fmt.Errorf("%w: local id %d at position %d", ErrMalformedTree, pre.LocalID, i)
		}
		nextID++
		row := &Node{
			ID:           nextID,
			DocumentID:   input.DocumentID,
			SiblingIndex: pre.SiblingIndex,
			Kind:         pre.Kind,
			Content:      cloneString(pre.Content),
			Attributes:   cloneAttributes(pre.Attributes),
		}
		if pre.ParentLocalID != NoParent {
			if pre.ParentLocalID < 0 || pre.ParentLocalID >= i {
				return nil, fmt.Errorf("%w: local id %d has parent %d", ErrUnknownParent, i, pre.ParentLocalID)
			}
			parentID := storageIDs[pre.ParentLocalID]
			row.ParentID = &parentID
		}
		staged[i] = row
		storageIDs[i] = nextID
	}

	removed := m.nodes[input.DocumentID]
	removedIDs := make(map[int64]struct{}, len(removed))
	for _, row := range removed {
		removedIDs[row.ID] = struct{}{}
	}

	tags := m.cloneTagsWithout(removedIDs)
	projectTags := tags[input.ProjectID]
	if projectTags == nil {
		projectTags = make(map[string]*Tag)
		tags[input.ProjectID] = projectTags
	}
	inserted := 0
	for _, candidate := range input.Tags {
		if candidate.LocalNodeID < 0 || candidate.LocalNodeID >= len(storageIDs) {
			return nil, fmt.Errorf("%w: tag %q references local id %d", ErrUnknownParent, candidate.Name, candidate.LocalNodeID)
		}
		if _, exists := projectTags[candidate.Name]; exists {
			continue
		}
		projectTags[candidate.Name] = &Tag{
			ID:           uuid.New(),
			ProjectID:    input.ProjectID,
			TagName:      candidate.Name,
			SourceNodeID: storageIDs[candidate.LocalNodeID],
		}
		inserted++
	}

	m.nextID = nextID
	m.nodes[input.DocumentID] = staged
	m.tags = tags

	return &ReplaceResult{
		RemovedNodes:  len(removed),
		InsertedNodes: len(staged),
		StorageIDs:    storageIDs,
		TagsInserted:  inserted,
		TagsSkipped:   len(input.Tags) - inserted,
	}, nil
}

func (m *MemoryStore) ListNodes(_ context.Context, documentID uuid.UUID) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.nodes[documentID]
	out := make([]*Node, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneNode(row))
	}
	return out, nil
}

func (m *MemoryStore) DeleteTree(_ context.Context, documentID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.nodes[documentID]
	removedIDs := make(map[int64]struct{}, len(removed))
	for _, row := range removed {
		removedIDs[row.ID] = struct{}{}
	}
	m.tags = m.cloneTagsWithout(removedIDs)
	delete(m.nodes, documentID)
	return len(removed), nil
}

func (m *MemoryStore) ListByProject(_ context.Context, projectID uuid.UUID) ([]*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Tag, 0, len(m.tags[projectID]))
	for _, tag := range m.tags[projectID] {
		cloned := *tag
		out = append(out, &cloned)
	}
	slices.SortFunc(out, func(a, b *Tag) int {
		return strings.Compare(a.TagName, b.TagName)
	})
	return out, nil
}

func (m *MemoryStore) InvalidateCache(context.Context) error {
	return nil
}

// cloneTagsWithout copies the tag index, dropping tags sourced from the
// given node ids. Callers hold the write lock.
func (m *MemoryStore) cloneTagsWithout(nodeIDs map[int64]struct{}) map[uuid.UUID]map[string]*Tag {
	out := make(map[uuid.UUID]map[string]*Tag, len(m.tags))
	for projectID, byName := range m.tags {
		kept := make(map[string]*Tag, len(byName))
		for name, tag := range byName {
			if _, drop := nodeIDs[tag.SourceNodeID]; drop {
				continue
			}
			kept[name] = tag
		}
		out[projectID] = kept
	}
	return out
}

func cloneNode(row *Node) *Node {
	cloned := *row
	cloned.Content = cloneString(row.Content)
	cloned.Attributes = cloneAttributes(row.Attributes)
	if row.ParentID != nil {
		parentID := *row.ParentID
		cloned.ParentID = &parentID
	}
	return &cloned
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneAttributes(attrs *Attributes) *Attributes {
	if attrs == nil {
		return nil
	}
	cloned := *attrs
	if attrs.Checked != nil {
		cloned.Checked = boolPtr(*attrs.Checked)
	}
	return &cloned
}

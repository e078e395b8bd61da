package doctree

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Reconstruct assembles stored rows for one document into a tree. Rows may
// arrive in any order. Structural problems are reported as *CorruptionError.
func Reconstruct(documentID uuid.UUID, rows []*Node) (*Tree, error) {
	corrupt := func(nodeID int64, err error) error {
		return &CorruptionError{DocumentID: documentID, NodeID: nodeID, Err: err}
	}

	byID := make(map[int64]*Node, len(rows))
	children := make(map[int64][]*Node, len(rows))
	var root *Node
	for _, row := range rows {
		if row == nil {
			continue
		}
		if !row.Kind.Valid() {
			return nil, corrupt(row.ID, fmt.Errorf("%w: %q", ErrUnknownKind, row.Kind))
		}
		byID[row.ID] = row
		if row.ParentID == nil {
			if root != nil {
				return nil, corrupt(row.ID, ErrMultipleRoots)
			}
			root = row
			continue
		}
		children[*row.ParentID] = append(children[*row.ParentID], row)
	}
	if root == nil {
		return nil, corrupt(0, ErrNoRoot)
	}
	if root.Kind != KindDocument {
		return nil, corrupt(root.ID, ErrRootNotDocument)
	}

	for parentID, group := range children {
		if _, ok := byID[parentID]; !ok {
			return nil, corrupt(group[0].ID, ErrOrphanNode)
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].SiblingIndex < group[j].SiblingIndex
		})
		for i := 1; i < len(group); i++ {
			if group[i].SiblingIndex == group[i-1].SiblingIndex {
				return nil, corrupt(group[i].ID, ErrDuplicateSibling)
			}
		}
	}

	type entry struct {
		row  *Node
		node *TreeNode
	}
	rootNode := toTreeNode(root)
	visited := map[int64]struct{}{root.ID: {}}
	stack := []entry{{row: root, node: rootNode}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range children[top.row.ID] {
			if _, seen := visited[child.ID]; seen {
				return nil, corrupt(child.ID, ErrCycle)
			}
			visited[child.ID] = struct{}{}
			node := toTreeNode(child)
			top.node.Children = append(top.node.Children, node)
			stack = append(stack, entry{row: child, node: node})
		}
	}

	if len(visited) != len(byID) {
		for id := range byID {
			if _, ok := visited[id]; !ok {
				return nil, corrupt(id, ErrCycle)
			}
		}
	}

	return &Tree{DocumentID: documentID, Root: rootNode}, nil
}

func toTreeNode(row *Node) *TreeNode {
	return &TreeNode{
		ID:         row.ID,
		Kind:       row.Kind,
		Content:    row.Content,
		Attributes: row.Attributes,
	}
}

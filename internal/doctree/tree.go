package doctree

import (
	"fmt"

	"github.com/google/uuid"
)

// TreeNode is a reconstructed node. ID is the storage id, or zero for trees
// built from pre-nodes that were never persisted.
type TreeNode struct {
	ID         int64       `json:"id,omitempty"`
	Kind       Kind        `json:"kind"`
	Content    *string     `json:"content,omitempty"`
	Attributes *Attributes `json:"attributes,omitempty"`
	Children   []*TreeNode `json:"children,omitempty"`
}

// Tree is a whole document tree rooted at a Document node.
type Tree struct {
	DocumentID uuid.UUID `json:"document_id"`
	Root       *TreeNode `json:"root"`
}

// Walk visits nodes in pre-order. Returning false from fn skips the node's
// children.
func (t *Tree) Walk(fn func(node *TreeNode, depth int) bool) {
	if t == nil || t.Root == nil {
		return
	}
	type entry struct {
		node  *TreeNode
		depth int
	}
	stack := []entry{{node: t.Root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.node, top.depth) {
			continue
		}
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, entry{node: top.node.Children[i], depth: top.depth + 1})
		}
	}
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	count := 0
	t.Walk(func(*TreeNode, int) bool {
		count++
		return true
	})
	return count
}

// BuildTree assembles pre-nodes into a tree without touching storage.
func BuildTree(documentID uuid.UUID, nodes []PreNode) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no pre-nodes", ErrMalformedTree)
	}
	built := make([]*TreeNode, len(nodes))
	for i, pre := range nodes {
		if pre.LocalID != i {
			return nil, fmt.Errorf("%w: local id %d at position %d", ErrMalformedTree, pre.LocalID, i)
		}
		built[i] = &TreeNode{Kind: pre.Kind, Content: pre.Content, Attributes: pre.Attributes}
		if i == 0 {
			if pre.ParentLocalID != NoParent {
				return nil, fmt.Errorf("%w: root has parent %d", ErrMalformedTree, pre.ParentLocalID)
			}
			continue
		}
		if pre.ParentLocalID < 0 || pre.ParentLocalID >= i {
			return nil, fmt.Errorf("%w: local id %d has parent %d", ErrUnknownParent, i, pre.ParentLocalID)
		}
		parent := built[pre.ParentLocalID]
		if pre.SiblingIndex != len(parent.Children) {
			return nil, fmt.Errorf("%w: local id %d has sibling index %d", ErrMalformedTree, i, pre.SiblingIndex)
		}
		parent.Children = append(parent.Children, built[i])
	}
	return &Tree{DocumentID: documentID, Root: built[0]}, nil
}

// Equivalent reports whether two trees have the same shape, kinds, content
// and attributes. Storage ids are ignored.
func Equivalent(a, b *Tree) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	type pair struct{ left, right *TreeNode }
	stack := []pair{{a.Root, b.Root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.left == nil || top.right == nil {
			if top.left != top.right {
				return false
			}
			continue
		}
		if top.left.Kind != top.right.Kind ||
			!equalContent(top.left.Content, top.right.Content) ||
			!top.left.Attributes.Equal(top.right.Attributes) ||
			len(top.left.Children) != len(top.right.Children) {
			return false
		}
		for i := range top.left.Children {
			stack = append(stack, pair{top.left.Children[i], top.right.Children[i]})
		}
	}
	return true
}

func equalContent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

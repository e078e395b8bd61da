package doctree

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NoParent marks the root pre-node, which has no parent.
const NoParent = -1

// PreNode is an owned, not yet persisted tree node. Local ids are dense and
// assigned in emission order, so ParentLocalID is always below LocalID.
type PreNode struct {
	LocalID       int
	ParentLocalID int
	SiblingIndex  int
	Kind          Kind
	Content       *string
	Attributes    *Attributes
}

// TagCandidate is a hashtag occurrence found in a Text pre-node.
type TagCandidate struct {
	LocalNodeID int
	Name        string
}

// Flattened is the transferable output of the flatten phase.
type Flattened struct {
	Nodes []PreNode
	Tags  []TagCandidate
}

// Node is a persisted document tree node.
type Node struct {
	bun.BaseModel `bun:"table:document_nodes,alias:dn"`

	ID           int64       `bun:"id,pk,autoincrement" json:"id"`
	DocumentID   uuid.UUID   `bun:"document_id,notnull,type:uuid" json:"document_id"`
	ParentID     *int64      `bun:"parent_id" json:"parent_id,omitempty"`
	SiblingIndex int         `bun:"sibling_index,notnull" json:"sibling_index"`
	Kind         Kind        `bun:"kind,notnull" json:"kind"`
	Content      *string     `bun:"content" json:"content,omitempty"`
	Attributes   *Attributes `bun:"attributes,type:jsonb" json:"attributes,omitempty"`
	CreatedAt    time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Tag records the first occurrence of a hashtag within a project.
type Tag struct {
	bun.BaseModel `bun:"table:document_tags,alias:dt"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ProjectID    uuid.UUID `bun:"project_id,notnull,type:uuid" json:"project_id"`
	TagName      string    `bun:"tag_name,notnull" json:"tag_name"`
	SourceNodeID int64     `bun:"source_node_id,notnull" json:"source_node_id"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// ReplaceTreeInput is everything the persister needs for one rebuild.
type ReplaceTreeInput struct {
	DocumentID uuid.UUID
	ProjectID  uuid.UUID
	Nodes      []PreNode
	Tags       []TagCandidate
}

// ReplaceResult summarises a committed rebuild.
type ReplaceResult struct {
	RemovedNodes  int
	InsertedNodes int
	// StorageIDs maps each pre-node local id to its storage id.
	StorageIDs   []int64
	TagsInserted int
	TagsSkipped  int
}

// RebuildInput is the service-level request to rebuild a document's tree.
type RebuildInput struct {
	DocumentID uuid.UUID
	ProjectID  uuid.UUID
	Markdown   string
}

// RebuildResult is returned after a successful rebuild.
type RebuildResult struct {
	DocumentID    uuid.UUID
	ProjectID     uuid.UUID
	NodeCount     int
	RemovedNodes  int
	TagCandidates int
	TagsInserted  int
	Duration      time.Duration
}

package documentscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	rebuildMessageType = "doctree.documents.rebuild"
	deleteMessageType  = "doctree.documents.delete"
	syncMessageType    = "doctree.documents.sync"
)

// RebuildDocumentCommand replaces the stored tree of one document with the
// tree parsed from Markdown.
type RebuildDocumentCommand struct {
	DocumentID uuid.UUID `json:"document_id"`
	ProjectID  uuid.UUID `json:"project_id"`
	Markdown   string    `json:"markdown"`
}

// Type implements command.Message.
func (RebuildDocumentCommand) Type() string { return rebuildMessageType }

// Validate ensures both ids are present.
func (cmd RebuildDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.DocumentID, validation.By(requiredUUID("doctree.documents.rebuild.document_id_required"))),
		validation.Field(&cmd.ProjectID, validation.By(requiredUUID("doctree.documents.rebuild.project_id_required"))),
	)
}

// DeleteDocumentTreeCommand removes a document's stored tree and the tags it
// sourced.
type DeleteDocumentTreeCommand struct {
	DocumentID uuid.UUID `json:"document_id"`
}

// Type implements command.Message.
func (DeleteDocumentTreeCommand) Type() string { return deleteMessageType }

// Validate ensures the document id is present.
func (cmd DeleteDocumentTreeCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.DocumentID, validation.By(requiredUUID("doctree.documents.delete.document_id_required"))),
	)
}

// SyncDirectoryCommand rebuilds every note found under Directory. Document
// ids are derived from the project id and each note's relative path.
type SyncDirectoryCommand struct {
	ProjectID uuid.UUID `json:"project_id"`
	Directory string    `json:"directory"`
	// Pattern filters note file names, "*.md" when empty.
	Pattern   string `json:"pattern,omitempty"`
	Recursive bool   `json:"recursive,omitempty"`
	// Force rebuilds notes whose content is unchanged since the last sync.
	Force bool `json:"force,omitempty"`
}

// Type implements command.Message.
func (SyncDirectoryCommand) Type() string { return syncMessageType }

// Validate ensures the project and directory are present.
func (cmd SyncDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ProjectID, validation.By(requiredUUID("doctree.documents.sync.project_id_required"))),
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("doctree.documents.sync.directory_required", "directory is required")
			}
			return nil
		})),
	)
}

func requiredUUID(code string) validation.RuleFunc {
	return func(value any) error {
		id, ok := value.(uuid.UUID)
		if !ok || id == uuid.Nil {
			return validation.NewError(code, "must be a non-nil uuid")
		}
		return nil
	}
}

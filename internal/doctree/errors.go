package doctree

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

const (
	CodeParseFailed      = "DOCTREE_PARSE_FAILED"
	CodeMalformedTree    = "DOCTREE_MALFORMED_TREE"
	CodePersistFailed    = "DOCTREE_PERSIST_FAILED"
	CodeTreeCorrupt      = "DOCTREE_TREE_CORRUPT"
	CodeDocumentNotFound = "DOCTREE_DOCUMENT_NOT_FOUND"
	CodeInvalidInput     = "DOCTREE_INVALID_INPUT"
)

var (
	// ErrMalformedTree is returned when the parse tree violates the flattener's
	// structural assumptions.
	ErrMalformedTree = errors.New("doctree: malformed parse tree")

	ErrNoRoot           = errors.New("doctree: stored tree has no root")
	ErrMultipleRoots    = errors.New("doctree: stored tree has multiple roots")
	ErrRootNotDocument  = errors.New("doctree: stored root is not a document node")
	ErrCycle            = errors.New("doctree: stored tree contains a cycle")
	ErrOrphanNode       = errors.New("doctree: stored node references a missing parent")
	ErrDuplicateSibling = errors.New("doctree: stored nodes share a sibling index")
	ErrUnknownKind      = errors.New("doctree: stored node has an unknown kind")

	ErrDocumentNotFound = errors.New("doctree: document has no stored tree")
	ErrUnknownParent    = errors.New("doctree: pre-node references an unknown parent")
)

// CorruptionError describes a stored tree that cannot be reconstructed.
type CorruptionError struct {
	DocumentID uuid.UUID
	NodeID     int64
	Err        error
}

func (e *CorruptionError) Error() string {
	if e.NodeID != 0 {
		return fmt.Sprintf("document %s: node %d: %v", e.DocumentID, e.NodeID, e.Err)
	}
	return fmt.Sprintf("document %s: %v", e.DocumentID, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// NotFoundError mirrors the repository-level not found signal.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ErrorCode returns the text code attached to a wrapped error, if any.
func ErrorCode(err error) string {
	var wrapped *goerrors.Error
	if errors.As(err, &wrapped) {
		return wrapped.TextCode
	}
	return ""
}

func wrapParseError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "markdown parse failed").
		WithTextCode(CodeParseFailed)
}

func wrapMalformedError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "parse tree is malformed").
		WithTextCode(CodeMalformedTree)
}

func wrapPersistError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, "document tree persistence failed").
		WithTextCode(CodePersistFailed)
}

func wrapCorruptionError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "stored document tree is corrupt").
		WithTextCode(CodeTreeCorrupt)
}

func wrapNotFoundError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryNotFound, "document tree not found").
		WithTextCode(CodeDocumentNotFound)
}

func wrapInputError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid document tree request").
		WithTextCode(CodeInvalidInput)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

package doctree

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// DocumentIDForPath derives a stable document id for a note path inside a
// project, so re-syncing a directory rebuilds the same documents.
func DocumentIDForPath(projectID uuid.UUID, notePath string) uuid.UUID {
	cleaned := path.Clean(strings.TrimPrefix(strings.ReplaceAll(notePath, "\\", "/"), "./"))
	return uuid.NewSHA1(projectID, []byte(cleaned))
}

package documentscmd

import (
	"crypto/sha256"
	"sync"

	"github.com/google/uuid"
)

// checksumIndex remembers the source checksum of the last note a sync
// rebuilt for each document.
type checksumIndex struct {
	mu   sync.Mutex
	sums map[uuid.UUID][sha256.Size]byte
}

func newChecksumIndex() *checksumIndex {
	return &checksumIndex{sums: make(map[uuid.UUID][sha256.Size]byte)}
}

func (i *checksumIndex) unchanged(documentID uuid.UUID, sum [sha256.Size]byte) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	prev, ok := i.sums[documentID]
	return ok && prev == sum
}

func (i *checksumIndex) record(documentID uuid.UUID, sum [sha256.Size]byte) {
	i.mu.Lock()
	i.sums[documentID] = sum
	i.mu.Unlock()
}

func (i *checksumIndex) forget(documentID uuid.UUID) {
	i.mu.Lock()
	delete(i.sums, documentID)
	i.mu.Unlock()
}

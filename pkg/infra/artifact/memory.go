package artifact

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

// MemoryStore is an in-memory artifact store with the same write-once
// semantics as the cloud backends, for tests and local one-shot scans.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ interfaces.ArtifactStore = (*MemoryStore)(nil)

func NewMemory() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
	}
}

func (x *MemoryStore) Put(ctx context.Context, runID types.RunID, name types.ArtifactName, r io.Reader) (*model.ArtifactRef, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read artifact data")
	}

	key := model.ArtifactKey(runID, name)

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.objects[key]; exists {
		return nil, goerr.Wrap(types.ErrArtifactConflict, "artifact key already exists",
			goerr.V("runID", runID),
			goerr.V("name", name),
		)
	}
	x.objects[key] = raw

	digest := sha256.Sum256(raw)
	return &model.ArtifactRef{
		RunID:     runID,
		Name:      name,
		Key:       key,
		Size:      int64(len(raw)),
		SHA256:    hex.EncodeToString(digest[:]),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (x *MemoryStore) Get(ctx context.Context, ref *model.ArtifactRef) (io.ReadCloser, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	raw, exists := x.objects[ref.Key]
	if !exists {
		return nil, goerr.New("artifact not found", goerr.V("key", ref.Key))
	}

	return io.NopCloser(bytes.NewReader(raw)), nil
}

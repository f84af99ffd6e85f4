package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/futig/rag-backend/internal/entity"
)

const indexFileName = "index.json"

// IndexSnapshot is the persisted state of a vector index: the embedded
// chunks plus the metadata needed to validate embedding-model compatibility
// on reload.
type IndexSnapshot struct {
	Model     string                 `json:"model"`
	Dimension int                    `json:"dimension"`
	Chunks    []entity.EmbeddedChunk `json:"chunks"`
}

// IndexStore persists vector index snapshots. Save is a full-snapshot
// rewrite; callers serialize writers (see usecase/index).
type IndexStore interface {
	// Save durably replaces the persisted snapshot. After Save returns, a
	// crash must not lose the write; before it returns, the old state must
	// remain intact.
	Save(snapshot *IndexSnapshot) error
	// Load reads the persisted snapshot. Returns entity.ErrIndexNotFound if
	// nothing was ever persisted (cold start) and entity.ErrCorruptIndex if
	// the persisted data is unreadable or internally inconsistent.
	Load() (*IndexSnapshot, error)
}

var _ IndexStore = &FileIndexStore{}

// FileIndexStore keeps the snapshot as a single JSON file inside a
// directory. The write goes to a temp file first and is renamed into place,
// so readers see either the old or the new state, never a torn one.
type FileIndexStore struct {
	dir string
}

func NewFileIndexStore(dir string) *FileIndexStore {
	return &FileIndexStore{dir: dir}
}

func (s *FileIndexStore) Save(snapshot *IndexSnapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode index snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, indexFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write index snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync index snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, indexFileName)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace index snapshot: %w", err)
	}
	return nil
}

func (s *FileIndexStore) Load() (*IndexSnapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, entity.ErrIndexNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read index snapshot: %w", err)
	}

	var snapshot IndexSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrCorruptIndex, err)
	}

	for i := range snapshot.Chunks {
		if len(snapshot.Chunks[i].Vector) != snapshot.Dimension {
			return nil, fmt.Errorf("%w: chunk %d has dimension %d, manifest says %d",
				entity.ErrCorruptIndex, i, len(snapshot.Chunks[i].Vector), snapshot.Dimension)
		}
	}
	return &snapshot, nil
}

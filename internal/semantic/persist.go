package semantic

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
)

const FileName = "semantic.psx"

type fileMeta struct {
	Dim   int          `json:"dim"`
	Model string       `json:"model"`
	Rows  []corpus.Key `json:"rows"`
	Build string       `json:"build,omitempty"`
}

// Stage writes the index into tx under path.
func (idx *Index) Stage(tx *store.Tx, path string) error {
	meta := idx.meta()
	meta.Build = tx.Build
	return tx.Put(path, store.KindSemantic, meta, store.AppendFloat32s(nil, idx.Matrix))
}

// Save atomically writes the index to path.
func (idx *Index) Save(path string) error {
	return store.Write(path, store.KindSemantic, idx.meta(), store.AppendFloat32s(nil, idx.Matrix))
}

func (idx *Index) meta() fileMeta {
	return fileMeta{Dim: idx.Dim, Model: idx.Model, Rows: idx.Rows}
}

// Load reads an index written by Save or Stage. A missing file yields
// ErrIndexNotBuilt.
func Load(path string) (*Index, error) {
	var meta fileMeta
	data, err := store.Read(path, store.KindSemantic, &meta)
	if err != nil {
		return nil, err
	}
	if meta.Dim <= 0 {
		return nil, fmt.Errorf("%w: %s has dimension %d", apperrors.ErrIndexCorrupt, path, meta.Dim)
	}
	cur := store.NewCursor(data)
	matrix, err := cur.Float32s(len(meta.Rows)*meta.Dim, "embeddings")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
	}
	if err := cur.Done(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
	}
	idx := &Index{Dim: meta.Dim, Model: meta.Model, Matrix: matrix, Rows: meta.Rows, BuildID: meta.Build}
	if err := idx.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
	}
	return idx, nil
}

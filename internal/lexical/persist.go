package lexical

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
)

// FileName is the index file name inside the index data directory.
const FileName = "lexical.psx"

type fileMeta struct {
	Params  Params       `json:"params"`
	NumDocs int          `json:"num_docs"`
	Terms   []string     `json:"terms"`
	DocFreq []int        `json:"doc_freq"`
	IDF     []float64    `json:"idf"`
	Rows    []corpus.Key `json:"rows"`
	NNZ     int          `json:"nnz"`
	Build   string       `json:"build,omitempty"`
}

func (idx *Index) encode() (fileMeta, []byte) {
	meta := fileMeta{
		Params:  idx.Params,
		NumDocs: idx.NumDocs,
		Terms:   idx.Terms,
		DocFreq: idx.DocFreq,
		IDF:     idx.IDF,
		Rows:    idx.Rows,
		NNZ:     idx.Matrix.NNZ(),
	}
	data := make([]byte, 0, 4*(len(idx.Matrix.RowPtr)+2*meta.NNZ))
	data = store.AppendUint32s(data, idx.Matrix.RowPtr)
	data = store.AppendUint32s(data, idx.Matrix.ColIdx)
	data = store.AppendFloat32s(data, idx.Matrix.Values)
	return meta, data
}

// Stage writes the index into tx under path.
func (idx *Index) Stage(tx *store.Tx, path string) error {
	meta, data := idx.encode()
	meta.Build = tx.Build
	return tx.Put(path, store.KindLexical, meta, data)
}

// Save atomically writes the index to path.
func (idx *Index) Save(path string) error {
	meta, data := idx.encode()
	return store.Write(path, store.KindLexical, meta, data)
}

// Load reads an index written by Save or Stage. A missing file yields
// ErrIndexNotBuilt.
func Load(path string) (*Index, error) {
	var meta fileMeta
	data, err := store.Read(path, store.KindLexical, &meta)
	if err != nil {
		return nil, err
	}
	v := len(meta.Terms)
	if len(meta.DocFreq) != v || len(meta.IDF) != v || len(meta.Rows) != meta.NumDocs {
		return nil, fmt.Errorf("%w: %s meta sections disagree (terms=%d df=%d idf=%d rows=%d docs=%d)",
			apperrors.ErrIndexCorrupt, path, v, len(meta.DocFreq), len(meta.IDF), len(meta.Rows), meta.NumDocs)
	}
	cur := store.NewCursor(data)
	rowPtr, err := cur.Uint32s(meta.NumDocs+1, "row pointers")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
	}
	colIdx, err := cur.Uint32s(meta.NNZ, "column indices")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
	}
	values, err := cur.Float32s(meta.NNZ, "weights")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
	}
	if err := cur.Done(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
	}
	if err := checkCSR(rowPtr, colIdx, v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
	}
	m := &Matrix{Rows: meta.NumDocs, Cols: v, RowPtr: rowPtr, ColIdx: colIdx, Values: values}
	idx := newIndex(meta.Params, meta.NumDocs, meta.Terms, meta.DocFreq, meta.IDF, m, meta.Rows)
	idx.BuildID = meta.Build
	return idx, nil
}

func checkCSR(rowPtr, colIdx []uint32, cols int) error {
	if rowPtr[0] != 0 || int(rowPtr[len(rowPtr)-1]) != len(colIdx) {
		return fmt.Errorf("row pointers span [%d, %d], expected [0, %d]", rowPtr[0], rowPtr[len(rowPtr)-1], len(colIdx))
	}
	for i := 1; i < len(rowPtr); i++ {
		if rowPtr[i] < rowPtr[i-1] {
			return fmt.Errorf("row pointer %d decreases", i)
		}
	}
	for _, c := range colIdx {
		if int(c) >= cols {
			return fmt.Errorf("column index %d out of range for %d terms", c, cols)
		}
	}
	return nil
}

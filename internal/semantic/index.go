// Package semantic implements the dense-vector page index: one unit-length
// embedding per corpus page, stored row-major and aligned with the corpus,
// and a retriever that ranks pages by cosine similarity to an encoded query.
package semantic

import (
	"fmt"
	"math"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
)

// Index is an N×Dim float32 matrix whose row i embeds corpus row i.
type Index struct {
	Dim     int
	Model   string
	Matrix  []float32
	Rows    []corpus.Key
	// BuildID is the build that committed the file, empty for Save.
	BuildID string
}

func (idx *Index) Len() int {
	return len(idx.Rows)
}

// Row returns the embedding of row i. The slice aliases the index.
func (idx *Index) Row(i int) []float32 {
	return idx.Matrix[i*idx.Dim : (i+1)*idx.Dim]
}

// Scores returns the dot product of q with every row.
func (idx *Index) Scores(q []float32) ([]float64, error) {
	if len(q) != idx.Dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			apperrors.ErrDimensionMismatch, len(q), idx.Dim)
	}
	n := idx.Len()
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		row := idx.Row(i)
		var s float32
		for j, x := range row {
			s += x * q[j]
		}
		scores[i] = float64(s)
	}
	return scores, nil
}

// RowNorm returns the Euclidean norm of row i.
func (idx *Index) RowNorm(i int) float64 {
	var sum float64
	for _, x := range idx.Row(i) {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func (idx *Index) validate() error {
	if idx.Dim <= 0 {
		return fmt.Errorf("dimension %d", idx.Dim)
	}
	if len(idx.Matrix) != len(idx.Rows)*idx.Dim {
		return fmt.Errorf("matrix holds %d values, expected %d×%d", len(idx.Matrix), len(idx.Rows), idx.Dim)
	}
	return nil
}

// Package encoder turns page and query text into dense vectors. The semantic
// index and retriever only depend on the Encoder interface; concrete
// implementations cover an offline feature-hashing encoder, a local Ollama
// server, and any OpenAI-compatible embeddings API.
package encoder

import (
	"context"
	"fmt"
	"math"

	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
)

// Encoder maps a batch of texts to one vector per text, in input order.
// Every vector has Dim() components.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dim() int
	Name() string
}

// Normalize scales v to unit Euclidean length in place. A zero vector is left
// unchanged. It returns the original norm.
func Normalize(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return 0
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return norm
}

// checkBatch verifies that an encoder returned one vector of the expected
// dimension for each input text.
func checkBatch(name string, texts []string, vecs [][]float32, dim int) error {
	if len(vecs) != len(texts) {
		return fmt.Errorf("%s returned %d vectors for %d texts", name, len(vecs), len(texts))
	}
	for i, v := range vecs {
		if len(v) != dim {
			return fmt.Errorf("%w: %s vector %d has %d dimensions, expected %d",
				apperrors.ErrDimensionMismatch, name, i, len(v), dim)
		}
	}
	return nil
}

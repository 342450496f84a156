package encoder

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
)

// DefaultHashDim matches the output width of the small sentence-transformer
// models the index is usually built with.
const DefaultHashDim = 384

const (
	wordWeight    = 0.7
	trigramWeight = 0.3
	trigramSize   = 3
)

// Hash is a deterministic, offline encoder. Words and character trigrams are
// hashed into a fixed number of buckets and the result is L2-normalized.
// Texts that share vocabulary or spelling land near each other; it carries no
// learned semantics.
type Hash struct {
	dim int
}

func NewHash(dim int) *Hash {
	if dim <= 0 {
		dim = DefaultHashDim
	}
	return &Hash{dim: dim}
}

func (h *Hash) Dim() int {
	return h.dim
}

func (h *Hash) Name() string {
	return fmt.Sprintf("hash-%d", h.dim)
}

// Encode never fails except on a cancelled context.
func (h *Hash) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *Hash) vector(text string) []float32 {
	v := make([]float32, h.dim)
	lower := strings.ToLower(text)
	for _, word := range textnorm.Tokenize(lower) {
		v[h.bucket(word)] += wordWeight
	}
	compact := make([]rune, 0, len(lower))
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			compact = append(compact, r)
		}
	}
	for i := 0; i+trigramSize <= len(compact); i++ {
		v[h.bucket(string(compact[i:i+trigramSize]))] += trigramWeight
	}
	if Normalize(v) == 0 {
		// Featureless text still gets a unit vector so every index row has
		// the same length.
		v[h.bucket("")] = 1
	}
	return v
}

func (h *Hash) bucket(s string) int {
	f := fnv.New64()
	_, _ = f.Write([]byte(s))
	return int(f.Sum64() % uint64(h.dim))
}

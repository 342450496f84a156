package semantic

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/encoder"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slideCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	texts := []string{
		"neural networks learn weights with backpropagation",
		"convolutional layers share filters across the image",
		"recurrent networks process sequences step by step",
		"decision trees split on the most informative feature",
		"support vector machines maximize the margin",
		"k means clustering assigns points to the nearest centroid",
		"principal component analysis reduces dimensionality",
		"gradient descent follows the negative gradient",
	}
	entries := make([]corpus.Entry, len(texts))
	for i, text := range texts {
		entries[i] = corpus.Entry{DocID: fmt.Sprintf("ml%d.pdf", i/4), PageNumber: i%4 + 1, Text: text}
	}
	c, err := corpus.New(entries)
	require.NoError(t, err)
	return c
}

type countingEncoder struct {
	encoder.Encoder
	calls atomic.Int32
}

func (c *countingEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls.Add(1)
	return c.Encoder.Encode(ctx, texts)
}

type brokenEncoder struct {
	dim    int
	outDim int
	err    error
}

func (b brokenEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, b.outDim)
		out[i][0] = 1
	}
	return out, nil
}

func (b brokenEncoder) Dim() int     { return b.dim }
func (b brokenEncoder) Name() string { return "broken" }

func TestBuildRowsAlignedAndUnitLength(t *testing.T) {
	c := slideCorpus(t)
	idx, err := Build(context.Background(), c.Entries(), encoder.NewHash(64), BuildOptions{BatchSize: 3})
	require.NoError(t, err)

	assert.Equal(t, 64, idx.Dim)
	assert.Equal(t, "hash-64", idx.Model)
	assert.Equal(t, c.Keys(), idx.Rows)
	require.NoError(t, c.CheckAligned("semantic", idx.Rows))
	for i := 0; i < idx.Len(); i++ {
		assert.InDelta(t, 1.0, idx.RowNorm(i), 1e-5, "row %d", i)
	}
}

func TestBuildBatchingDoesNotChangeResult(t *testing.T) {
	c := slideCorpus(t)
	enc := encoder.NewHash(32)

	serial, err := Build(context.Background(), c.Entries(), enc, BuildOptions{BatchSize: 100, Workers: 1})
	require.NoError(t, err)

	var mu sync.Mutex
	var last int
	parallel, err := Build(context.Background(), c.Entries(), enc, BuildOptions{
		BatchSize: 1,
		Workers:   4,
		Progress: func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			last = max(last, done)
			assert.Equal(t, c.Len(), total)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, serial.Matrix, parallel.Matrix)
	assert.Equal(t, c.Len(), last)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(context.Background(), nil, encoder.NewHash(8), BuildOptions{})
	assert.ErrorIs(t, err, apperrors.ErrEmptyCorpus)

	entries := slideCorpus(t).Entries()
	_, err = Build(context.Background(), entries, brokenEncoder{dim: 4, outDim: 3}, BuildOptions{BatchSize: 2})
	assert.ErrorIs(t, err, apperrors.ErrDimensionMismatch)

	boom := errors.New("boom")
	_, err = Build(context.Background(), entries, brokenEncoder{dim: 4, err: boom}, BuildOptions{})
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Build(ctx, entries, encoder.NewHash(8), BuildOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	idx, err := Build(context.Background(), slideCorpus(t).Entries(), encoder.NewHash(16), BuildOptions{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, idx.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, idx, loaded)

	_, err = Load(filepath.Join(t.TempDir(), FileName))
	assert.ErrorIs(t, err, apperrors.ErrIndexNotBuilt)
}

func newRetriever(t *testing.T, enc encoder.Encoder) (*Retriever, *corpus.Corpus) {
	t.Helper()
	c := slideCorpus(t)
	idx, err := Build(context.Background(), c.Entries(), enc, BuildOptions{})
	require.NoError(t, err)
	r, err := NewRetriever(idx, c, enc, textnorm.Default(), ranker.Defaults())
	require.NoError(t, err)
	return r, c
}

func TestSearchFindsMatchingPage(t *testing.T) {
	r, _ := newRetriever(t, encoder.NewHash(384))

	results, err := r.Search(context.Background(), "Principal Component Analysis!", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "ml1.pdf", results[0].DocID)
	assert.Equal(t, 3, results[0].PageNumber)
	assert.Equal(t, 1, results[0].Rank)
	for i, res := range results {
		assert.LessOrEqual(t, res.Score, 1+1e-6)
		assert.GreaterOrEqual(t, res.Score, -1-1e-6)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Score, res.Score)
		}
	}
}

func TestSearchEmptyQuerySkipsEncoder(t *testing.T) {
	enc := &countingEncoder{Encoder: encoder.NewHash(32)}
	r, _ := newRetriever(t, enc)
	before := enc.calls.Load()

	for _, q := range []string{"", "  \t", "...", "42"} {
		results, err := r.Search(context.Background(), q, 5)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	}
	assert.Equal(t, before, enc.calls.Load())
}

func TestSearchTopKDefaults(t *testing.T) {
	r, c := newRetriever(t, encoder.NewHash(32))

	zero, err := r.Search(context.Background(), "networks", 0)
	require.NoError(t, err)
	five, err := r.Search(context.Background(), "networks", 5)
	require.NoError(t, err)
	assert.Len(t, five, 5)
	assert.Equal(t, five, zero)

	all, err := r.Search(context.Background(), "networks", 100)
	require.NoError(t, err)
	assert.Len(t, all, c.Len())
}

func TestSearchThroughCachedEncoder(t *testing.T) {
	base := &countingEncoder{Encoder: encoder.NewHash(32)}
	c := slideCorpus(t)
	idx, err := Build(context.Background(), c.Entries(), base, BuildOptions{})
	require.NoError(t, err)

	cached := encoder.NewCached(base, 4)
	r, err := NewRetriever(idx, c, cached, textnorm.Default(), ranker.Defaults())
	require.NoError(t, err)

	before := base.calls.Load()
	first, err := r.Search(context.Background(), "margin", 2)
	require.NoError(t, err)
	second, err := r.Search(context.Background(), "MARGIN", 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, before+1, base.calls.Load())
}

func TestNewRetrieverChecks(t *testing.T) {
	c := slideCorpus(t)
	idx, err := Build(context.Background(), c.Entries(), encoder.NewHash(16), BuildOptions{})
	require.NoError(t, err)

	_, err = NewRetriever(idx, c, encoder.NewHash(32), textnorm.Default(), ranker.Defaults())
	assert.ErrorIs(t, err, apperrors.ErrDimensionMismatch)

	short, err := corpus.New(c.Entries()[:3])
	require.NoError(t, err)
	_, err = NewRetriever(idx, short, encoder.NewHash(16), textnorm.Default(), ranker.Defaults())
	assert.ErrorIs(t, err, apperrors.ErrIndexMisaligned)
}

package semantic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/encoder"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
)

// Retriever ranks pages by cosine similarity between the encoded query and
// each index row.
type Retriever struct {
	index      *Index
	corpus     *corpus.Corpus
	encoder    encoder.Encoder
	normalizer textnorm.Normalizer
	opts       ranker.Options
	logger     *slog.Logger
}

// NewRetriever checks that idx lines up with c and that enc produces vectors
// of the index's width. An encoder whose name differs from the one the index
// was built with is accepted with a warning.
func NewRetriever(idx *Index, c *corpus.Corpus, enc encoder.Encoder, n textnorm.Normalizer, opts ranker.Options) (*Retriever, error) {
	if err := c.CheckAligned("semantic index", idx.Rows); err != nil {
		return nil, err
	}
	if enc.Dim() != idx.Dim {
		return nil, fmt.Errorf("%w: encoder %s has %d dimensions, index was built with %d",
			apperrors.ErrDimensionMismatch, enc.Name(), enc.Dim(), idx.Dim)
	}
	logger := slog.Default().With("component", "semantic-retriever")
	if enc.Name() != idx.Model {
		logger.Warn("query encoder differs from index encoder", "index_model", idx.Model, "encoder", enc.Name())
	}
	return &Retriever{
		index:      idx,
		corpus:     c,
		encoder:    enc,
		normalizer: n,
		opts:       opts.Normalize(ranker.DefaultTopK),
		logger:     logger,
	}, nil
}

// Search returns up to topK pages ranked by cosine similarity. An empty or
// punctuation-only query returns no results without calling the encoder.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]ranker.Result, error) {
	cleaned := r.normalizer.Normalize(query)
	if cleaned == "" {
		return []ranker.Result{}, nil
	}
	vecs, err := r.encoder.Encode(ctx, []string{cleaned})
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("encoder %s returned %d vectors for one query", r.encoder.Name(), len(vecs))
	}
	q := vecs[0]
	if len(q) == r.index.Dim {
		// Copy before normalizing; cached vectors are shared.
		q = append([]float32(nil), q...)
		encoder.Normalize(q)
	}
	scores, err := r.index.Scores(q)
	if err != nil {
		return nil, err
	}

	opts := ranker.Options{TopK: topK, MinScore: r.opts.MinScore}.Normalize(r.opts.TopK)
	results, err := ranker.Rank(scores, opts, r.corpus.At)
	if err != nil {
		return nil, fmt.Errorf("ranking semantic scores: %w", err)
	}
	r.logger.Debug("semantic search", "query", cleaned, "top_k", opts.TopK, "results", len(results))
	return results, nil
}

// Index returns the underlying index.
func (r *Retriever) Index() *Index {
	return r.index
}

package lexical

import (
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
)

// Retriever scores queries against a loaded Index. It holds no mutable
// state and is safe for concurrent use.
type Retriever struct {
	index      *Index
	corpus     *corpus.Corpus
	normalizer textnorm.Normalizer
	opts       ranker.Options
	logger     *slog.Logger
}

// NewRetriever pairs idx with the corpus it was built from. opts.TopK is the
// default used when a search asks for a non-positive top-k.
func NewRetriever(idx *Index, c *corpus.Corpus, n textnorm.Normalizer, opts ranker.Options) (*Retriever, error) {
	if err := c.CheckAligned("lexical index", idx.Rows); err != nil {
		return nil, err
	}
	return &Retriever{
		index:      idx,
		corpus:     c,
		normalizer: n,
		opts:       opts.Normalize(ranker.DefaultTopK),
		logger:     slog.Default().With("component", "lexical-retriever"),
	}, nil
}

// Search returns up to topK pages ranked by TF-IDF cosine similarity. An
// empty or punctuation-only query returns no results.
func (r *Retriever) Search(query string, topK int) ([]ranker.Result, error) {
	cleaned := r.normalizer.Normalize(query)
	if cleaned == "" {
		return []ranker.Result{}, nil
	}
	q := r.index.Vectorize(cleaned)
	scores := r.index.Scores(q)

	opts := ranker.Options{TopK: topK, MinScore: r.opts.MinScore}.Normalize(r.opts.TopK)
	results, err := ranker.Rank(scores, opts, r.corpus.At)
	if err != nil {
		return nil, fmt.Errorf("ranking lexical scores: %w", err)
	}
	r.logger.Debug("lexical search",
		"query", cleaned,
		"matched_terms", q.Len(),
		"top_k", opts.TopK,
		"results", len(results),
	)
	return results, nil
}

// Index returns the underlying index.
func (r *Retriever) Index() *Index {
	return r.index
}

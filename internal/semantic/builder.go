package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/encoder"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const DefaultBatchSize = 32

// BuildOptions controls batch encoding. Workers bounds how many batches are
// in flight at once; results are always assembled in corpus order.
type BuildOptions struct {
	BatchSize int
	Workers   int
	// Progress, when set, is called after each batch with the number of pages
	// encoded so far.
	Progress func(done, total int)
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

// Build encodes every entry's text and stacks the vectors into an index.
// Entry texts are expected to be normalized already. Every vector is
// rescaled to unit length.
func Build(ctx context.Context, entries []corpus.Entry, enc encoder.Encoder, opts BuildOptions) (*Index, error) {
	if len(entries) == 0 {
		return nil, apperrors.ErrEmptyCorpus
	}
	opts = opts.withDefaults()
	dim := enc.Dim()
	if dim <= 0 {
		return nil, fmt.Errorf("%w: encoder %s reports dimension %d", apperrors.ErrInvalidParams, enc.Name(), dim)
	}
	n := len(entries)
	logger := slog.Default().With("component", "semantic-builder", "encoder", enc.Name())
	start := time.Now()

	idx := &Index{
		Dim:    dim,
		Model:  enc.Name(),
		Matrix: make([]float32, n*dim),
		Rows:   make([]corpus.Key, n),
	}
	for i, e := range entries {
		idx.Rows[i] = e.Key()
	}

	batches := (n + opts.BatchSize - 1) / opts.BatchSize
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for b := 0; b < batches; b++ {
		lo := b * opts.BatchSize
		hi := min(lo+opts.BatchSize, n)
		g.Go(func() error {
			texts := make([]string, hi-lo)
			for i := lo; i < hi; i++ {
				texts[i-lo] = entries[i].Text
			}
			vecs, err := enc.Encode(gctx, texts)
			if err != nil {
				return fmt.Errorf("encoding pages %d-%d: %w", lo, hi-1, err)
			}
			if len(vecs) != len(texts) {
				return fmt.Errorf("encoder %s returned %d vectors for %d pages", enc.Name(), len(vecs), len(texts))
			}
			for k, v := range vecs {
				if len(v) != dim {
					return fmt.Errorf("%w: page %s encoded to %d dimensions, expected %d",
						apperrors.ErrDimensionMismatch, idx.Rows[lo+k], len(v), dim)
				}
				row := idx.Matrix[(lo+k)*dim : (lo+k+1)*dim]
				copy(row, v)
				if encoder.Normalize(row) == 0 {
					logger.Warn("page encoded to a zero vector", "page", idx.Rows[lo+k])
				}
			}
			total := int(done.Add(int64(hi - lo)))
			logger.Debug("encoded batch", "batch", b+1, "batches", batches, "pages", total)
			if opts.Progress != nil {
				opts.Progress(total, n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("semantic index built",
		"pages", n,
		"dim", dim,
		"batches", batches,
		"duration", time.Since(start),
	)
	return idx, nil
}

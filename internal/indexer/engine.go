// Package indexer builds the lexical and semantic indices from a page corpus
// and publishes them to the data directory as one atomic set.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/encoder"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/lexical"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/semantic"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/tracing"
)

// IndexComplete is published after a build commits. Searchers reload when
// they receive it.
type IndexComplete struct {
	BuildID     string    `json:"build_id"`
	DataDir     string    `json:"data_dir"`
	Pages       int       `json:"pages"`
	Vocabulary  int       `json:"vocabulary"`
	Dim         int       `json:"dim"`
	Model       string    `json:"model"`
	CompletedAt time.Time `json:"completed_at"`
}

// Options configures an Engine. Publisher and Metrics may be nil.
type Options struct {
	DataDir    string
	Normalizer textnorm.Normalizer
	Lexical    lexical.Params
	Semantic   semantic.BuildOptions
	Encoder    encoder.Encoder
	Publisher  kafka.Publisher
	Metrics    *metrics.Metrics
}

type Engine struct {
	source corpus.Source
	opts   Options
	logger *slog.Logger
}

func NewEngine(source corpus.Source, opts Options) (*Engine, error) {
	if err := opts.Lexical.Validate(); err != nil {
		return nil, err
	}
	if opts.Encoder == nil {
		return nil, fmt.Errorf("indexer requires an encoder")
	}
	return &Engine{
		source: source,
		opts:   opts,
		logger: slog.Default().With("component", "indexer"),
	}, nil
}

// CorpusPath, LexicalPath and SemanticPath locate the files one build writes.
func (e *Engine) CorpusPath() string   { return filepath.Join(e.opts.DataDir, corpus.FileName) }
func (e *Engine) LexicalPath() string  { return filepath.Join(e.opts.DataDir, lexical.FileName) }
func (e *Engine) SemanticPath() string { return filepath.Join(e.opts.DataDir, semantic.FileName) }

// Build loads the corpus, builds both indices concurrently and commits the
// corpus snapshot and both index files together. A failed build leaves the
// previous files untouched.
func (e *Engine) Build(ctx context.Context) (report *IndexComplete, err error) {
	start := time.Now()
	buildID := uuid.NewString()
	logger := e.logger.With("build_id", buildID)
	ctx, span := tracing.Start(ctx, "index_build", buildID)
	defer func() {
		span.End()
		span.Log(logger)
		e.opts.Metrics.ObserveBuild(err)
	}()

	if err := os.MkdirAll(e.opts.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index data directory: %w", err)
	}

	stage := time.Now()
	_, corpusSpan := tracing.StartChild(ctx, "corpus")
	entries, err := e.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	raw, err := corpus.New(entries)
	if err != nil {
		return nil, err
	}
	normalized := raw.Normalized(e.opts.Normalizer)
	corpusSpan.SetAttr("pages", raw.Len())
	corpusSpan.End()
	e.opts.Metrics.ObserveBuildStage("corpus", time.Since(stage))
	logger.Info("corpus loaded", "pages", raw.Len(), "duration", time.Since(stage))

	var (
		lex *lexical.Index
		sem *semantic.Index
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.Now()
		_, span := tracing.StartChild(gctx, "lexical")
		defer span.End()
		idx, err := lexical.Build(normalized.Entries(), e.opts.Lexical)
		if err != nil {
			return fmt.Errorf("building lexical index: %w", err)
		}
		lex = idx
		span.SetAttr("vocabulary", idx.VocabularySize())
		e.opts.Metrics.ObserveBuildStage("lexical", time.Since(t))
		logger.Info("lexical index built", "vocabulary", idx.VocabularySize(), "nnz", idx.Matrix.NNZ(), "duration", time.Since(t))
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		sctx, span := tracing.StartChild(gctx, "semantic")
		defer span.End()
		idx, err := semantic.Build(sctx, normalized.Entries(), e.opts.Encoder, e.opts.Semantic)
		if err != nil {
			return fmt.Errorf("building semantic index: %w", err)
		}
		sem = idx
		span.SetAttr("dim", idx.Dim)
		e.opts.Metrics.ObserveBuildStage("semantic", time.Since(t))
		logger.Info("semantic index built", "dim", idx.Dim, "model", idx.Model, "duration", time.Since(t))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stage = time.Now()
	_, commitSpan := tracing.StartChild(ctx, "commit")
	err = e.commit(buildID, raw, lex, sem)
	commitSpan.End()
	if err != nil {
		return nil, err
	}
	e.opts.Metrics.ObserveBuildStage("commit", time.Since(stage))
	e.opts.Metrics.SetIndexSize(raw.Len(), lex.VocabularySize())

	report = &IndexComplete{
		BuildID:     buildID,
		DataDir:     e.opts.DataDir,
		Pages:       raw.Len(),
		Vocabulary:  lex.VocabularySize(),
		Dim:         sem.Dim,
		Model:       sem.Model,
		CompletedAt: time.Now().UTC(),
	}
	logger.Info("index build complete", "pages", report.Pages, "duration", time.Since(start))
	e.publish(ctx, report, logger)
	return report, nil
}

func (e *Engine) commit(buildID string, c *corpus.Corpus, lex *lexical.Index, sem *semantic.Index) error {
	tx := store.Tx{Build: buildID}
	if err := c.Stage(&tx, e.CorpusPath()); err != nil {
		tx.Abort()
		return fmt.Errorf("staging corpus snapshot: %w", err)
	}
	if err := lex.Stage(&tx, e.LexicalPath()); err != nil {
		tx.Abort()
		return fmt.Errorf("staging lexical index: %w", err)
	}
	if err := sem.Stage(&tx, e.SemanticPath()); err != nil {
		tx.Abort()
		return fmt.Errorf("staging semantic index: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index files: %w", err)
	}
	return nil
}

// publish is best effort; the files are already in place.
func (e *Engine) publish(ctx context.Context, report *IndexComplete, logger *slog.Logger) {
	if e.opts.Publisher == nil {
		return
	}
	if err := e.opts.Publisher.Publish(ctx, kafka.Event{Key: report.DataDir, Value: report}); err != nil {
		logger.Warn("failed to publish index completion", "error", err)
	}
}

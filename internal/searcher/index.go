// Package searcher owns the loaded search state. Index lazily loads the
// corpus snapshot and both indices from the data directory on first use,
// verifies that their rows line up, and swaps in a fresh snapshot on Reload.
package searcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/encoder"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/lexical"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/semantic"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/metrics"
)

// Paths are the three files making up one built index.
type Paths struct {
	Corpus   string
	Lexical  string
	Semantic string
}

// PathsIn returns the standard file locations inside dir.
func PathsIn(dir string) Paths {
	return Paths{
		Corpus:   filepath.Join(dir, corpus.FileName),
		Lexical:  filepath.Join(dir, lexical.FileName),
		Semantic: filepath.Join(dir, semantic.FileName),
	}
}

// Snapshot is one immutable, aligned set of loaded state.
type Snapshot struct {
	Corpus     *corpus.Corpus
	Lexical    *lexical.Retriever
	Semantic   *semantic.Retriever
	Generation uint64
	BuildID    string
	LoadedAt   time.Time
}

// Options configures an Index. Encoder is the query-side encoder, usually
// wrapped in encoder.Cached.
type Options struct {
	DataDir    string
	Normalizer textnorm.Normalizer
	Encoder    encoder.Encoder
	Ranking    ranker.Options
	Metrics    *metrics.Metrics
}

// Index is safe for concurrent use. Reads after the first successful load take
// no locks.
type Index struct {
	opts       Options
	paths      Paths
	current    atomic.Pointer[Snapshot]
	mu         sync.Mutex
	generation uint64
	logger     *slog.Logger
}

func NewIndex(opts Options) *Index {
	return &Index{
		opts:   opts,
		paths:  PathsIn(opts.DataDir),
		logger: slog.Default().With("component", "search-index", "dir", opts.DataDir),
	}
}

// Get returns the current snapshot, loading it on first use. A failed load is
// not remembered, so a later call picks up an index built in the meantime.
func (x *Index) Get() (*Snapshot, error) {
	if s := x.current.Load(); s != nil {
		return s, nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if s := x.current.Load(); s != nil {
		return s, nil
	}
	s, err := x.load()
	if err != nil {
		return nil, err
	}
	x.current.Store(s)
	return s, nil
}

// Reload reads the files again and atomically replaces the current snapshot.
// On failure the previous snapshot, if any, stays in service.
func (x *Index) Reload() (*Snapshot, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	s, err := x.load()
	if err != nil {
		if x.current.Load() != nil {
			x.logger.Warn("reload failed, keeping previous index", "error", err)
		}
		return nil, err
	}
	x.current.Store(s)
	return s, nil
}

// Loaded reports whether a snapshot is in service.
func (x *Index) Loaded() bool {
	return x.current.Load() != nil
}

func (x *Index) load() (s *Snapshot, err error) {
	start := time.Now()
	defer func() { x.opts.Metrics.ObserveReload(err) }()

	c, err := corpus.Load(x.paths.Corpus)
	if err != nil {
		return nil, fmt.Errorf("loading corpus snapshot: %w", err)
	}
	lex, err := lexical.Load(x.paths.Lexical)
	if err != nil {
		return nil, fmt.Errorf("loading lexical index: %w", err)
	}
	sem, err := semantic.Load(x.paths.Semantic)
	if err != nil {
		return nil, fmt.Errorf("loading semantic index: %w", err)
	}

	lexRetriever, err := lexical.NewRetriever(lex, c, x.opts.Normalizer, x.opts.Ranking)
	if err != nil {
		return nil, err
	}
	semRetriever, err := semantic.NewRetriever(sem, c, x.opts.Encoder, x.opts.Normalizer, x.opts.Ranking)
	if err != nil {
		return nil, err
	}
	// Row-identical rebuilds pass the alignment checks above, so a set left
	// half-renamed by an interrupted commit is caught by its build stamps.
	if c.BuildID() != lex.BuildID || c.BuildID() != sem.BuildID {
		return nil, fmt.Errorf("%w: files come from different builds (corpus %q, lexical %q, semantic %q)",
			apperrors.ErrIndexMisaligned, c.BuildID(), lex.BuildID, sem.BuildID)
	}

	x.generation++
	s = &Snapshot{
		Corpus:     c,
		Lexical:    lexRetriever,
		Semantic:   semRetriever,
		Generation: x.generation,
		BuildID:    c.BuildID(),
		LoadedAt:   time.Now(),
	}
	x.opts.Metrics.SetIndexSize(c.Len(), lex.VocabularySize())
	x.logger.Info("index loaded",
		"generation", s.Generation,
		"build_id", s.BuildID,
		"pages", c.Len(),
		"vocabulary", lex.VocabularySize(),
		"dim", sem.Dim,
		"model", sem.Model,
		"duration", time.Since(start),
	)
	return s, nil
}

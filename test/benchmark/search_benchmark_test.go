package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/encoder"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/lexical"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
)

// BenchmarkQueryParse measures turning request parameters into a plan.
func BenchmarkQueryParse(b *testing.B) {
	queries := []struct {
		name, query, mode string
	}{
		{"short", "tf idf", "lexical"},
		{"punctuated", "What's the cosine-similarity of two vectors?", "both"},
		{"long", "inverted index posting list term frequency document frequency cosine similarity vector space model", "semantic"},
	}
	limits := parser.Limits{DefaultTopK: 5, MaxTopK: 100}
	n := textnorm.Default()
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := parser.Parse(q.query, q.mode, "10", n, limits); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkRank measures stable top-k selection over score vectors of
// different sizes.
func BenchmarkRank(b *testing.B) {
	for _, n := range []int{1000, 10000, 100000} {
		rng := rand.New(rand.NewSource(7))
		scores := make([]float64, n)
		for i := range scores {
			scores[i] = rng.Float64()
		}
		lookup := func(row int) corpus.Entry {
			return corpus.Entry{DocID: "lecture.pdf", PageNumber: row + 1}
		}
		b.Run(fmt.Sprintf("rows_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := ranker.Rank(scores, ranker.Options{TopK: 10}, lookup); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkExecute measures the full query path over a built index in each
// mode.
func BenchmarkExecute(b *testing.B) {
	dir := b.TempDir()
	norm := textnorm.Default()
	enc := encoder.NewHash(128)
	engine, err := indexer.NewEngine(corpus.Static(syntheticEntries(2000, 60)), indexer.Options{
		DataDir:    dir,
		Normalizer: norm,
		Lexical:    lexical.DefaultParams(),
		Encoder:    enc,
	})
	if err != nil {
		b.Fatal(err)
	}
	if _, err := engine.Build(context.Background()); err != nil {
		b.Fatal(err)
	}
	idx := searcher.NewIndex(searcher.Options{
		DataDir:    dir,
		Normalizer: norm,
		Encoder:    encoder.NewCached(enc, 1024),
		Ranking:    ranker.Defaults(),
	})
	exec := executor.New(idx, nil)
	limits := parser.Limits{DefaultTopK: 5, MaxTopK: 100}

	for _, mode := range []string{"lexical", "semantic", "both"} {
		plan, err := parser.Parse("cosine similarity of sparse vectors", mode, "10", norm, limits)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(mode, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := exec.Execute(context.Background(), plan); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

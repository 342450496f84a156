package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/encoder"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/lexical"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/semantic"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
)

// BenchmarkLexicalBuild measures TF-IDF vocabulary selection and matrix
// construction for growing corpora.
func BenchmarkLexicalBuild(b *testing.B) {
	for _, n := range []int{100, 1000, 5000} {
		entries := syntheticEntries(n, 60)
		b.Run(fmt.Sprintf("pages_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := lexical.Build(entries, lexical.DefaultParams()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkSemanticBuild measures batch encoding with the hash encoder at
// different worker counts.
func BenchmarkSemanticBuild(b *testing.B) {
	entries := syntheticEntries(2000, 60)
	enc := encoder.NewHash(256)
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := semantic.Build(context.Background(), entries, enc, semantic.BuildOptions{Workers: workers})
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkEngineBuild measures a full build including the atomic commit of
// all three files.
func BenchmarkEngineBuild(b *testing.B) {
	entries := syntheticEntries(1000, 60)
	engine, err := indexer.NewEngine(corpus.Static(entries), indexer.Options{
		DataDir:    b.TempDir(),
		Normalizer: textnorm.Default(),
		Lexical:    lexical.DefaultParams(),
		Encoder:    encoder.NewHash(128),
	})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Build(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

// Package benchmark contains Go benchmarks for normalization, index builds and
// the query path, measuring throughput and allocation behaviour over a
// synthetic slide corpus.
package benchmark

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
)

var vocabulary = []string{
	"inverted", "index", "posting", "list", "term", "frequency", "document",
	"cosine", "similarity", "vector", "space", "model", "query", "ranking",
	"precision", "recall", "stemming", "tokenization", "embedding", "semantic",
	"boolean", "retrieval", "relevance", "feedback", "bigram", "unigram",
	"weighting", "normalization", "lecture", "slide", "matrix", "sparse",
}

// syntheticEntries builds n deterministic pages spread over docs of 20 pages.
func syntheticEntries(n, wordsPerPage int) []corpus.Entry {
	rng := rand.New(rand.NewSource(42))
	entries := make([]corpus.Entry, n)
	for i := range entries {
		words := make([]string, wordsPerPage)
		for j := range words {
			words[j] = vocabulary[rng.Intn(len(vocabulary))]
		}
		entries[i] = corpus.Entry{
			DocID:      fmt.Sprintf("lecture-%03d.pdf", i/20),
			PageNumber: i%20 + 1,
			Text:       strings.Join(words, " "),
		}
	}
	return entries
}

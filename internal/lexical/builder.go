package lexical

import (
	"fmt"
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
)

// Validate checks that params describe a usable vocabulary selection.
func (p Params) Validate() error {
	if p.MaxFeatures <= 0 {
		return fmt.Errorf("%w: max_features must be positive, got %d", apperrors.ErrInvalidParams, p.MaxFeatures)
	}
	if p.NGramMin < 1 || p.NGramMax < p.NGramMin {
		return fmt.Errorf("%w: n-gram range (%d, %d)", apperrors.ErrInvalidParams, p.NGramMin, p.NGramMax)
	}
	if p.MinDF < 1 {
		return fmt.Errorf("%w: min_df must be at least 1, got %d", apperrors.ErrInvalidParams, p.MinDF)
	}
	if p.MaxDF <= 0 || math.IsNaN(p.MaxDF) {
		return fmt.Errorf("%w: max_df must be positive, got %g", apperrors.ErrInvalidParams, p.MaxDF)
	}
	if p.MaxDF > 1 && math.Floor(p.MaxDF) < float64(p.MinDF) {
		return fmt.Errorf("%w: max_df %g documents is fewer than min_df %d",
			apperrors.ErrInvalidParams, p.MaxDF, p.MinDF)
	}
	return nil
}

// maxDocCount resolves MaxDF against a corpus of n documents.
func (p Params) maxDocCount(n int) float64 {
	if p.MaxDF <= 1 {
		return p.MaxDF * float64(n)
	}
	return math.Floor(p.MaxDF)
}

// Build fits a vocabulary and IDF weights to entries and returns the TF-IDF
// index. Entry texts are expected to be normalized already; row i of the
// matrix corresponds to entries[i].
func Build(entries []corpus.Entry, params Params) (*Index, error) {
	if len(entries) == 0 {
		return nil, apperrors.ErrEmptyCorpus
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n := len(entries)
	high := params.maxDocCount(n)

	docCounts := make([]map[string]int, n)
	df := make(map[string]int)
	total := make(map[string]int)
	for i, e := range entries {
		counts := make(map[string]int)
		forEachNGram(textnorm.Tokenize(e.Text), params.NGramMin, params.NGramMax, func(gram string) {
			counts[gram]++
		})
		for gram, c := range counts {
			df[gram]++
			total[gram] += c
		}
		docCounts[i] = counts
	}

	terms := selectTerms(df, total, params.MinDF, high, params.MaxFeatures)
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: %d candidate terms, min_df=%d max_df=%g over %d documents",
			apperrors.ErrVocabularyExhausted, len(df), params.MinDF, params.MaxDF, n)
	}

	vocab := make(map[string]int, len(terms))
	docFreq := make([]int, len(terms))
	idf := make([]float64, len(terms))
	for c, t := range terms {
		vocab[t] = c
		docFreq[c] = df[t]
		idf[c] = smoothIDF(n, df[t])
	}

	m := &Matrix{
		Rows:   n,
		Cols:   len(terms),
		RowPtr: make([]uint32, 1, n+1),
	}
	for _, counts := range docCounts {
		inVocab := make(map[int]int, len(counts))
		for gram, c := range counts {
			if col, ok := vocab[gram]; ok {
				inVocab[col] = c
			}
		}
		row := weigh(inVocab, idf)
		m.ColIdx = append(m.ColIdx, row.Cols...)
		for _, w := range row.Weights {
			m.Values = append(m.Values, float32(w))
		}
		m.RowPtr = append(m.RowPtr, uint32(len(m.Values)))
	}

	rows := make([]corpus.Key, n)
	for i, e := range entries {
		rows[i] = e.Key()
	}
	return newIndex(params, n, terms, docFreq, idf, m, rows), nil
}

// selectTerms applies the document frequency bounds, keeps the maxFeatures
// most frequent survivors (ties broken alphabetically) and returns them in
// alphabetical order, which defines the column order.
func selectTerms(df, total map[string]int, minDF int, maxDocs float64, maxFeatures int) []string {
	kept := make([]string, 0, len(df))
	for t, d := range df {
		if d < minDF || float64(d) > maxDocs {
			continue
		}
		kept = append(kept, t)
	}
	sort.Strings(kept)
	if len(kept) > maxFeatures {
		sort.SliceStable(kept, func(i, j int) bool {
			return total[kept[i]] > total[kept[j]]
		})
		kept = kept[:maxFeatures]
		sort.Strings(kept)
	}
	return kept
}

package ranker

import (
	"fmt"
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
)

// DefaultTopK replaces non-positive top-k requests.
const DefaultTopK = 5

// Result is one ranked page.
type Result struct {
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
	DocID      string  `json:"doc_id"`
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
}

// NewResult builds a Result, rejecting values no ranked page can have.
func NewResult(rank int, score float64, entry corpus.Entry) (Result, error) {
	if rank < 1 {
		return Result{}, fmt.Errorf("rank must be 1-based, got %d", rank)
	}
	if entry.DocID == "" {
		return Result{}, fmt.Errorf("result at rank %d has an empty doc_id", rank)
	}
	if entry.PageNumber < 1 {
		return Result{}, fmt.Errorf("result %s at rank %d has page number %d", entry.DocID, rank, entry.PageNumber)
	}
	return Result{
		Rank:       rank,
		Score:      score,
		DocID:      entry.DocID,
		PageNumber: entry.PageNumber,
		Text:       entry.Text,
	}, nil
}

// Options controls truncation and filtering. The zero value floors scores at
// zero; use Defaults to accept every score.
type Options struct {
	TopK     int
	MinScore float64
}

// Defaults returns Options with the default top-k and a floor that accepts
// every score.
func Defaults() Options {
	return Options{TopK: DefaultTopK, MinScore: math.Inf(-1)}
}

// Normalize fills in the default top-k when opts.TopK is not positive.
func (o Options) Normalize(defaultTopK int) Options {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	if o.TopK <= 0 {
		o.TopK = defaultTopK
	}
	return o
}

// Lookup returns the corpus entry for a row index.
type Lookup func(row int) corpus.Entry

// Rank orders rows by descending score and returns the first opts.TopK as
// Results. Rows with equal scores keep their row order. Scores below
// opts.MinScore are dropped; NaN scores sort last and are never returned.
func Rank(scores []float64, opts Options, lookup Lookup) ([]Result, error) {
	opts = opts.Normalize(DefaultTopK)
	rows := TopK(scores, opts.TopK)

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		score := scores[row]
		if math.IsNaN(score) || score < opts.MinScore {
			break
		}
		result, err := NewResult(len(results)+1, score, lookup(row))
		if err != nil {
			return nil, fmt.Errorf("shaping row %d: %w", row, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// TopK returns the indices of the k highest scores, highest first, with ties
// broken by ascending index.
func TopK(scores []float64, k int) []int {
	rows := make([]int, len(scores))
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return greater(scores[rows[i]], scores[rows[j]])
	})
	if k < len(rows) {
		rows = rows[:k]
	}
	return rows
}

func greater(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a > b
}

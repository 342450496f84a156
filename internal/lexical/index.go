// Package lexical implements the TF-IDF page index: a vocabulary of word
// unigrams and bigrams selected by document frequency, a row-normalized
// sparse weight matrix aligned with the corpus, and a retriever that scores
// queries by cosine similarity against it.
package lexical

import (
	"math"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
)

// Params controls vocabulary selection. MaxDF is a fraction of the corpus
// when <= 1 and an absolute document count when > 1.
type Params struct {
	MaxFeatures int     `json:"max_features"`
	NGramMin    int     `json:"ngram_min"`
	NGramMax    int     `json:"ngram_max"`
	MinDF       int     `json:"min_df"`
	MaxDF       float64 `json:"max_df"`
}

func DefaultParams() Params {
	return Params{
		MaxFeatures: 20000,
		NGramMin:    1,
		NGramMax:    2,
		MinDF:       1,
		MaxDF:       0.9,
	}
}

// Matrix is an N×V sparse matrix in compressed sparse row form. Column
// indices within a row are strictly increasing.
type Matrix struct {
	Rows   int
	Cols   int
	RowPtr []uint32
	ColIdx []uint32
	Values []float32
}

// Row returns the column indices and weights of row i.
func (m *Matrix) Row(i int) ([]uint32, []float32) {
	start, end := m.RowPtr[i], m.RowPtr[i+1]
	return m.ColIdx[start:end], m.Values[start:end]
}

// NNZ returns the number of stored weights.
func (m *Matrix) NNZ() int {
	return len(m.Values)
}

// RowNorm returns the Euclidean norm of row i.
func (m *Matrix) RowNorm(i int) float64 {
	_, vals := m.Row(i)
	var sum float64
	for _, v := range vals {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Vector is a sparse vector in the vocabulary space, sorted by column.
type Vector struct {
	Cols    []uint32
	Weights []float64
}

func (v Vector) Len() int {
	return len(v.Cols)
}

// Index is a built lexical index. It is read-only once constructed.
type Index struct {
	Params   Params
	NumDocs  int
	Terms    []string
	DocFreq  []int
	IDF      []float64
	Matrix   *Matrix
	Rows     []corpus.Key
	BuildID  string
	vocab    map[string]int
	postings [][]posting
}

type posting struct {
	row    uint32
	weight float32
}

// newIndex derives the term lookup table and per-term postings from the
// persisted fields.
func newIndex(params Params, numDocs int, terms []string, docFreq []int, idf []float64, m *Matrix, rows []corpus.Key) *Index {
	idx := &Index{
		Params:  params,
		NumDocs: numDocs,
		Terms:   terms,
		DocFreq: docFreq,
		IDF:     idf,
		Matrix:  m,
		Rows:    rows,
		vocab:   make(map[string]int, len(terms)),
	}
	for i, t := range terms {
		idx.vocab[t] = i
	}
	counts := make([]int, len(terms))
	for _, c := range m.ColIdx {
		counts[c]++
	}
	idx.postings = make([][]posting, len(terms))
	for c, n := range counts {
		idx.postings[c] = make([]posting, 0, n)
	}
	for row := 0; row < m.Rows; row++ {
		cols, vals := m.Row(row)
		for k, c := range cols {
			idx.postings[c] = append(idx.postings[c], posting{row: uint32(row), weight: vals[k]})
		}
	}
	return idx
}

// Column returns the column index of term, if it is in the vocabulary.
func (idx *Index) Column(term string) (int, bool) {
	c, ok := idx.vocab[term]
	return c, ok
}

// VocabularySize returns V.
func (idx *Index) VocabularySize() int {
	return len(idx.Terms)
}

// Vectorize maps already-normalized text into the vocabulary space using the
// learned IDF weights and L2-normalizes the result. Out-of-vocabulary terms
// are ignored; text with no known terms yields an empty vector.
func (idx *Index) Vectorize(text string) Vector {
	counts := make(map[int]int)
	forEachNGram(textnorm.Tokenize(text), idx.Params.NGramMin, idx.Params.NGramMax, func(gram string) {
		if c, ok := idx.vocab[gram]; ok {
			counts[c]++
		}
	})
	return weigh(counts, idx.IDF)
}

// Scores returns the dot product of q with every row. Rows are unit length,
// so for a normalized q this is the cosine similarity.
func (idx *Index) Scores(q Vector) []float64 {
	scores := make([]float64, idx.NumDocs)
	for k, c := range q.Cols {
		w := q.Weights[k]
		for _, p := range idx.postings[c] {
			scores[p.row] += w * float64(p.weight)
		}
	}
	return scores
}

// weigh turns raw term counts into an L2-normalized TF-IDF vector.
func weigh(counts map[int]int, idf []float64) Vector {
	v := Vector{
		Cols:    make([]uint32, 0, len(counts)),
		Weights: make([]float64, 0, len(counts)),
	}
	cols := make([]int, 0, len(counts))
	for c := range counts {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	var norm float64
	for _, c := range cols {
		w := float64(counts[c]) * idf[c]
		v.Cols = append(v.Cols, uint32(c))
		v.Weights = append(v.Weights, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range v.Weights {
			v.Weights[i] /= norm
		}
	}
	return v
}

// forEachNGram calls fn for every n-gram of tokens with lo <= n <= hi,
// joining tokens with a single space.
func forEachNGram(tokens []string, lo, hi int, fn func(string)) {
	for n := lo; n <= hi; n++ {
		if n == 1 {
			for _, t := range tokens {
				fn(t)
			}
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			fn(strings.Join(tokens[i:i+n], " "))
		}
	}
}

// smoothIDF is ln((1+N)/(1+df)) + 1.
func smoothIDF(numDocs, df int) float64 {
	return math.Log(float64(1+numDocs)/float64(1+df)) + 1
}

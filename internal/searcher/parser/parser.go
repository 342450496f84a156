// Package parser turns raw request parameters (query text, strategy name and
// top-k) into a normalized search plan.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
)

// Mode selects which retriever answers a query.
type Mode string

const (
	ModeLexical  Mode = "lexical"
	ModeSemantic Mode = "semantic"
	ModeBoth     Mode = "both"
)

// Lexical reports whether m includes the TF-IDF retriever.
func (m Mode) Lexical() bool { return m == ModeLexical || m == ModeBoth }

// Semantic reports whether m includes the embedding retriever.
func (m Mode) Semantic() bool { return m == ModeSemantic || m == ModeBoth }

// ParseMode accepts the strategy names used by the web form and the menu
// numbers used by the interactive CLI. An empty string means both.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "3", "both":
		return ModeBoth, nil
	case "1", "tfidf", "tf-idf", "lexical":
		return ModeLexical, nil
	case "2", "emb", "embedding", "embeddings", "semantic":
		return ModeSemantic, nil
	}
	return "", fmt.Errorf("%w: unknown search mode %q (want lexical, semantic or both)", apperrors.ErrInvalidInput, s)
}

// ParseTopK reads a top-k parameter. Missing, non-numeric and non-positive
// values fall back to def; values above max are clamped when max > 0.
func ParseTopK(s string, def, max int) int {
	k, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || k <= 0 {
		k = def
	}
	if max > 0 && k > max {
		k = max
	}
	return k
}

// Plan is a validated search request.
type Plan struct {
	RawQuery   string
	Normalized string
	Mode       Mode
	TopK       int
}

// Empty reports whether the query has nothing left after normalization.
func (p *Plan) Empty() bool {
	return p.Normalized == ""
}

// Limits bounds the top-k a request may ask for.
type Limits struct {
	DefaultTopK int
	MaxTopK     int
}

// Parse builds a Plan from raw request values.
func Parse(query, mode, topK string, n textnorm.Normalizer, limits Limits) (*Plan, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return &Plan{
		RawQuery:   query,
		Normalized: n.Normalize(query),
		Mode:       m,
		TopK:       ParseTopK(topK, limits.DefaultTopK, limits.MaxTopK),
	}, nil
}

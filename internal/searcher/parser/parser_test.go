package parser

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":          ModeBoth,
		"both":      ModeBoth,
		"3":         ModeBoth,
		"1":         ModeLexical,
		"tfidf":     ModeLexical,
		" Lexical ": ModeLexical,
		"2":         ModeSemantic,
		"emb":       ModeSemantic,
		"SEMANTIC":  ModeSemantic,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("4")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	assert.True(t, ModeBoth.Lexical())
	assert.True(t, ModeBoth.Semantic())
	assert.False(t, ModeLexical.Semantic())
	assert.False(t, ModeSemantic.Lexical())
}

func TestParseTopK(t *testing.T) {
	assert.Equal(t, 5, ParseTopK("", 5, 100))
	assert.Equal(t, 5, ParseTopK("abc", 5, 100))
	assert.Equal(t, 5, ParseTopK("0", 5, 100))
	assert.Equal(t, 5, ParseTopK("-2", 5, 100))
	assert.Equal(t, 12, ParseTopK(" 12 ", 5, 100))
	assert.Equal(t, 100, ParseTopK("1000", 5, 100))
	assert.Equal(t, 1000, ParseTopK("1000", 5, 0))
}

func TestParse(t *testing.T) {
	limits := Limits{DefaultTopK: 5, MaxTopK: 50}
	plan, err := Parse("  What is TF-IDF? ", "tfidf", "x", textnorm.Default(), limits)
	require.NoError(t, err)
	assert.Equal(t, "what is tf idf", plan.Normalized)
	assert.Equal(t, ModeLexical, plan.Mode)
	assert.Equal(t, 5, plan.TopK)
	assert.False(t, plan.Empty())

	plan, err = Parse("?!", "", "3", textnorm.Default(), limits)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.Equal(t, ModeBoth, plan.Mode)

	_, err = Parse("cat", "bogus", "", textnorm.Default(), limits)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

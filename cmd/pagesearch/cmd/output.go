package cmd

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/ranker"
)

const snippetChars = 300

var rule = strings.Repeat("=", 80)

func lexicalHeader(k int) string  { return fmt.Sprintf("TF-IDF Results (Top-%d)", k) }
func semanticHeader(k int) string { return fmt.Sprintf("Embeddings Semantic Search Results (Top-%d)", k) }

func printResults(w io.Writer, results []ranker.Result, header string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, header, rule)
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "\n[%d] %s (page %d)  |  score = %.4f\n", r.Rank, r.DocID, r.PageNumber, r.Score)
		fmt.Fprintf(w, "    %s\n", snippet(r.Text, snippetChars))
	}
}

// snippet truncates to max characters, not bytes.
func snippet(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max]) + "..."
}

// Package corpus defines the page-level corpus shared by the lexical and
// semantic indices. The position of an entry in a Corpus is its row index in
// both index matrices.
package corpus

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
)

// Key identifies a page within the corpus.
type Key struct {
	DocID      string `json:"doc_id"`
	PageNumber int    `json:"page_number"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.DocID, k.PageNumber)
}

// Entry is one extracted page.
type Entry struct {
	DocID      string `json:"doc_id"`
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

func (e Entry) Key() Key {
	return Key{DocID: e.DocID, PageNumber: e.PageNumber}
}

// Source yields the corpus in its canonical order.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

// Corpus is an immutable, ordered sequence of entries.
type Corpus struct {
	entries []Entry
	buildID string
}

// New validates entries and wraps them in a Corpus. Entries must have a
// non-empty doc id, a positive page number, and a unique (doc id, page) key.
func New(entries []Entry) (*Corpus, error) {
	seen := make(map[Key]int, len(entries))
	for i, e := range entries {
		if e.DocID == "" {
			return nil, fmt.Errorf("%w: row %d has an empty doc_id", apperrors.ErrInvalidInput, i)
		}
		if e.PageNumber < 1 {
			return nil, fmt.Errorf("%w: row %d (%s) has page number %d", apperrors.ErrInvalidInput, i, e.DocID, e.PageNumber)
		}
		if prev, dup := seen[e.Key()]; dup {
			return nil, fmt.Errorf("%w: %s appears at rows %d and %d", apperrors.ErrInvalidInput, e.Key(), prev, i)
		}
		seen[e.Key()] = i
	}
	owned := make([]Entry, len(entries))
	copy(owned, entries)
	return &Corpus{entries: owned}, nil
}

// Normalized returns a copy of c with every text passed through n. Because
// normalization is idempotent this is safe for already-clean corpora.
func (c *Corpus) Normalized(n textnorm.Normalizer) *Corpus {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		e.Text = n.Normalize(e.Text)
		out[i] = e
	}
	return &Corpus{entries: out}
}

func (c *Corpus) Len() int {
	return len(c.entries)
}

// At returns the entry at row i.
func (c *Corpus) At(i int) Entry {
	return c.entries[i]
}

// Entries returns a copy of the entries in row order.
func (c *Corpus) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Texts returns the page texts in row order.
func (c *Corpus) Texts() []string {
	texts := make([]string, len(c.entries))
	for i, e := range c.entries {
		texts[i] = e.Text
	}
	return texts
}

// Keys returns the (doc id, page) keys in row order.
func (c *Corpus) Keys() []Key {
	keys := make([]Key, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Key()
	}
	return keys
}

// CheckAligned reports an ErrIndexMisaligned error naming the first row where
// rows differs from the corpus order.
func (c *Corpus) CheckAligned(name string, rows []Key) error {
	if len(rows) != len(c.entries) {
		return fmt.Errorf("%w: %s has %d rows, corpus has %d", apperrors.ErrIndexMisaligned, name, len(rows), len(c.entries))
	}
	for i, k := range rows {
		if k != c.entries[i].Key() {
			return fmt.Errorf("%w: %s row %d is %s, corpus row is %s", apperrors.ErrIndexMisaligned, name, i, k, c.entries[i].Key())
		}
	}
	return nil
}

// Static is a Source over entries already in memory.
type Static []Entry

func (s Static) Load(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Entry(nil), s...), nil
}

package corpus

import (
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/store"
)

// FileName is the corpus snapshot stored next to the indices, so a searcher
// can serve results without access to the original source.
const FileName = "corpus.psx"

type fileMeta struct {
	Entries []Entry `json:"entries"`
	Build   string  `json:"build,omitempty"`
}

// Stage writes the corpus into tx under path.
func (c *Corpus) Stage(tx *store.Tx, path string) error {
	return tx.Put(path, store.KindCorpus, fileMeta{Entries: c.entries, Build: tx.Build}, nil)
}

// Save atomically writes the corpus to path.
func (c *Corpus) Save(path string) error {
	return store.Write(path, store.KindCorpus, fileMeta{Entries: c.entries}, nil)
}

// Load reads a corpus written by Save or Stage and validates it again. A
// missing file yields ErrIndexNotBuilt.
func Load(path string) (*Corpus, error) {
	var meta fileMeta
	if _, err := store.Read(path, store.KindCorpus, &meta); err != nil {
		return nil, err
	}
	c, err := New(meta.Entries)
	if err != nil {
		return nil, err
	}
	c.buildID = meta.Build
	return c, nil
}

// BuildID names the build that committed the snapshot. It is empty for a
// corpus that was never loaded from a committed file.
func (c *Corpus) BuildID() string {
	return c.buildID
}

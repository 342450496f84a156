package corpus

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{DocID: "doc1", PageNumber: 1, Text: "the cat sat on the mat"},
		{DocID: "doc2", PageNumber: 1, Text: "dogs and cats are pets"},
	}
}

func TestNewValidates(t *testing.T) {
	_, err := New([]Entry{{DocID: "", PageNumber: 1}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = New([]Entry{{DocID: "a", PageNumber: 0}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = New([]Entry{{DocID: "a", PageNumber: 1}, {DocID: "a", PageNumber: 1}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	c, err := New(sampleEntries())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, Key{DocID: "doc2", PageNumber: 1}, c.At(1).Key())
	assert.Equal(t, []string{"the cat sat on the mat", "dogs and cats are pets"}, c.Texts())
}

func TestCorpusIsImmutable(t *testing.T) {
	entries := sampleEntries()
	c, err := New(entries)
	require.NoError(t, err)

	entries[0].Text = "mutated"
	got := c.Entries()
	got[1].Text = "also mutated"

	assert.Equal(t, "the cat sat on the mat", c.At(0).Text)
	assert.Equal(t, "dogs and cats are pets", c.At(1).Text)
}

func TestNormalized(t *testing.T) {
	c, err := New([]Entry{{DocID: "slides", PageNumber: 3, Text: "Lecture 3: TF-IDF!"}})
	require.NoError(t, err)
	n := c.Normalized(textnorm.Default())
	assert.Equal(t, "lecture tf idf", n.At(0).Text)
	assert.Equal(t, "Lecture 3: TF-IDF!", c.At(0).Text)
}

func TestCheckAligned(t *testing.T) {
	c, err := New(sampleEntries())
	require.NoError(t, err)

	require.NoError(t, c.CheckAligned("lexical", c.Keys()))

	err = c.CheckAligned("semantic", []Key{{DocID: "doc2", PageNumber: 1}, {DocID: "doc1", PageNumber: 1}})
	assert.ErrorIs(t, err, apperrors.ErrIndexMisaligned)
	assert.Contains(t, err.Error(), "row 0")

	err = c.CheckAligned("semantic", c.Keys()[:1])
	assert.ErrorIs(t, err, apperrors.ErrIndexMisaligned)
}

func TestCSVRoundTrip(t *testing.T) {
	entries := append(sampleEntries(), Entry{DocID: "lec,07", PageNumber: 12, Text: "quoted \"text\"\nwith newline"})
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, entries))

	got, err := ReadCSV(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestReadCSVColumnOrderAndFloatPages(t *testing.T) {
	data := "text,extra,page_number,doc_id\nhello world,x,2.0,lec01.pdf\n"
	got, err := ReadCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{DocID: "lec01.pdf", PageNumber: 2, Text: "hello world"}}, got)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("doc_id,text\na,b\n"))
	assert.ErrorContains(t, err, "page_number")

	_, err = ReadCSV(context.Background(), strings.NewReader("doc_id,page_number,text\na,two,b\n"))
	assert.ErrorContains(t, err, "line 2")

	got, err := ReadCSV(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides_corpus.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteCSV(f, sampleEntries()))
	require.NoError(t, f.Close())

	got, err := NewCSVSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleEntries(), got)

	_, err = NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background())
	assert.Error(t, err)
}

func TestPostgresSQL(t *testing.T) {
	assert.Contains(t, createTableSQL("corpus_pages"), `CREATE TABLE IF NOT EXISTS "corpus_pages"`)
	assert.Equal(t, `SELECT doc_id, page_number, text FROM "corpus_pages" ORDER BY position`, selectSQL("corpus_pages"))
}

func TestSaveLoadSnapshot(t *testing.T) {
	c, err := New(sampleEntries())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, c.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Entries(), loaded.Entries())

	_, err = Load(filepath.Join(t.TempDir(), FileName))
	assert.ErrorIs(t, err, apperrors.ErrIndexNotBuilt)
}

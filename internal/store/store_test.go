package store

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMeta struct {
	Rows  int      `json:"rows"`
	Terms []string `json:"terms"`
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lexical.psx")
	floats := []float32{0, 1, -1, 0.1, float32(math.Pi), math.SmallestNonzeroFloat32, math.MaxFloat32}
	ints := []uint32{0, 7, math.MaxUint32}
	data := AppendUint32s(AppendFloat32s(nil, floats), ints)

	require.NoError(t, Write(path, KindLexical, testMeta{Rows: 2, Terms: []string{"cat", "mat"}}, data))
	assert.False(t, Exists(path+".tmp"))

	var meta testMeta
	got, err := Read(path, KindLexical, &meta)
	require.NoError(t, err)
	assert.Equal(t, testMeta{Rows: 2, Terms: []string{"cat", "mat"}}, meta)

	cur := NewCursor(got)
	gotFloats, err := cur.Float32s(len(floats), "floats")
	require.NoError(t, err)
	gotInts, err := cur.Uint32s(len(ints), "ints")
	require.NoError(t, err)
	require.NoError(t, cur.Done())
	assert.Equal(t, floats, gotFloats)
	assert.Equal(t, ints, gotInts)
}

func TestReadMissingIsNotBuilt(t *testing.T) {
	var meta testMeta
	_, err := Read(filepath.Join(t.TempDir(), "semantic.psx"), KindSemantic, &meta)
	assert.ErrorIs(t, err, apperrors.ErrIndexNotBuilt)
}

func TestDecodeRejectsCorruption(t *testing.T) {
	raw, err := Encode(KindSemantic, testMeta{Rows: 1}, AppendFloat32s(nil, []float32{1, 2, 3}))
	require.NoError(t, err)

	var meta testMeta
	_, err = Decode(KindSemantic, raw, &meta)
	require.NoError(t, err)

	_, err = Decode(KindLexical, raw, &meta)
	assert.ErrorIs(t, err, apperrors.ErrIndexCorrupt)

	flipped := append([]byte(nil), raw...)
	flipped[len(flipped)-1] ^= 0xff
	_, err = Decode(KindSemantic, flipped, &meta)
	assert.ErrorIs(t, err, apperrors.ErrIndexCorrupt)

	badMagic := append([]byte(nil), raw...)
	badMagic[0] = 0
	_, err = Decode(KindSemantic, badMagic, &meta)
	assert.ErrorIs(t, err, apperrors.ErrIndexCorrupt)

	_, err = Decode(KindSemantic, raw[:10], &meta)
	assert.ErrorIs(t, err, apperrors.ErrIndexCorrupt)
}

func TestTxAbortLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "corpus.psx")
	b := filepath.Join(dir, "lexical.psx")

	var tx Tx
	require.NoError(t, tx.Put(a, KindCorpus, testMeta{}, nil))
	require.NoError(t, tx.Put(b, KindLexical, testMeta{}, nil))
	tx.Abort()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTxCommitReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.psx")
	require.NoError(t, Write(path, KindCorpus, testMeta{Rows: 1}, nil))

	var tx Tx
	require.NoError(t, tx.Put(path, KindCorpus, testMeta{Rows: 2}, nil))

	var meta testMeta
	_, err := Read(path, KindCorpus, &meta)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Rows, "staged file must not be visible before commit")

	require.NoError(t, tx.Commit())
	_, err = Read(path, KindCorpus, &meta)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Rows)
}

func TestCursorShortData(t *testing.T) {
	cur := NewCursor([]byte{1, 2, 3})
	_, err := cur.Float32s(1, "values")
	assert.Error(t, err)

	cur = NewCursor(AppendUint32s(nil, []uint32{1, 2}))
	_, err = cur.Uint32s(1, "values")
	require.NoError(t, err)
	assert.Error(t, cur.Done())
}

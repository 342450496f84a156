package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	reloads int
	err     error
}

func (f *fakeIndex) Reload() (*searcher.Snapshot, error) {
	f.reloads++
	if f.err != nil {
		return nil, f.err
	}
	return &searcher.Snapshot{Generation: uint64(f.reloads)}, nil
}

type fakeCache struct{ invalidations int }

func (f *fakeCache) Invalidate(context.Context) error {
	f.invalidations++
	return nil
}

func event(t *testing.T, dataDir string) []byte {
	t.Helper()
	b, err := json.Marshal(indexer.IndexComplete{BuildID: "b1", DataDir: dataDir, Pages: 3})
	require.NoError(t, err)
	return b
}

func TestHandleIndexComplete(t *testing.T) {
	idx, c := &fakeIndex{}, &fakeCache{}
	handle := HandleIndexComplete(idx, c, "models")

	require.NoError(t, handle(context.Background(), nil, event(t, "models")))
	assert.Equal(t, 1, idx.reloads)
	assert.Equal(t, 1, c.invalidations)

	require.NoError(t, handle(context.Background(), nil, event(t, "other")))
	assert.Equal(t, 1, idx.reloads, "events for another data directory are ignored")

	require.NoError(t, handle(context.Background(), nil, []byte("garbage")))
	assert.Equal(t, 1, idx.reloads)
}

func TestHandleIndexCompleteReloadFailure(t *testing.T) {
	idx, c := &fakeIndex{err: errors.New("corrupt")}, &fakeCache{}
	err := HandleIndexComplete(idx, c, "")(context.Background(), nil, event(t, "models"))
	require.Error(t, err)
	assert.Zero(t, c.invalidations)
}

func TestHandleIndexCompleteWithoutCache(t *testing.T) {
	idx := &fakeIndex{}
	require.NoError(t, HandleIndexComplete(idx, nil, "")(context.Background(), nil, event(t, "models")))
	assert.Equal(t, 1, idx.reloads)
}

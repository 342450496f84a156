package encoder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of query vectors kept by Cached. At 384
// float32 components this is roughly 1.5MB.
const DefaultCacheSize = 1000

// Cached memoizes vectors per text in an LRU cache. It is meant for the query
// path, where the same short strings repeat; index builds should use the
// underlying encoder directly.
type Cached struct {
	inner Encoder
	cache *lru.Cache[string, []float32]
}

func NewCached(inner Encoder, size int) *Cached {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, []float32](size)
	return &Cached{inner: inner, cache: cache}
}

func (c *Cached) key(text string) string {
	sum := sha256.Sum256([]byte(c.inner.Name() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Encode serves cached vectors and sends only the misses to the wrapped
// encoder, in a single batch. Returned slices are shared with the cache and
// must not be modified.
func (c *Cached) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		if v, ok := c.cache.Get(c.key(text)); ok {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	if len(missTexts) == 0 {
		return out, nil
	}
	vecs, err := c.inner.Encode(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if err := checkBatch(c.inner.Name(), missTexts, vecs, c.inner.Dim()); err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		c.cache.Add(c.key(texts[i]), vecs[j])
	}
	return out, nil
}

func (c *Cached) Dim() int {
	return c.inner.Dim()
}

func (c *Cached) Name() string {
	return c.inner.Name()
}

// Len returns the number of cached vectors.
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Purge drops every cached vector.
func (c *Cached) Purge() {
	c.cache.Purge()
}

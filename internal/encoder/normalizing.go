package encoder

import (
	"context"
	"log/slog"
)

// Normalizing wraps an encoder and rescales every vector it returns to unit
// length, validating the batch shape on the way.
type Normalizing struct {
	inner  Encoder
	logger *slog.Logger
}

func NewNormalizing(inner Encoder) *Normalizing {
	if n, ok := inner.(*Normalizing); ok {
		return n
	}
	return &Normalizing{
		inner:  inner,
		logger: slog.Default().With("component", "encoder", "encoder", inner.Name()),
	}
}

func (n *Normalizing) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := n.inner.Encode(ctx, texts)
	if err != nil {
		return nil, err
	}
	if err := checkBatch(n.inner.Name(), texts, vecs, n.inner.Dim()); err != nil {
		return nil, err
	}
	for i, v := range vecs {
		if Normalize(v) == 0 {
			n.logger.Warn("encoder returned a zero vector", "index", i, "text_len", len(texts[i]))
		}
	}
	return vecs, nil
}

func (n *Normalizing) Dim() int {
	return n.inner.Dim()
}

func (n *Normalizing) Name() string {
	return n.inner.Name()
}

package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildrenJoinParentTrace(t *testing.T) {
	ctx, root := Start(context.Background(), "index_build", "build-1")
	_, lex := StartChild(ctx, "lexical")
	lex.SetAttr("vocabulary", 42)
	lex.End()
	_, sem := StartChild(ctx, "semantic")
	sem.End()
	root.End()

	require.Len(t, root.Children, 2)
	assert.Equal(t, "build-1", root.Children[0].TraceID)
	assert.Equal(t, 42, root.Children[0].Attrs["vocabulary"])
	assert.Same(t, root, FromContext(ctx))
}

func TestDetachedChild(t *testing.T) {
	_, s := StartChild(context.Background(), "orphan")
	assert.Empty(t, s.TraceID)
	assert.Nil(t, FromContext(context.Background()))
}

func TestLogWritesTree(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, root := Start(context.Background(), "search", "req-1")
	_, child := StartChild(ctx, "lexical")
	child.End()
	root.End()
	root.Log(logger)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "span=search")
	assert.Contains(t, lines[1], "span=lexical")
	assert.Contains(t, lines[1], "depth=1")
	assert.Contains(t, lines[1], "trace_id=req-1")
}

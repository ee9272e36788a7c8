package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"sync"
	"testing"

	"github.com/aretw0/landsketch/pkg/adapters/memory"
	"github.com/aretw0/landsketch/pkg/codec"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInspectSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	scoped := session.Scope(store, "abc")

	enc, err := codec.Encode(image.NewRGBA(image.Rect(0, 0, 40, 30)))
	require.NoError(t, err)
	require.NoError(t, scoped.Set(ctx, domain.KeyUserSketch, enc.DataURI))
	require.NoError(t, scoped.Set(ctx, domain.KeySearchResults, `[{"name":"Lake Como"}]`))
	require.NoError(t, scoped.Set(ctx, domain.KeyDebugInfo, `not json`))

	report, err := InspectSession(ctx, store, "abc")
	require.NoError(t, err)

	assert.Equal(t, "abc", report.ID)
	assert.Equal(t, []string{domain.KeyDebugInfo, domain.KeySearchResults, domain.KeyUserSketch}, report.Keys)
	require.NotNil(t, report.Sketch)
	assert.Equal(t, 40, report.Sketch.Width)
	assert.Equal(t, 30, report.Sketch.Height)
	assert.JSONEq(t, `[{"name":"Lake Como"}]`, string(report.SearchResults))
	assert.Equal(t, `"not json"`, string(report.DebugInfo))

	_, err = json.Marshal(report)
	assert.NoError(t, err)
}

func TestInspectSession_Missing(t *testing.T) {
	_, err := InspectSession(context.Background(), memory.NewStore(), "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestInspectSession_CorruptSketch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, session.Scope(store, "abc").Set(ctx, domain.KeyUserSketch, "data:image/png;base64,AAAA"))

	_, err := InspectSession(ctx, store, "abc")
	assert.ErrorContains(t, err, "corrupt")
}

func TestResolveSessionID(t *testing.T) {
	id, err := ResolveSessionID("")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	id, err = ResolveSessionID("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = ResolveSessionID("abc/def")
	assert.ErrorIs(t, err, domain.ErrInvalidSessionID)

	_, err = InspectSession(context.Background(), memory.NewStore(), "abc/def")
	assert.ErrorIs(t, err, domain.ErrInvalidSessionID)
}

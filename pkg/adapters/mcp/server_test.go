package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/pkg/codec"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...landsketch.Option) *Server {
	t.Helper()
	studio, err := landsketch.New(opts...)
	require.NoError(t, err)
	studio.Mount()
	t.Cleanup(studio.Unmount)
	return NewServer(studio)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestSelectBrush(t *testing.T) {
	s := newTestServer(t)
	size := 60

	res, err := s.handleSelectBrush(context.Background(), callRequest(nil), BrushArgs{Brush: "water", Size: &size})
	require.NoError(t, err)
	assert.Equal(t, domain.BrushWater, res.State.Brush)
	assert.Equal(t, 60, res.State.Size)

	_, err = s.handleSelectBrush(context.Background(), callRequest(nil), BrushArgs{Brush: "Lava"})
	assert.ErrorIs(t, err, domain.ErrUnknownBrush)

	tooBig := 500
	_, err = s.handleSelectBrush(context.Background(), callRequest(nil), BrushArgs{Brush: "Dirt", Size: &tooBig})
	assert.ErrorIs(t, err, domain.ErrInvalidSize)
}

func TestStroke_PaintsCanvas(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	// Arguments arrive as decoded JSON: numbers are float64, arrays are []any.
	args := map[string]any{
		"brush":  "Water",
		"size":   float64(20),
		"points": []any{[]any{float64(100), float64(100)}, []any{float64(200), float64(100)}},
	}
	res, err := s.handleStroke(ctx, callRequest(args), args)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Segments)

	img, err := s.studio.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, palette.MustLookup(domain.BrushWater).RGBA(), img.RGBAAt(150, 100))

	_, err = s.handleStroke(ctx, callRequest(nil), map[string]any{"points": []any{}, "colour": "red"})
	assert.Error(t, err, "unknown arguments are rejected")
}

func TestSubmit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"results":[{"name":"Lake Bled"}],"debug_info":{}}`)
		}))
		defer srv.Close()

		s := newTestServer(t, landsketch.WithEndpoint(srv.URL))
		res, err := s.handleSubmit(context.Background(), callRequest(nil))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		require.Len(t, res.Content, 1)

		text, ok := res.Content[0].(mcp.TextContent)
		require.True(t, ok)
		assert.JSONEq(t, `{"results":[{"name":"Lake Bled"}],"debug_info":{}}`, text.Text)
	})

	t.Run("Rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"detail":"Image too small"}`)
		}))
		defer srv.Close()

		s := newTestServer(t, landsketch.WithEndpoint(srv.URL))
		res, err := s.handleSubmit(context.Background(), callRequest(nil))
		require.NoError(t, err)
		assert.True(t, res.IsError)

		text, ok := res.Content[0].(mcp.TextContent)
		require.True(t, ok)
		assert.Equal(t, "Failed to submit: Image too small", text.Text)
	})
}

func TestExport(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()

	res, err := s.handleExport(context.Background(), callRequest(map[string]any{"dir": dir}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 2)

	img, ok := res.Content[1].(mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, codec.MediaType, img.MIMEType)

	blob, err := base64.StdEncoding.DecodeString(img.Data)
	require.NoError(t, err)
	decoded, err := codec.DecodePNG(blob)
	require.NoError(t, err)
	assert.Equal(t, 570, decoded.Bounds().Dx())

	onDisk, err := os.ReadFile(filepath.Join(dir, "painting.png"))
	require.NoError(t, err)
	assert.Equal(t, blob, onDisk)
}

func TestResources(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	s.mcpServer.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":0,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))

	read := func(uri string) string {
		msg := s.mcpServer.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"`+uri+`"}}`))
		raw, err := json.Marshal(msg)
		require.NoError(t, err)

		var resp struct {
			Result struct {
				Contents []struct {
					URI  string `json:"uri"`
					Text string `json:"text"`
				} `json:"contents"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(raw, &resp))
		require.Len(t, resp.Result.Contents, 1, string(raw))
		assert.Equal(t, uri, resp.Result.Contents[0].URI)
		return resp.Result.Contents[0].Text
	}

	var swatches []map[string]string
	require.NoError(t, json.Unmarshal([]byte(read(PaletteURI)), &swatches))
	assert.Len(t, swatches, len(palette.Kinds()))

	var coverage map[string]int
	require.NoError(t, json.Unmarshal([]byte(read(CoverageURI)), &coverage))
	assert.Equal(t, 570*570, coverage[string(domain.BrushSky)])
}

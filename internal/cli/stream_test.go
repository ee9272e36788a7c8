package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/aretw0/landsketch/pkg/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStream(t *testing.T, studio *landsketch.Studio, lines ...string) []StreamReply {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, RunStream(context.Background(), studio, strings.NewReader(strings.Join(lines, "\n")), &out))

	var replies []StreamReply
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var r StreamReply
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		replies = append(replies, r)
	}
	return replies
}

func TestRunStream_Painting(t *testing.T) {
	studio, err := landsketch.New()
	require.NoError(t, err)
	studio.Mount()

	replies := runStream(t, studio,
		`{"op":"brush","brush":"trees","size":30}`,
		`{"op":"pointer","type":"down","x":100,"y":100}`,
		`{"op":"pointer","type":"move","x":200,"y":100}`,
		``,
		`{"op":"pointer","type":"up"}`,
		`{"op":"state"}`,
	)

	require.Len(t, replies, 5, "blank lines are skipped")
	assert.Equal(t, domain.BrushTrees, replies[0].State.Brush)
	assert.Equal(t, 30, replies[0].State.Size)
	assert.Equal(t, 1, replies[2].Segments)
	for _, r := range replies {
		assert.Empty(t, r.Error)
	}

	img, err := studio.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, palette.MustLookup(domain.BrushTrees).RGBA(), img.RGBAAt(150, 100))
}

func TestRunStream_ErrorsDoNotStopTheStream(t *testing.T) {
	studio, err := landsketch.New()
	require.NoError(t, err)
	studio.Mount()

	replies := runStream(t, studio,
		`not json`,
		`{"op":"brush","brush":"Lava"}`,
		`{"op":"brush","size":500}`,
		`{"op":"pointer","type":"hover"}`,
		`{"op":"paint"}`,
		`{"op":"clear"}`,
	)

	require.Len(t, replies, 6)
	assert.Contains(t, replies[0].Error, "invalid command")
	assert.Contains(t, replies[1].Error, "unknown brush")
	assert.Contains(t, replies[2].Error, "invalid brush size")
	assert.Contains(t, replies[3].Error, "hover")
	assert.Contains(t, replies[4].Error, "paint")
	assert.Empty(t, replies[5].Error)
	assert.Equal(t, domain.DefaultBrush, replies[5].State.Brush)
}

func TestRunStream_SubmitAndExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[],"debug_info":{}}`)
	}))
	defer srv.Close()

	studio, err := landsketch.New(landsketch.WithEndpoint(srv.URL))
	require.NoError(t, err)
	studio.Mount()
	dir := t.TempDir()

	replies := runStream(t, studio,
		`{"op":"submit"}`,
		`{"op":"export","dir":"`+filepath.ToSlash(dir)+`"}`,
	)

	require.Len(t, replies, 2)
	require.NotNil(t, replies[0].Report)
	assert.Equal(t, submit.OutcomeSucceeded, replies[0].Report.Outcome)
	assert.Equal(t, domain.ViewResults, replies[0].State.View)
	assert.Equal(t, filepath.Join(dir, "painting.png"), replies[1].Path)
}

package export_test

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/aretw0/landsketch/pkg/codec"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/export"
	"github.com/aretw0/landsketch/pkg/painter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func painted(t *testing.T) *image.RGBA {
	t.Helper()
	e := painter.New(64, 64)
	e.Mount()
	require.NoError(t, e.SetBrush(domain.BrushTrees))
	require.NoError(t, e.SetSize(10))
	ctx := context.Background()
	e.Down(ctx, domain.Point{X: 5, Y: 5})
	e.Move(ctx, domain.Point{X: 50, Y: 40})
	e.Up(ctx)
	img, err := e.Snapshot()
	require.NoError(t, err)
	return img
}

func TestToDir(t *testing.T) {
	img := painted(t)
	dir := filepath.Join(t.TempDir(), "out")

	path, err := export.ToDir(dir, img)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "painting.png"), path)

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := codec.DecodePNG(blob)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, codec.ToRGBA(decoded).Pix, "export is lossless")

	// Overwrite keeps a single file.
	_, err = export.ToDir(dir, img)
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteTo(t *testing.T) {
	img := painted(t)
	var buf bytes.Buffer

	n, err := export.WriteTo(&buf, img)
	require.NoError(t, err)
	assert.Equal(t, buf.Len(), n)

	decoded, err := codec.DecodePNG(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, img.Pix, codec.ToRGBA(decoded).Pix)
}

func TestExport_EncodingFailure(t *testing.T) {
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))

	_, err := export.WriteTo(&bytes.Buffer{}, empty)
	assert.ErrorIs(t, err, domain.ErrEncoding)

	dir := t.TempDir()
	_, err = export.ToDir(dir, empty)
	assert.ErrorIs(t, err, domain.ErrEncoding)
	_, statErr := os.Stat(filepath.Join(dir, export.FileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestToDir_ReplaceKeepsFileVisible(t *testing.T) {
	dir := t.TempDir()
	first := painted(t)
	second := image.NewRGBA(image.Rect(0, 0, 8, 8))

	path, err := export.ToDir(dir, first)
	require.NoError(t, err)

	var missing atomic.Int32
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				missing.Add(1)
			}
		}
	}()

	for i := 0; i < 50; i++ {
		img := first
		if i%2 == 0 {
			img = second
		}
		_, err := export.ToDir(dir, img)
		require.NoError(t, err)
	}
	close(stop)
	<-done

	assert.Zero(t, missing.Load(), "painting.png vanished during a replace")

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := codec.DecodePNG(blob)
	require.NoError(t, err)
	assert.Equal(t, first.Bounds(), decoded.Bounds())
}

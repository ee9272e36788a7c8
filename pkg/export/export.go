// Package export saves the painting as a PNG on the local machine.
package export

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/landsketch/pkg/codec"
)

// FileName is the name of the exported file.
const FileName = "painting.png"

// WriteTo encodes img losslessly into w.
func WriteTo(w io.Writer, img image.Image) (int, error) {
	blob, err := codec.EncodePNG(img)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(blob)
	if err != nil {
		return n, fmt.Errorf("failed to write png: %w", err)
	}
	return n, nil
}

// ToDir writes img as painting.png into dir and returns the file path.
// The file is replaced atomically.
func ToDir(dir string, img image.Image) (string, error) {
	if dir == "" {
		dir = "."
	}
	blob, err := codec.EncodePNG(img)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure export directory: %w", err)
	}

	destPath := filepath.Join(dir, FileName)
	tmpFile, err := os.CreateTemp(dir, "tmp-painting-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(blob); err != nil {
		return "", fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return "", fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}
	return destPath, nil
}

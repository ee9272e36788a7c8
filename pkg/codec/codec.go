// Package codec serialises the logical raster into lossless PNG, both as raw
// bytes for network transport and as a data URI for session caching.
package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/aretw0/landsketch/pkg/domain"
	"golang.org/x/image/draw"
)

// MediaType is the MIME type of every encoded sketch.
const MediaType = "image/png"

const dataURIPrefix = "data:" + MediaType + ";base64,"

// Encoded holds both transport forms of one encoding pass.
type Encoded struct {
	Blob    []byte
	DataURI string
}

var encoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// EncodePNG losslessly encodes img.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty raster", domain.ErrEncoding)
	}
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	return buf.Bytes(), nil
}

// Encode produces the binary and data URI forms from a single encoding, so
// both decode to identical pixels.
func Encode(img image.Image) (*Encoded, error) {
	blob, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &Encoded{Blob: blob, DataURI: DataURI(blob)}, nil
}

// DataURI wraps PNG bytes as a base64 data URI.
func DataURI(blob []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(blob)
}

// DecodePNG decodes PNG bytes.
func DecodePNG(blob []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}
	return img, nil
}

// DecodeDataURI decodes an image/png base64 data URI.
func DecodeDataURI(uri string) (image.Image, error) {
	payload, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("not a %s base64 data uri", MediaType)
	}
	blob, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data uri: %w", err)
	}
	return DecodePNG(blob)
}

// Preview scales img down so its longer side is at most maxSide, using
// nearest-neighbour sampling so every pixel keeps an exact palette colour.
// Images already small enough are returned as an RGBA copy.
func Preview(img image.Image, maxSide int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide > 0 && (w > maxSide || h > maxSide) {
		if w >= h {
			h = max(1, h*maxSide/w)
			w = maxSide
		} else {
			w = max(1, w*maxSide/h)
			h = maxSide
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ToRGBA converts any decoded image to RGBA for pixel comparison.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

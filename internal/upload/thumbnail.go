// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package upload

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps the decoded size to prevent memory bombs.
	maxImagePixels = 100_000_000
)

// ThumbName derives the thumbnail filename for an original upload:
// "abc.jpg" → "abc_thumb.jpg". Thumbnails share the flat namespace.
func ThumbName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i] + "_thumb.jpg"
	}
	return name + "_thumb.jpg"
}

// GenerateThumbnail creates a JPEG thumbnail from an image, constrained
// to thumbMaxWidth while preserving aspect ratio. Returns nil bytes if
// the image is already small enough to serve as its own thumbnail.
func GenerateThumbnail(src io.ReadSeeker) ([]byte, error) {
	// Decode config first to check dimensions without a full decode.
	imgCfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", imgCfg.Width, imgCfg.Height, maxImagePixels)
	}

	if imgCfg.Width <= thumbMaxWidth {
		return nil, nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(thumbMaxWidth) / float64(bounds.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, thumbMaxWidth, int(float64(bounds.Dy())*ratio)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // item photos may arrive as PNG; stored copies are JPEG
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// Item photos are shelf-browsing thumbnails, not archival scans: uploads are
// normalized to JPEG and capped at MaxDimension on the long edge before they
// land in the items table.
const (
	MaxDimension = 1024
	JPEGQuality  = 85
)

// Prepare turns an uploaded item photo into its stored form. The format is
// sniffed from the actual bytes, since the multipart content type is
// client-controlled; JPEG and PNG are accepted and the result is always
// JPEG. Returns the encoded bytes and their MIME type.
func Prepare(r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("reading photo: %w", err)
	}

	switch detected := http.DetectContentType(data); detected {
	case "image/jpeg", "image/png":
	default:
		return nil, "", fmt.Errorf("unsupported photo format %s, want JPEG or PNG", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding photo: %w", err)
	}

	// Photos already within bounds pass through untouched; nothing is ever
	// upscaled.
	if b := img.Bounds(); b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		img = shrink(img)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, "", fmt.Errorf("encoding photo: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// shrink scales a photo so its long edge lands on MaxDimension, preserving
// aspect ratio. Callers guarantee the photo is actually oversized.
func shrink(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	newW, newH := MaxDimension, MaxDimension
	if w > h {
		newH = max(1, h*MaxDimension/w)
	} else {
		newW = max(1, w*MaxDimension/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

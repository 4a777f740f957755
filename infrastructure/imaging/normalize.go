// Package imaging normalizes raw photo bytes into the canonical transport
// form sent to the model-serving endpoint, and enumerates photo collections
// on disk.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	// Register decoders for the recognized photo formats.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxEdge is the maximum length of the longer image edge after
// normalization. Larger images are downscaled preserving aspect ratio.
const MaxEdge = 1024

// ErrUnreadableImage indicates the input bytes could not be decoded as any
// recognized image format.
var ErrUnreadableImage = errors.New("imaging: unreadable image")

// Normalize converts raw image bytes into the canonical transport form:
// decoded, converted to 8-bit RGBA, downscaled so the longer edge does not
// exceed MaxEdge, and re-encoded as PNG. Deterministic and side-effect free.
func Normalize(raw []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	img := scaleDown(src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imaging: encode %s as png: %w", format, err)
	}
	return buf.Bytes(), nil
}

// scaleDown returns the image resized so its longer edge is at most MaxEdge,
// converted to NRGBA. Images already within bounds are only converted.
func scaleDown(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	longer := w
	if h > w {
		longer = h
	}

	if longer > MaxEdge {
		scale := float64(MaxEdge) / float64(longer)
		w = int(float64(w)*scale + 0.5)
		h = int(float64(h)*scale + 0.5)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

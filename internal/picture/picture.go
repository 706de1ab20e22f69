package picture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// MaxDimension is the largest edge, in pixels, a stored contact picture may
// have. Larger images are scaled down preserving aspect ratio.
const MaxDimension = 300

// Process decodes raw image bytes (png, jpeg or gif), scales the image down so
// its largest edge is at most MaxDimension, and returns the result as
// base64-encoded PNG ready to store on a contact. Images already within bounds
// are still re-encoded to PNG so storage holds a single format.
func Process(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > MaxDimension || height > MaxDimension {
		img = scale(img, width, height)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode returns the raw PNG bytes of a stored picture. An empty stored value
// yields nil without error.
func Decode(stored string) ([]byte, error) {
	if stored == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored picture: %w", err)
	}
	return raw, nil
}

func scale(img image.Image, width, height int) image.Image {
	var dstW, dstH int
	if width >= height {
		dstW = MaxDimension
		dstH = height * MaxDimension / width
	} else {
		dstH = MaxDimension
		dstW = width * MaxDimension / height
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// Resized image dimensions in pixels.
const (
	SmallImageSize  = 100
	NormalImageSize = 450
	AvatarImageSize = 250
)

// ResizeImage scales src to exactly width x height and re-encodes it as
// JPEG. Catmull-Rom is used for quality; covers are square so aspect
// ratio is not preserved.
func ResizeImage(src []byte, width, height int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

package deck

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/promptdeck/promptdeck/internal/deck/pptx"
)

// Image defaults.
const (
	DefaultMaxImageDimension = 1600
	DefaultJPEGQuality       = 85
)

// fitImage decodes data, downscales it so neither side exceeds maxSize and
// re-encodes it as JPEG on a white background.
func fitImage(data []byte, maxSize, jpegQuality int) (*pptx.Picture, error) {
	srcImg, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := srcImg.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid image dimensions")
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxImageDimension
	}

	scale := float64(maxSize) / float64(max(width, height))
	if scale > 1 {
		scale = 1
	}
	newW := max(int(float64(width)*scale), 1)
	newH := max(int(float64(height)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), srcImg, bounds, draw.Over, nil)

	q := jpegQuality
	if q < 1 || q > 100 {
		q = DefaultJPEGQuality
	}
	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return &pptx.Picture{Data: out.Bytes(), Width: newW, Height: newH}, nil
}

package raster

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP backgrounds

	"github.com/matzehuels/slidetype/pkg/errors"
)

// Default canonical slide size.
const (
	DefaultWidth  = 1080
	DefaultHeight = 1350
)

// Decode decodes an encoded background image, applying EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeDecode, "background is empty")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode background")
	}
	return img, nil
}

// Open reads and decodes a background image file.
func Open(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "background %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read background %s", path)
	}
	return Decode(data)
}

// Normalize returns img scaled to cover w×h and center-cropped to exactly that
// size. Images already at the target size are returned unchanged.
func Normalize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "encode png")
	}
	return nil
}

// Solid returns a w×h image filled with c, used for tests and previews.
func Solid(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

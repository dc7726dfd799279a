package raster

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/slidetype/pkg/errors"
)

func testFace(t *testing.T, size float64) font.Face {
	t.Helper()
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		t.Fatal(err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { face.Close() })
	return face
}

func red(img image.Image, x, y int) uint8 {
	r, _, _, _ := img.At(x, y).RGBA()
	return uint8(r >> 8)
}

// leftmostDark returns the smallest x with a pixel whose red channel is below
// 129, or -1.
func leftmostDark(img image.Image) int {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if red(img, x, y) < 129 {
				return x
			}
		}
	}
	return -1
}

func countBelow(img image.Image, v uint8) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if red(img, x, y) < v {
				n++
			}
		}
	}
	return n
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, Solid(10, 8, color.NRGBA{200, 10, 10, 255})); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 8 {
		t.Errorf("bounds = %v", b)
	}
	if r := red(img, 3, 3); r != 200 {
		t.Errorf("red = %d, want 200", r)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not an image"),
		"cut png": {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			if !errors.Is(err, errors.ErrCodeDecode) {
				t.Errorf("err = %v, want DECODE_ERROR", err)
			}
		})
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestNormalize(t *testing.T) {
	src := Solid(500, 500, color.White)
	out := Normalize(src, DefaultWidth, DefaultHeight)
	if b := out.Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultHeight {
		t.Errorf("Normalize bounds = %v", b)
	}

	same := Solid(DefaultWidth, DefaultHeight, color.White)
	if Normalize(same, DefaultWidth, DefaultHeight) != image.Image(same) {
		t.Error("image already at size was copied")
	}
}

func TestDilate(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 11, 11))
	mask.SetAlpha(5, 5, color.Alpha{255})

	out := Dilate(mask, 2)
	tests := []struct {
		x, y int
		want uint8
	}{
		{5, 5, 255},
		{7, 5, 255},
		{5, 3, 255},
		{6, 6, 255},
		{8, 5, 0},
		{7, 7, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := out.AlphaAt(tt.x, tt.y).A; got != tt.want {
			t.Errorf("(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
	if mask.AlphaAt(7, 5).A != 0 {
		t.Error("Dilate modified its input")
	}
}

func TestDrawTextStroke(t *testing.T) {
	face := testFace(t, 48)
	runs := []Run{{X: 40, Y: 70, Text: "HI"}}
	bg := Solid(200, 100, color.White)

	plain := NewGG(bg)
	plain.DrawText(runs, face, Paint{Fill: color.Black})
	glyphLeft := leftmostDark(plain.Image())
	if glyphLeft < 0 {
		t.Fatal("black text left no dark pixels")
	}

	invisible := NewGG(bg)
	invisible.DrawText(runs, face, Paint{Fill: color.White})
	if leftmostDark(invisible.Image()) != -1 {
		t.Error("white text on white produced dark pixels")
	}

	stroked := NewGG(bg)
	stroked.DrawText(runs, face, Paint{
		Fill:   color.White,
		Stroke: &Stroke{Width: 3, Color: color.Black},
	})
	outline := leftmostDark(stroked.Image())
	if outline < 0 || outline > glyphLeft-3 {
		t.Errorf("outline starts at x=%d, want <= %d", outline, glyphLeft-3)
	}
}

func TestDrawTextBlurSpreads(t *testing.T) {
	face := testFace(t, 48)
	runs := []Run{{X: 40, Y: 70, Text: "HI"}}
	bg := Solid(200, 100, color.White)

	sharp := NewGG(bg)
	sharp.DrawText(runs, face, Paint{Fill: color.Black})
	soft := NewGG(bg)
	soft.DrawText(runs, face, Paint{Fill: color.Black, Blur: 2})

	if s, b := countBelow(sharp.Image(), 255), countBelow(soft.Image(), 255); b <= s {
		t.Errorf("blurred text touched %d pixels, sharp %d", b, s)
	}
}

func TestEncode(t *testing.T) {
	c := NewBlank(4, 3)
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

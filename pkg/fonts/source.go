package fonts

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// source opens faces of one parsed font file at arbitrary sizes.
// Implementations must be safe for concurrent use.
type source interface {
	face(size float64) (font.Face, error)
}

// truetypeSource serves TrueType-outline fonts through freetype.
type truetypeSource struct {
	f *truetype.Font
}

func (s truetypeSource) face(size float64) (font.Face, error) {
	return truetype.NewFace(s.f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// opentypeSource serves everything freetype cannot parse, CFF outlines included.
type opentypeSource struct {
	f *opentype.Font
}

func (s opentypeSource) face(size float64) (font.Face, error) {
	return opentype.NewFace(s.f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// basicSource is the last-resort bitmap face. It has a single 7×13 size, so
// it ignores the requested size.
type basicSource struct{}

func (basicSource) face(float64) (font.Face, error) {
	return basicfont.Face7x13, nil
}

// parseSource parses font file data, preferring freetype for TrueType outlines.
// Font collections (.ttc, .otc) yield their first font.
func parseSource(data []byte) (source, error) {
	if f, err := truetype.Parse(data); err == nil {
		return truetypeSource{f: f}, nil
	}
	if f, err := opentype.Parse(data); err == nil {
		return opentypeSource{f: f}, nil
	}
	f, err := parseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return opentypeSource{f: f}, nil
}

func parseCollection(data []byte) (*opentype.Font, error) {
	c, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	if c.NumFonts() == 0 {
		return nil, fmt.Errorf("empty font collection")
	}
	return c.Font(0)
}

// Package fonts resolves (family, weight, size) requests to measurable,
// drawable font faces.
//
// # Fallback chain
//
// [Provider.Resolve] walks a fixed chain and stops at the first success:
//
//  1. a registered family (fonts added with [Provider.Register] or
//     [Provider.LoadDir], plus the embedded Go family), nearest weight first;
//     then the requested family installed on the system
//  2. a platform fallback font located with go-findfont
//  3. the embedded Go family (goregular, gomedium, gobold) at the nearest weight
//  4. the fixed-size basicfont bitmap face
//
// Only when every tier fails does Resolve return a FONT_UNAVAILABLE error.
//
// # Caching
//
// Resolved faces are kept in a [Cache] keyed by the requested (family,
// weight, size). A [Face] is immutable once created and safe to share between
// goroutines. The golang.org/x/image font.Face values it produces are not, so
// each caller opens its own with [Face.Open] or [Face.Measurer].
package fonts

import (
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Origin records which tier of the fallback chain produced a face.
type Origin string

// Fallback tiers, in resolution order.
const (
	OriginRegistered Origin = "registered"
	OriginSystem     Origin = "system"
	OriginBuiltin    Origin = "builtin"
	OriginBasic      Origin = "basic"
)

// Face is an immutable handle to one font at one pixel size.
type Face struct {
	Family string // family that actually resolved
	Weight int    // weight that actually resolved
	Size   int    // pixel size
	Origin Origin

	src     source
	ascent  float64
	descent float64
}

func newFace(family string, weight, size int, origin Origin, src source) (*Face, error) {
	ff, err := src.face(float64(size))
	if err != nil {
		return nil, err
	}
	defer ff.Close()

	m := ff.Metrics()
	return &Face{
		Family:  family,
		Weight:  weight,
		Size:    size,
		Origin:  origin,
		src:     src,
		ascent:  toFloat(m.Ascent),
		descent: toFloat(m.Descent),
	}, nil
}

// Open returns a new font.Face for this handle. The returned face is owned by
// the caller and must not be shared between goroutines.
func (f *Face) Open() (font.Face, error) {
	return f.src.face(float64(f.Size))
}

// Ascent returns the distance from the baseline to the top of the line, in pixels.
func (f *Face) Ascent() float64 { return f.ascent }

// Descent returns the distance from the baseline to the bottom of the line, in pixels.
func (f *Face) Descent() float64 { return f.descent }

// Measurer opens a face and returns a width measurer bound to it.
func (f *Face) Measurer() (*Measurer, error) {
	ff, err := f.Open()
	if err != nil {
		return nil, err
	}
	return &Measurer{face: ff}, nil
}

// Measurer measures string advances with one open face.
// It is not safe for concurrent use.
type Measurer struct {
	face font.Face
}

// Measure returns the advance width of text in pixels.
func (m *Measurer) Measure(text string) float64 {
	return toFloat(font.MeasureString(m.face, text))
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Package advisor proposes a legible default style for a background.
//
// The heuristic samples two regions where slide text usually sits, the upper
// and lower middle of the image, and picks dark text with a light outline on
// bright backgrounds and light text with a dark outline otherwise. The result
// depends only on the pixels, so the same image always yields the same style.
package advisor

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/slidetype/pkg/style"
)

// Threshold is the mean luma above which a background counts as bright.
const Threshold = 128

// Suggested sizes.
const (
	TitleSize = 64
	BodySize  = 40
)

// Region is one sampled area of the background.
type Region struct {
	Name    string
	Rect    image.Rectangle
	R, G, B float64 // mean channel values
	Luma    float64
}

// Report is the brightness analysis of a background.
type Report struct {
	Regions []Region
	Luma    float64 // mean of the region lumas
	Bright  bool
}

// Luma returns the Rec. 601 luma of an RGB triple.
func Luma(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// Regions returns the sampled rectangles for an image with bounds b: the
// middle two thirds horizontally, split at the vertical center into an upper
// band from H/6 and a lower band down to 5H/6.
func Regions(b image.Rectangle) (upper, lower image.Rectangle) {
	w, h := b.Dx(), b.Dy()
	x0, x1 := b.Min.X+w/6, b.Min.X+5*w/6
	upper = image.Rect(x0, b.Min.Y+h/6, x1, b.Min.Y+h/2)
	lower = image.Rect(x0, b.Min.Y+h/2, x1, b.Min.Y+5*h/6)
	return upper, lower
}

// Analyze measures the brightness of img's text regions.
func Analyze(img image.Image) Report {
	upper, lower := Regions(img.Bounds())
	rep := Report{Regions: []Region{
		sample("upper-middle", img, upper),
		sample("lower-middle", img, lower),
	}}
	for _, r := range rep.Regions {
		rep.Luma += r.Luma
	}
	rep.Luma /= float64(len(rep.Regions))
	rep.Bright = rep.Luma > Threshold
	return rep
}

func sample(name string, img image.Image, rect image.Rectangle) Region {
	reg := Region{Name: name, Rect: rect}
	if rect.Empty() {
		return reg
	}
	// Crop returns a non-premultiplied copy anchored at the origin.
	px := imaging.Crop(img, rect)
	var r, g, b float64
	n := 0
	for i := 0; i+3 < len(px.Pix); i += 4 {
		r += float64(px.Pix[i])
		g += float64(px.Pix[i+1])
		b += float64(px.Pix[i+2])
		n++
	}
	if n == 0 {
		return reg
	}
	reg.R, reg.G, reg.B = r/float64(n), g/float64(n), b/float64(n)
	reg.Luma = Luma(reg.R, reg.G, reg.B)
	return reg
}

// Suggest returns a complete style for text over img. Title and body are only
// checked for presence: without a title the body takes over the title's area.
func Suggest(img image.Image, title, body string) style.TextStyle {
	return FromReport(Analyze(img), title, body)
}

// FromReport builds the suggested style for an existing analysis.
func FromReport(rep Report, title, body string) style.TextStyle {
	s := style.Default()
	s.FontFamily = style.DefaultFamily
	s.FontWeight = 700
	s.FontSizePx = TitleSize
	s.BodySizePx = BodySize
	s.Alignment = style.AlignCenter
	s.LineSpacing = 1.3
	s.MaxLines = 0
	s.Shadow.Enabled = false

	s.Stroke.Enabled = true
	s.Stroke.WidthPx = 2
	if rep.Bright {
		s.TextColor = "#000000"
		s.Stroke.Color = "#FFFFFF"
	} else {
		s.TextColor = "#FFFFFF"
		s.Stroke.Color = "#000000"
	}

	if IsBlank(title) && !IsBlank(body) {
		s.BodyBox = style.BoxStyle{XPct: 0.08, YPct: 0.10, WPct: 0.84, HPct: 0.80, PaddingPct: 0.04}
	}
	return s
}

// IsBlank reports whether text counts as absent. Suggestions only depend on
// which of title and body are present, by this definition.
func IsBlank(s string) bool { return strings.TrimSpace(s) == "" }

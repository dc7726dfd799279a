package typeset

import (
	"image"
	"math"

	"github.com/matzehuels/slidetype/pkg/style"
)

// Box is a style box resolved to canvas pixels.
type Box struct {
	Outer image.Rectangle // the box itself
	PadX  int             // horizontal padding on each side
	PadY  int             // vertical padding on each side
}

// ResolveBox converts fractional box geometry into pixels on a w×h canvas.
// Every edge is rounded to the nearest pixel; padding is a fraction of the
// box's own width (horizontal) and height (vertical).
func ResolveBox(b style.BoxStyle, w, h int) Box {
	x0 := round(b.XPct * float64(w))
	y0 := round(b.YPct * float64(h))
	bw := round(b.WPct * float64(w))
	bh := round(b.HPct * float64(h))
	return Box{
		Outer: image.Rect(x0, y0, x0+bw, y0+bh),
		PadX:  round(b.PaddingPct * float64(bw)),
		PadY:  round(b.PaddingPct * float64(bh)),
	}
}

// Inner returns the padded text area. It may be empty.
func (b Box) Inner() image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(b.Outer.Min.X+b.PadX, b.Outer.Min.Y+b.PadY),
		Max: image.Pt(b.Outer.Max.X-b.PadX, b.Outer.Max.Y-b.PadY),
	}
}

// Usable reports whether the padded area has positive width and height.
// Text blocks whose box is not usable are skipped.
func (b Box) Usable() bool {
	in := b.Inner()
	return in.Dx() > 0 && in.Dy() > 0
}

func round(v float64) int { return int(math.Round(v)) }

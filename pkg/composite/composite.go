// Package composite positions wrapped lines inside their box and draws them
// onto a canvas with shadow, outline and fill.
//
// Placement is pure geometry and works with any [typeset.Measurer]; drawing
// goes through the [raster.Canvas] capability so it does not depend on a
// particular rasterizer.
package composite

import (
	"image"
	"image/color"

	"golang.org/x/image/font"

	"github.com/matzehuels/slidetype/pkg/colors"
	"github.com/matzehuels/slidetype/pkg/raster"
	"github.com/matzehuels/slidetype/pkg/style"
	"github.com/matzehuels/slidetype/pkg/typeset"
)

// Metrics are the vertical metrics of a face, in pixels.
type Metrics interface {
	Ascent() float64
	Descent() float64
}

// Placement is one line positioned on the canvas.
type Placement struct {
	Text     string
	X        float64 // left end of the baseline
	Baseline float64
	Width    float64
}

// Mid returns the horizontal midpoint of the line.
func (p Placement) Mid() float64 { return p.X + p.Width/2 }

// Place positions lines inside area. The block of len(lines) slots of
// lineHeight each is centered vertically; each line's glyph extent is
// centered in its slot. Horizontally lines are aligned to the area's edges or
// centered on it.
func Place(lines []string, m typeset.Measurer, met Metrics, area image.Rectangle, align style.Alignment, lineHeight float64) []Placement {
	if len(lines) == 0 {
		return nil
	}
	left, right := float64(area.Min.X), float64(area.Max.X)
	blockH := lineHeight * float64(len(lines))
	top := float64(area.Min.Y) + (float64(area.Dy())-blockH)/2
	glyphH := met.Ascent() + met.Descent()

	out := make([]Placement, len(lines))
	for i, line := range lines {
		w := m.Measure(line)
		var x float64
		switch align {
		case style.AlignLeft:
			x = left
		case style.AlignRight:
			x = right - w
		default:
			x = (left+right)/2 - w/2
		}
		slot := top + float64(i)*lineHeight
		out[i] = Placement{
			Text:     line,
			X:        x,
			Baseline: slot + (lineHeight-glyphH)/2 + met.Ascent(),
			Width:    w,
		}
	}
	return out
}

// Shadow is a resolved drop shadow.
type Shadow struct {
	DX, DY int
	Blur   int // blur radius in pixels; 0 draws a flat offset copy
	Color  color.NRGBA
}

// Effects are the resolved colors and decorations for one text block.
type Effects struct {
	Fill   color.NRGBA
	Stroke *raster.Stroke
	Shadow *Shadow
}

// EffectsFor resolves the colors of s. Malformed colors fall back to white.
func EffectsFor(s style.TextStyle) Effects {
	e := Effects{Fill: colors.Parse(s.TextColor)}
	if s.Stroke.Enabled && s.Stroke.WidthPx > 0 {
		e.Stroke = &raster.Stroke{Width: s.Stroke.WidthPx, Color: colors.Parse(s.Stroke.Color)}
	}
	if s.Shadow.Enabled {
		e.Shadow = &Shadow{
			DX:    s.Shadow.Dx,
			DY:    s.Shadow.Dy,
			Blur:  s.Shadow.Blur,
			Color: colors.Parse(s.Shadow.Color),
		}
	}
	return e
}

// Draw renders placed lines back to front: the shadow of the whole block,
// then outline and fill. The shadow follows the outlined glyph shape and is
// blurred with a Gaussian of sigma Blur/2.
func Draw(c raster.Canvas, lines []Placement, face font.Face, e Effects) {
	if len(lines) == 0 {
		return
	}
	if sh := e.Shadow; sh != nil {
		runs := make([]raster.Run, len(lines))
		for i, l := range lines {
			runs[i] = raster.Run{X: l.X + float64(sh.DX), Y: l.Baseline + float64(sh.DY), Text: l.Text}
		}
		p := raster.Paint{Fill: sh.Color, Blur: float64(sh.Blur) / 2}
		if e.Stroke != nil {
			p.Stroke = &raster.Stroke{Width: e.Stroke.Width, Color: sh.Color}
		}
		c.DrawText(runs, face, p)
	}

	runs := make([]raster.Run, len(lines))
	for i, l := range lines {
		runs[i] = raster.Run{X: l.X, Y: l.Baseline, Text: l.Text}
	}
	c.DrawText(runs, face, raster.Paint{Fill: e.Fill, Stroke: e.Stroke})
}

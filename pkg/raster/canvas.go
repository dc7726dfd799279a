package raster

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/slidetype/pkg/errors"
)

// Run is one line of text positioned by the left end of its baseline.
type Run struct {
	X, Y float64
	Text string
}

// Stroke is an outline drawn under the glyph fill.
type Stroke struct {
	Width int
	Color color.Color
}

// Paint describes how text runs are drawn.
type Paint struct {
	Fill   color.Color
	Stroke *Stroke // nil for no outline
	Blur   float64 // Gaussian sigma applied to the whole layer; 0 for none
}

// Canvas is a drawable surface.
type Canvas interface {
	Bounds() image.Rectangle
	Measure(text string, face font.Face) float64
	DrawText(runs []Run, face font.Face, p Paint)
	DrawImage(img image.Image, at image.Point)
	Image() image.Image
	Encode(w io.Writer) error
}

// GG is a [Canvas] backed by a gg drawing context.
type GG struct {
	dc *gg.Context
}

var _ Canvas = (*GG)(nil)

// NewGG creates a canvas holding a copy of bg.
func NewGG(bg image.Image) *GG {
	return &GG{dc: gg.NewContextForImage(bg)}
}

// NewBlank creates a transparent canvas of the given size.
func NewBlank(w, h int) *GG {
	return &GG{dc: gg.NewContext(w, h)}
}

func (c *GG) Bounds() image.Rectangle { return c.dc.Image().Bounds() }

func (c *GG) Image() image.Image { return c.dc.Image() }

func (c *GG) Measure(text string, face font.Face) float64 {
	return float64(font.MeasureString(face, text)) / 64
}

func (c *GG) DrawImage(img image.Image, at image.Point) {
	c.dc.DrawImage(img, at.X, at.Y)
}

// Encode writes the canvas as PNG.
func (c *GG) Encode(w io.Writer) error {
	if err := c.dc.EncodePNG(w); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "encode png")
	}
	return nil
}

// DrawText draws runs with face. Plain fills go straight through gg; outlines
// and blur are rendered from a glyph coverage mask.
func (c *GG) DrawText(runs []Run, face font.Face, p Paint) {
	if len(runs) == 0 {
		return
	}
	if p.Fill == nil {
		p.Fill = color.Black
	}
	if p.Stroke != nil && p.Stroke.Width <= 0 {
		p.Stroke = nil
	}
	if p.Stroke == nil && p.Blur <= 0 {
		c.dc.SetFontFace(face)
		c.dc.SetColor(p.Fill)
		for _, r := range runs {
			c.dc.DrawString(r.Text, r.X, r.Y)
		}
		return
	}

	margin := int(math.Ceil(3 * p.Blur))
	if p.Stroke != nil {
		margin += p.Stroke.Width
	}
	mask := glyphMask(runs, face, margin, c.Bounds())
	if mask == nil {
		return
	}
	rect := mask.Bounds()
	dst := c.dc.Image().(*image.RGBA)

	if p.Blur <= 0 {
		paint(dst, mask, p)
		return
	}
	layer := image.NewNRGBA(rect)
	paint(layer, mask, p)
	blurred := imaging.Blur(layer, p.Blur)
	draw.Draw(dst, rect, blurred, image.Point{}, draw.Over)
}

// paint composites the outline, then the fill, through mask onto dst.
func paint(dst draw.Image, mask *image.Alpha, p Paint) {
	rect := mask.Bounds()
	if p.Stroke != nil {
		outline := Dilate(mask, p.Stroke.Width)
		draw.DrawMask(dst, rect, image.NewUniform(p.Stroke.Color), image.Point{}, outline, rect.Min, draw.Over)
		if sameColor(p.Stroke.Color, p.Fill) {
			return
		}
	}
	draw.DrawMask(dst, rect, image.NewUniform(p.Fill), image.Point{}, mask, rect.Min, draw.Over)
}

// glyphMask renders the coverage of runs into an alpha mask covering their
// bounds grown by margin and clipped to clip. It returns nil when nothing
// would be visible.
func glyphMask(runs []Run, face font.Face, margin int, clip image.Rectangle) *image.Alpha {
	var rect image.Rectangle
	for _, r := range runs {
		dot := fixp(r.X, r.Y)
		b, _ := font.BoundString(face, r.Text)
		rb := image.Rect(
			(b.Min.X + dot.X).Floor(), (b.Min.Y + dot.Y).Floor(),
			(b.Max.X + dot.X).Ceil(), (b.Max.Y + dot.Y).Ceil(),
		)
		rect = rect.Union(rb)
	}
	rect = rect.Inset(-margin).Intersect(clip)
	if rect.Empty() {
		return nil
	}

	mask := image.NewAlpha(rect)
	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face}
	for _, r := range runs {
		d.Dot = fixp(r.X, r.Y)
		d.DrawString(r.Text)
	}
	return mask
}

// Dilate grows the coverage in mask by a disk of radius r. Each output pixel
// takes the maximum coverage found within distance r.
func Dilate(mask *image.Alpha, r int) *image.Alpha {
	rect := mask.Bounds()
	out := image.NewAlpha(rect)
	if r <= 0 {
		copy(out.Pix, mask.Pix)
		return out
	}

	// half-width of the disk for each vertical offset
	spans := make([]int, 2*r+1)
	for dy := -r; dy <= r; dy++ {
		spans[dy+r] = int(math.Sqrt(float64(r*r - dy*dy)))
	}

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for dy := -r; dy <= r; dy++ {
			sy := y + dy
			if sy < rect.Min.Y || sy >= rect.Max.Y {
				continue
			}
			w := spans[dy+r]
			src := mask.Pix[mask.PixOffset(rect.Min.X, sy):]
			dst := out.Pix[out.PixOffset(rect.Min.X, y):]
			for sx := 0; sx < rect.Dx(); sx++ {
				a := src[sx]
				if a == 0 {
					continue
				}
				lo, hi := max(sx-w, 0), min(sx+w, rect.Dx()-1)
				for x := lo; x <= hi; x++ {
					if dst[x] < a {
						dst[x] = a
					}
				}
			}
		}
	}
	return out
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func fixp(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6(math.Round(x * 64)),
		Y: fixed.Int26_6(math.Round(y * 64)),
	}
}

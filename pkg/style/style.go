// Package style defines the declarative text style applied to a slide.
//
// A [TextStyle] is a value object: it is decoded from JSON (or built in code),
// validated once with [TextStyle.Validate], and then read by the layout solver
// and compositor without further checks. Partial updates are expressed with a
// [Patch] and applied with [Merge].
//
// Box geometry is expressed as fractions of the canonical canvas:
//
//	title_box: {x_pct: 0.1, y_pct: 0.2, w_pct: 0.8, h_pct: 0.3, padding_pct: 0.05}
//
// resolves, on a 1080×1350 canvas, to a 864×405 px box at (108, 270) with
// 43 px of horizontal and 20 px of vertical padding.
package style

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/slidetype/pkg/errors"
)

// Alignment is the horizontal alignment of each wrapped line inside its box.
type Alignment string

// Supported alignments.
const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Bounds of the numeric style fields.
const (
	MinFontWeight  = 100
	MaxFontWeight  = 900
	MinFontSize    = 12
	MaxFontSize    = 200
	MinLineSpacing = 0.5
	MaxLineSpacing = 3.0
	MaxStrokeWidth = 20
	MaxShadowShift = 20
	MaxShadowBlur  = 20
	MaxPadding     = 0.5

	// BodyWeightDrop is how much lighter the body is drawn than the title.
	BodyWeightDrop = 200
	// MinBodyWeight is the lightest weight the body is ever drawn with.
	MinBodyWeight = 400
)

// BoxStyle is a sub-rectangle of the canvas, in fractions of its size.
// Padding is applied per axis as a fraction of the box's own width and height.
type BoxStyle struct {
	XPct       float64 `json:"x_pct" toml:"x_pct"`
	YPct       float64 `json:"y_pct" toml:"y_pct"`
	WPct       float64 `json:"w_pct" toml:"w_pct"`
	HPct       float64 `json:"h_pct" toml:"h_pct"`
	PaddingPct float64 `json:"padding_pct" toml:"padding_pct"`
}

// StrokeStyle is the glyph outline drawn under the fill.
type StrokeStyle struct {
	Enabled bool   `json:"enabled" toml:"enabled"`
	WidthPx int    `json:"width_px" toml:"width_px"`
	Color   string `json:"color" toml:"color"`
}

// ShadowStyle is the offset glyph copy drawn beneath the fill.
type ShadowStyle struct {
	Enabled bool   `json:"enabled" toml:"enabled"`
	Dx      int    `json:"dx" toml:"dx"`
	Dy      int    `json:"dy" toml:"dy"`
	Blur    int    `json:"blur" toml:"blur"`
	Color   string `json:"color" toml:"color"`
}

// TextStyle is the complete style of one slide.
//
// FontSizePx is the upper bound for the title's autofit search. BodySizePx is
// the upper bound for the body; zero derives it from FontSizePx.
type TextStyle struct {
	FontFamily  string      `json:"font_family" toml:"font_family"`
	FontWeight  int         `json:"font_weight" toml:"font_weight"`
	FontSizePx  int         `json:"font_size_px" toml:"font_size_px"`
	BodySizePx  int         `json:"body_size_px,omitempty" toml:"body_size_px"`
	TextColor   string      `json:"text_color" toml:"text_color"`
	Alignment   Alignment   `json:"alignment" toml:"alignment"`
	LineSpacing float64     `json:"line_spacing" toml:"line_spacing"`
	MaxLines    int         `json:"max_lines" toml:"max_lines"`
	TitleBox    BoxStyle    `json:"title_box" toml:"title_box"`
	BodyBox     BoxStyle    `json:"body_box" toml:"body_box"`
	Stroke      StrokeStyle `json:"stroke" toml:"stroke"`
	Shadow      ShadowStyle `json:"shadow" toml:"shadow"`
}

// DefaultFamily is the family requested when a style does not name one.
// The font provider falls back to a metric-compatible face when it is not installed.
const DefaultFamily = "Inter"

// Default returns the style used when nothing else is specified.
func Default() TextStyle {
	return TextStyle{
		FontFamily:  DefaultFamily,
		FontWeight:  700,
		FontSizePx:  64,
		TextColor:   "#FFFFFF",
		Alignment:   AlignCenter,
		LineSpacing: 1.3,
		TitleBox:    BoxStyle{XPct: 0.08, YPct: 0.10, WPct: 0.84, HPct: 0.35, PaddingPct: 0.04},
		BodyBox:     BoxStyle{XPct: 0.08, YPct: 0.50, WPct: 0.84, HPct: 0.40, PaddingPct: 0.04},
		Stroke:      StrokeStyle{WidthPx: 2, Color: "#000000"},
		Shadow:      ShadowStyle{Dx: 3, Dy: 3, Blur: 0, Color: "#00000080"},
	}
}

// Parse decodes a JSON style on top of [Default] and validates it.
// Fields missing from data keep their default values.
func Parse(data []byte) (TextStyle, error) {
	return Decode(Default(), data)
}

// Decode decodes a JSON style on top of base and validates it.
func Decode(base TextStyle, data []byte) (TextStyle, error) {
	s := base
	if err := json.Unmarshal(data, &s); err != nil {
		return TextStyle{}, errors.Wrap(errors.ErrCodeInvalidStyle, err, "decode style")
	}
	if err := s.Validate(); err != nil {
		return TextStyle{}, err
	}
	return s, nil
}

// TitleWeight returns the weight the title is drawn with.
func (s TextStyle) TitleWeight() int { return s.FontWeight }

// BodyWeight returns the weight the body is drawn with: 200 lighter than the
// title, but never lighter than 400.
func (s TextStyle) BodyWeight() int {
	return max(MinBodyWeight, s.FontWeight-BodyWeightDrop)
}

// BodyMaxSize returns the upper bound of the body's autofit search.
func (s TextStyle) BodyMaxSize() int {
	if s.BodySizePx > 0 {
		return s.BodySizePx
	}
	return max(MinFontSize, s.FontSizePx*5/8)
}

// Validate checks every field against its declared range. Colors are not
// validated: a malformed color renders as white instead of failing.
func (s TextStyle) Validate() error {
	var v validator
	if strings.TrimSpace(s.FontFamily) == "" {
		v.addf("font_family is required")
	}
	v.intRange("font_weight", s.FontWeight, MinFontWeight, MaxFontWeight)
	v.intRange("font_size_px", s.FontSizePx, MinFontSize, MaxFontSize)
	if s.BodySizePx != 0 {
		v.intRange("body_size_px", s.BodySizePx, MinFontSize, MaxFontSize)
	}
	switch s.Alignment {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		v.addf("alignment %q must be one of left, center, right", s.Alignment)
	}
	v.floatRange("line_spacing", s.LineSpacing, MinLineSpacing, MaxLineSpacing)
	if s.MaxLines < 0 {
		v.addf("max_lines %d must not be negative", s.MaxLines)
	}
	v.box("title_box", s.TitleBox)
	v.box("body_box", s.BodyBox)
	v.intRange("stroke.width_px", s.Stroke.WidthPx, 0, MaxStrokeWidth)
	v.intRange("shadow.dx", s.Shadow.Dx, -MaxShadowShift, MaxShadowShift)
	v.intRange("shadow.dy", s.Shadow.Dy, -MaxShadowShift, MaxShadowShift)
	v.intRange("shadow.blur", s.Shadow.Blur, 0, MaxShadowBlur)
	return v.err()
}

// validator accumulates range violations so a single error lists all of them.
type validator struct {
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) intRange(field string, value, lo, hi int) {
	if value < lo || value > hi {
		v.addf("%s %d out of range [%d, %d]", field, value, lo, hi)
	}
}

func (v *validator) floatRange(field string, value, lo, hi float64) {
	// NaN fails both comparisons, so test for the valid range instead.
	if !(value >= lo && value <= hi) {
		v.addf("%s %g out of range [%g, %g]", field, value, lo, hi)
	}
}

func (v *validator) box(field string, b BoxStyle) {
	v.floatRange(field+".x_pct", b.XPct, 0, 1)
	v.floatRange(field+".y_pct", b.YPct, 0, 1)
	v.floatRange(field+".w_pct", b.WPct, 0, 1)
	v.floatRange(field+".h_pct", b.HPct, 0, 1)
	v.floatRange(field+".padding_pct", b.PaddingPct, 0, MaxPadding)
	// A box is a sub-rectangle of the canvas.
	if b.XPct+b.WPct > 1+boxTolerance {
		v.addf("%s.x_pct + w_pct %g exceeds the canvas width", field, b.XPct+b.WPct)
	}
	if b.YPct+b.HPct > 1+boxTolerance {
		v.addf("%s.y_pct + h_pct %g exceeds the canvas height", field, b.YPct+b.HPct)
	}
}

// boxTolerance absorbs float rounding in sums like 0.1+0.9.
const boxTolerance = 1e-9

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %s", strings.Join(v.problems, "; "))
}

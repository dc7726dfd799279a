package style

// Patch is a partial [TextStyle]. Nil fields leave the base value untouched.
type Patch struct {
	FontFamily  *string      `json:"font_family,omitempty"`
	FontWeight  *int         `json:"font_weight,omitempty"`
	FontSizePx  *int         `json:"font_size_px,omitempty"`
	BodySizePx  *int         `json:"body_size_px,omitempty"`
	TextColor   *string      `json:"text_color,omitempty"`
	Alignment   *Alignment   `json:"alignment,omitempty"`
	LineSpacing *float64     `json:"line_spacing,omitempty"`
	MaxLines    *int         `json:"max_lines,omitempty"`
	TitleBox    *BoxPatch    `json:"title_box,omitempty"`
	BodyBox     *BoxPatch    `json:"body_box,omitempty"`
	Stroke      *StrokePatch `json:"stroke,omitempty"`
	Shadow      *ShadowPatch `json:"shadow,omitempty"`
}

// BoxPatch is a partial [BoxStyle].
type BoxPatch struct {
	XPct       *float64 `json:"x_pct,omitempty"`
	YPct       *float64 `json:"y_pct,omitempty"`
	WPct       *float64 `json:"w_pct,omitempty"`
	HPct       *float64 `json:"h_pct,omitempty"`
	PaddingPct *float64 `json:"padding_pct,omitempty"`
}

// StrokePatch is a partial [StrokeStyle].
type StrokePatch struct {
	Enabled *bool   `json:"enabled,omitempty"`
	WidthPx *int    `json:"width_px,omitempty"`
	Color   *string `json:"color,omitempty"`
}

// ShadowPatch is a partial [ShadowStyle].
type ShadowPatch struct {
	Enabled *bool   `json:"enabled,omitempty"`
	Dx      *int    `json:"dx,omitempty"`
	Dy      *int    `json:"dy,omitempty"`
	Blur    *int    `json:"blur,omitempty"`
	Color   *string `json:"color,omitempty"`
}

// Ptr returns a pointer to v, for building patches in code.
func Ptr[T any](v T) *T { return &v }

// Merge returns base with every non-nil field of p applied. The result is not
// validated; call [TextStyle.Validate] before rendering with it.
func Merge(base TextStyle, p Patch) TextStyle {
	out := base
	set(&out.FontFamily, p.FontFamily)
	set(&out.FontWeight, p.FontWeight)
	set(&out.FontSizePx, p.FontSizePx)
	set(&out.BodySizePx, p.BodySizePx)
	set(&out.TextColor, p.TextColor)
	set(&out.Alignment, p.Alignment)
	set(&out.LineSpacing, p.LineSpacing)
	set(&out.MaxLines, p.MaxLines)
	if p.TitleBox != nil {
		out.TitleBox = mergeBox(out.TitleBox, *p.TitleBox)
	}
	if p.BodyBox != nil {
		out.BodyBox = mergeBox(out.BodyBox, *p.BodyBox)
	}
	if p.Stroke != nil {
		set(&out.Stroke.Enabled, p.Stroke.Enabled)
		set(&out.Stroke.WidthPx, p.Stroke.WidthPx)
		set(&out.Stroke.Color, p.Stroke.Color)
	}
	if p.Shadow != nil {
		set(&out.Shadow.Enabled, p.Shadow.Enabled)
		set(&out.Shadow.Dx, p.Shadow.Dx)
		set(&out.Shadow.Dy, p.Shadow.Dy)
		set(&out.Shadow.Blur, p.Shadow.Blur)
		set(&out.Shadow.Color, p.Shadow.Color)
	}
	return out
}

func mergeBox(b BoxStyle, p BoxPatch) BoxStyle {
	set(&b.XPct, p.XPct)
	set(&b.YPct, p.YPct)
	set(&b.WPct, p.WPct)
	set(&b.HPct, p.HPct)
	set(&b.PaddingPct, p.PaddingPct)
	return b
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

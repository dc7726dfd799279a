// Package engine renders styled text onto slide backgrounds.
//
// An [Engine] ties the pieces together for one slide: it decodes and
// normalizes the background to the canonical size, then lays out the title
// and the body independently. Each block gets its own box, font weight and
// autofit search, and is composited with the style's shadow, outline and
// fill. The result is encoded as PNG.
//
// The title is drawn at the style's font weight and the body at a lighter
// weight (see [style.TextStyle.BodyWeight]). A block whose text is blank, or
// whose padded box has no area, is skipped and leaves the background as is.
//
// An Engine holds no per-request state and is safe for concurrent use. The
// only shared mutable state is the font provider's cache.
package engine

import (
	"bytes"
	"context"
	"image"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slidetype/pkg/advisor"
	"github.com/matzehuels/slidetype/pkg/colors"
	"github.com/matzehuels/slidetype/pkg/composite"
	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/fonts"
	"github.com/matzehuels/slidetype/pkg/observability"
	"github.com/matzehuels/slidetype/pkg/raster"
	"github.com/matzehuels/slidetype/pkg/style"
	"github.com/matzehuels/slidetype/pkg/typeset"
)

// Block names used in reports, logs and hooks.
const (
	BlockTitle = "title"
	BlockBody  = "body"
)

// Engine renders slides. Create one with [New].
type Engine struct {
	fonts  *fonts.Provider
	width  int
	height int
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCanvasSize sets the canonical slide size. Non-positive values are ignored.
func WithCanvasSize(w, h int) Option {
	return func(e *Engine) {
		if w > 0 && h > 0 {
			e.width, e.height = w, h
		}
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine drawing with fonts from p.
func New(p *fonts.Provider, opts ...Option) *Engine {
	e := &Engine{
		fonts:  p,
		width:  raster.DefaultWidth,
		height: raster.DefaultHeight,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Size returns the canonical slide size.
func (e *Engine) Size() (w, h int) { return e.width, e.height }

// FontFingerprint identifies the engine's font configuration for cache keys.
func (e *Engine) FontFingerprint() string { return e.fonts.Fingerprint() }

// Request is one slide to render. Image takes precedence over Background.
type Request struct {
	Background []byte      // encoded background image
	Image      image.Image // already decoded background
	Title      string
	Body       string
	Style      style.TextStyle
}

// BlockReport describes how one text block was laid out.
type BlockReport struct {
	Block   string
	Skipped bool
	Reason  string          // why the block was skipped
	Area    image.Rectangle // padded text area
	Family  string          // resolved family
	Weight  int             // resolved weight
	Origin  fonts.Origin
	Size    int
	Lines   []string
	Fits    bool
	Probes  int
}

// Report describes a rendered slide.
type Report struct {
	Width  int
	Height int
	Title  BlockReport
	Body   BlockReport
}

// Result is an encoded slide.
type Result struct {
	PNG    []byte
	Report Report
}

// Render renders req and encodes it as PNG.
func (e *Engine) Render(req Request) (*Result, error) {
	img, rep, err := e.RenderImage(req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return &Result{PNG: buf.Bytes(), Report: *rep}, nil
}

// RenderImage renders req without encoding it.
func (e *Engine) RenderImage(req Request) (image.Image, *Report, error) {
	st := req.Style
	if err := st.Validate(); err != nil {
		return nil, nil, err
	}
	bg, err := e.background(req)
	if err != nil {
		return nil, nil, err
	}

	if !colors.Valid(st.TextColor) {
		e.logger.Debug("malformed text color, using white", "color", st.TextColor)
	}
	canvas := raster.NewGG(bg)
	effects := composite.EffectsFor(st)

	rep := &Report{Width: e.width, Height: e.height}
	rep.Title, err = e.drawBlock(canvas, block{
		name:    BlockTitle,
		text:    req.Title,
		box:     st.TitleBox,
		weight:  st.TitleWeight(),
		maxSize: st.FontSizePx,
	}, st, effects)
	if err != nil {
		return nil, nil, err
	}
	rep.Body, err = e.drawBlock(canvas, block{
		name:    BlockBody,
		text:    req.Body,
		box:     st.BodyBox,
		weight:  st.BodyWeight(),
		maxSize: st.BodyMaxSize(),
	}, st, effects)
	if err != nil {
		return nil, nil, err
	}
	return canvas.Image(), rep, nil
}

func (e *Engine) background(req Request) (image.Image, error) {
	img := req.Image
	if img == nil {
		var err error
		if img, err = raster.Decode(req.Background); err != nil {
			return nil, err
		}
	}
	return raster.Normalize(img, e.width, e.height), nil
}

type block struct {
	name    string
	text    string
	box     style.BoxStyle
	weight  int
	maxSize int
}

func (e *Engine) drawBlock(c raster.Canvas, b block, st style.TextStyle, fx composite.Effects) (BlockReport, error) {
	rep := BlockReport{Block: b.name}
	if strings.TrimSpace(b.text) == "" {
		rep.Skipped, rep.Reason = true, "empty"
		observability.Render().OnBlockSkipped(context.Background(), b.name)
		return rep, nil
	}
	box := typeset.ResolveBox(b.box, e.width, e.height)
	area := box.Inner()
	rep.Area = area
	if !box.Usable() {
		rep.Skipped, rep.Reason = true, "no usable area"
		e.logger.Debug("skipping block", "block", b.name, "area", area)
		observability.Render().OnBlockSkipped(context.Background(), b.name)
		return rep, nil
	}

	lay, err := typeset.Fit(b.text, e.fonts.MeasurerAt(st.FontFamily, b.weight), typeset.Params{
		MaxSize:     b.maxSize,
		LineSpacing: st.LineSpacing,
		MaxLines:    st.MaxLines,
		Width:       float64(area.Dx()),
		Height:      float64(area.Dy()),
	})
	if err != nil {
		return rep, err
	}

	face, err := e.fonts.Resolve(st.FontFamily, b.weight, lay.Size)
	if err != nil {
		return rep, err
	}
	ff, err := face.Open()
	if err != nil {
		return rep, errors.Wrap(errors.ErrCodeFontUnavailable, err, "open %s %d", face.Family, face.Weight)
	}
	defer ff.Close()

	measure := typeset.MeasurerFunc(func(s string) float64 { return c.Measure(s, ff) })
	lines := composite.Place(lay.Lines, measure, face, area, st.Alignment, lay.LineHeight)
	composite.Draw(c, lines, ff, fx)

	rep.Family, rep.Weight, rep.Origin = face.Family, face.Weight, face.Origin
	rep.Size, rep.Lines, rep.Fits, rep.Probes = lay.Size, lay.Lines, lay.Fits, lay.Probes
	e.logger.Debug("block fitted",
		"block", b.name, "size", lay.Size, "lines", len(lay.Lines), "fits", lay.Fits,
		"font", face.Family, "weight", face.Weight, "origin", face.Origin)
	observability.Render().OnBlockFit(context.Background(), b.name, lay.Size, len(lay.Lines), lay.Probes, lay.Fits)
	return rep, nil
}

// Suggest decodes background and proposes a style for it.
func (e *Engine) Suggest(background []byte, title, body string) (style.TextStyle, error) {
	img, err := raster.Decode(background)
	if err != nil {
		return style.TextStyle{}, err
	}
	return e.SuggestImage(img, title, body), nil
}

// SuggestImage proposes a style for an already decoded background, analyzed
// at the canonical size.
func (e *Engine) SuggestImage(img image.Image, title, body string) style.TextStyle {
	return advisor.Suggest(raster.Normalize(img, e.width, e.height), title, body)
}

// Analyze reports the brightness analysis behind [Engine.SuggestImage].
func (e *Engine) Analyze(img image.Image) advisor.Report {
	return advisor.Analyze(raster.Normalize(img, e.width, e.height))
}

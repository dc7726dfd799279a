package pipeline

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/matzehuels/slidetype/pkg/cache"
	"github.com/matzehuels/slidetype/pkg/engine"
	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/fonts"
	"github.com/matzehuels/slidetype/pkg/raster"
	"github.com/matzehuels/slidetype/pkg/style"
)

func testRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	p := fonts.NewProvider(fonts.WithFinder(func(string) (string, error) { return "", os.ErrNotExist }))
	e := engine.New(p, engine.WithCanvasSize(216, 270))
	return NewRunner(e, c, nil, log.New(io.Discard))
}

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, raster.Solid(60, 75, c)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testSlides(t *testing.T) []Slide {
	st := style.Default()
	return []Slide{
		{ID: "one", Background: pngBytes(t, color.Black), Title: "First", Body: "body text", Style: st},
		{ID: "two", Background: []byte("corrupt"), Title: "Broken", Style: st},
		{ID: "three", Background: pngBytes(t, color.White), Body: "only a body", Style: st},
	}
}

func TestRenderBatch(t *testing.T) {
	r := testRunner(t, nil)
	var calls atomic.Int32

	res, err := r.RenderBatch(context.Background(), testSlides(t), BatchOptions{
		Concurrency: 2,
		OnSlide:     func(SlideResult) { calls.Add(1) },
	})
	if err != nil {
		t.Fatalf("RenderBatch: %v", err)
	}
	if res.RunID == "" {
		t.Error("missing run id")
	}
	if calls.Load() != 3 {
		t.Errorf("OnSlide called %d times, want 3", calls.Load())
	}

	want := Stats{Total: 3, Rendered: 2, Failed: 1}
	got := res.Stats
	got.Duration = 0
	if got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}

	for i, id := range []string{"one", "two", "three"} {
		if res.Slides[i].ID != id || res.Slides[i].Index != i {
			t.Errorf("slide %d = %s/%d", i, res.Slides[i].ID, res.Slides[i].Index)
		}
	}
	if !errors.Is(res.Slides[1].Err, errors.ErrCodeDecode) {
		t.Errorf("corrupt slide err = %v", res.Slides[1].Err)
	}
	for _, i := range []int{0, 2} {
		s := res.Slides[i]
		if !s.OK() || len(s.PNG) == 0 || s.Report == nil {
			t.Errorf("slide %s: ok=%v png=%d report=%v", s.ID, s.OK(), len(s.PNG), s.Report)
		}
	}
}

func TestRenderBatchCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := testRunner(t, fc)
	slides := testSlides(t)

	first, err := r.RenderBatch(context.Background(), slides, BatchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.RenderBatch(context.Background(), slides, BatchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if second.Stats.Cached != 2 || second.Stats.Failed != 1 {
		t.Errorf("second run stats = %+v", second.Stats)
	}
	if !bytes.Equal(first.Slides[0].PNG, second.Slides[0].PNG) {
		t.Error("cached slide differs from rendered slide")
	}

	changed := slides[0]
	changed.Style.Alignment = style.AlignLeft
	if res := r.RenderSlide(context.Background(), changed); res.Cached {
		t.Error("style change served from cache")
	}
}

func TestRenderBatchCancelled(t *testing.T) {
	r := testRunner(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.RenderBatch(ctx, testSlides(t), BatchOptions{Concurrency: 1})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.Stats.Failed != 3 {
		t.Errorf("stats = %+v, want every slide failed", res.Stats)
	}
}

func TestRenderSlideFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	if err := os.WriteFile(path, pngBytes(t, color.Gray{100}), 0o644); err != nil {
		t.Fatal(err)
	}
	r := testRunner(t, nil)

	res := r.RenderSlide(context.Background(), Slide{ID: "p", BackgroundPath: path, Body: "x", Style: style.Default()})
	if !res.OK() {
		t.Fatalf("RenderSlide: %v", res.Err)
	}
	res = r.RenderSlide(context.Background(), Slide{ID: "m", BackgroundPath: filepath.Join(dir, "nope.png"), Style: style.Default()})
	if !errors.Is(res.Err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing background err = %v", res.Err)
	}
}

func TestRenderCacheKeysOnFonts(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	slide := testSlides(t)[0]

	r := testRunner(t, fc)
	if res := r.RenderSlide(context.Background(), slide); res.Err != nil || res.Cached {
		t.Fatalf("first render = cached %v, err %v", res.Cached, res.Err)
	}
	if res := r.RenderSlide(context.Background(), slide); !res.Cached {
		t.Fatal("second render missed the cache")
	}

	p := fonts.NewProvider(fonts.WithFinder(func(string) (string, error) { return "", os.ErrNotExist }))
	if err := p.Register(slide.Style.FontFamily, 700, gobold.TTF); err != nil {
		t.Fatal(err)
	}
	refonted := NewRunner(engine.New(p, engine.WithCanvasSize(216, 270)), fc, nil, log.New(io.Discard))
	if res := refonted.RenderSlide(context.Background(), slide); res.Err != nil || res.Cached {
		t.Errorf("render with registered fonts = cached %v, err %v", res.Cached, res.Err)
	}
}

func TestSuggestCacheBlankTitle(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := testRunner(t, fc)
	bg := pngBytes(t, color.Black)

	blank, _, err := r.Suggest(context.Background(), bg, "   ", "body")
	if err != nil {
		t.Fatal(err)
	}
	st, cached, err := r.Suggest(context.Background(), bg, "Real title", "body")
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("titled suggestion served from the blank-title entry")
	}
	if st.BodyBox == blank.BodyBox {
		t.Errorf("body box %+v should differ from the blank-title one", st.BodyBox)
	}
	fresh, err := r.Engine.Suggest(bg, "Real title", "body")
	if err != nil {
		t.Fatal(err)
	}
	if st != fresh {
		t.Errorf("suggestion differs from a fresh one:\n%+v\n%+v", st, fresh)
	}
}

func TestSuggestCached(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := testRunner(t, fc)
	bg := pngBytes(t, color.White)

	st, cached, err := r.Suggest(context.Background(), bg, "T", "B")
	if err != nil || cached {
		t.Fatalf("first Suggest = cached %v, err %v", cached, err)
	}
	again, cached, err := r.Suggest(context.Background(), bg, "T", "B")
	if err != nil || !cached {
		t.Fatalf("second Suggest = cached %v, err %v", cached, err)
	}
	if again != st {
		t.Errorf("cached suggestion differs:\n%+v\n%+v", again, st)
	}
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`{
		"style": {"font_size_px": 90, "title_box": {"h_pct": 0.2}},
		"slides": [
			{"background": "a.png", "title": "Hi"},
			{"id": "outro", "background": "/abs/b.png", "body": "Bye",
			 "patch": {"text_color": "#000000", "stroke": {"enabled": true}}}
		]
	}`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	slides := m.Resolve()
	if len(slides) != 2 {
		t.Fatalf("slides = %d", len(slides))
	}
	if slides[0].ID != "slide-01" || slides[1].ID != "outro" {
		t.Errorf("ids = %s, %s", slides[0].ID, slides[1].ID)
	}
	def := style.Default()
	if slides[0].Style.FontSizePx != 90 || slides[0].Style.FontWeight != def.FontWeight {
		t.Errorf("base style not merged over defaults: %+v", slides[0].Style)
	}
	if slides[0].Style.TitleBox.HPct != 0.2 || slides[0].Style.TitleBox.WPct != def.TitleBox.WPct {
		t.Errorf("partial box = %+v", slides[0].Style.TitleBox)
	}
	if slides[0].Style.TextColor != def.TextColor || slides[0].Style.Stroke.Enabled {
		t.Error("patch leaked into another slide")
	}
	if slides[1].Style.TextColor != "#000000" || !slides[1].Style.Stroke.Enabled || slides[1].Style.FontSizePx != 90 {
		t.Errorf("patched style = %+v", slides[1].Style)
	}
	if slides[1].BackgroundPath != "/abs/b.png" {
		t.Errorf("absolute path rewritten to %s", slides[1].BackgroundPath)
	}
}

func TestParseManifestErrors(t *testing.T) {
	tests := map[string]string{
		"not json":      `{`,
		"no slides":     `{"slides": []}`,
		"unknown field": `{"slides": [{"background": "a.png"}], "colour": "red"}`,
		"bad style":     `{"style": {"font_weight": 1000}, "slides": [{"background": "a.png"}]}`,
		"bad patch":     `{"slides": [{"background": "a.png", "patch": {"line_spacing": 9}}]}`,
		"duplicate id":  `{"slides": [{"id": "x", "background": "a"}, {"id": "x", "background": "b"}]}`,
		"traversal id":  `{"slides": [{"id": "../evil", "background": "a.png"}]}`,
		"no background": `{"slides": [{"title": "hi"}]}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(data))
			if !errors.Is(err, errors.ErrCodeInvalidManifest) {
				t.Errorf("err = %v, want INVALID_MANIFEST", err)
			}
		})
	}
}

func TestLoadManifestResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "carousel.json")
	if err := os.WriteFile(path, []byte(`{"slides": [{"background": "images/a.png"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Resolve()[0].BackgroundPath; got != filepath.Join(dir, "images", "a.png") {
		t.Errorf("background = %s", got)
	}

	if _, err := LoadManifest(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing manifest err = %v", err)
	}
}

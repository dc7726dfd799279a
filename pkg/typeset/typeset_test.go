package typeset

import (
	"errors"
	"image"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/matzehuels/slidetype/pkg/style"
)

// halfEm is a deterministic test font: every rune, including spaces,
// advances by half the font size.
func halfEm(size int) (Measurer, error) {
	return MeasurerFunc(func(s string) float64 {
		return float64(utf8.RuneCountInString(s)) * float64(size) / 2
	}), nil
}

// perRune advances one pixel per rune regardless of size.
var perRune = MeasurerFunc(func(s string) float64 {
	return float64(utf8.RuneCountInString(s))
})

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"single line", "aa bb", 10, []string{"aa bb"}},
		{"exact fit", "aa bb cc", 8, []string{"aa bb cc"}},
		{"greedy break", "aa bb cc", 5, []string{"aa bb", "cc"}},
		{"overlong word alone", "a verylongword b", 4, []string{"a", "verylongword", "b"}},
		{"overlong first word", "verylongword b", 4, []string{"verylongword", "b"}},
		{"collapses whitespace", "  aa \t bb\n\ncc  ", 5, []string{"aa bb", "cc"}},
		{"empty", "", 10, nil},
		{"whitespace only", " \n\t ", 10, nil},
		{"zero width", "a b c", 0, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, perRune, tt.width)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("Wrap(%q, %g) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapFidelity(t *testing.T) {
	texts := []string{
		"Hello World",
		"The quick brown fox jumps over the lazy dog",
		"  leading and   trailing   spaces  ",
		"one",
		"supercalifragilisticexpialidocious is a long word indeed",
		"line\nbreaks\tand\ttabs are whitespace too",
		"ünïcödé wörds wrap by rune count",
	}
	widths := []float64{0, 1, 3, 7, 12, 20, 50, 1000}

	for _, text := range texts {
		want := strings.Join(strings.Fields(text), " ")
		for _, w := range widths {
			got := strings.Join(Wrap(text, perRune, w), " ")
			if got != want {
				t.Errorf("Wrap(%q, %g) joined = %q, want %q", text, w, got, want)
			}
		}
	}
}

func TestWrapRespectsWidth(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog again and again"
	for _, w := range []float64{5, 9, 15, 30} {
		for _, line := range Wrap(text, perRune, w) {
			if perRune.Measure(line) > w && strings.Contains(line, " ") {
				t.Errorf("line %q (width %g) exceeds %g with more than one word", line, perRune.Measure(line), w)
			}
		}
	}
}

func TestResolveBox(t *testing.T) {
	b := ResolveBox(style.BoxStyle{XPct: 0.1, YPct: 0.2, WPct: 0.8, HPct: 0.3, PaddingPct: 0.05}, 1080, 1350)

	if b.Outer != image.Rect(108, 270, 972, 675) {
		t.Errorf("Outer = %v", b.Outer)
	}
	if b.PadX != 43 || b.PadY != 20 {
		t.Errorf("padding = (%d, %d), want (43, 20)", b.PadX, b.PadY)
	}
	if got := b.Inner(); got != image.Rect(151, 290, 929, 655) {
		t.Errorf("Inner = %v", got)
	}
	if !b.Usable() {
		t.Error("Usable() = false, want true")
	}
}

func TestBoxNotUsable(t *testing.T) {
	tests := []struct {
		name string
		box  style.BoxStyle
	}{
		{"half padding", style.BoxStyle{XPct: 0.1, YPct: 0.1, WPct: 0.5, HPct: 0.5, PaddingPct: 0.5}},
		{"zero width", style.BoxStyle{XPct: 0.1, YPct: 0.1, WPct: 0, HPct: 0.5}},
		{"zero height", style.BoxStyle{XPct: 0.1, YPct: 0.1, WPct: 0.5, HPct: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ResolveBox(tt.box, 1080, 1350).Usable() {
				t.Error("Usable() = true, want false")
			}
		})
	}
}

func TestFitGolden(t *testing.T) {
	inner := ResolveBox(style.BoxStyle{XPct: 0.1, YPct: 0.2, WPct: 0.8, HPct: 0.3, PaddingPct: 0.05}, 1080, 1350).Inner()
	w, h := float64(inner.Dx()), float64(inner.Dy())

	tests := []struct {
		name      string
		text      string
		maxSize   int
		spacing   float64
		wantSize  int
		wantLines []string
	}{
		{
			name:      "hello world hits the upper bound",
			text:      "Hello World",
			maxSize:   72,
			spacing:   1.3,
			wantSize:  72,
			wantLines: []string{"Hello World"},
		},
		{
			name:     "pangram limited by height",
			text:     "The quick brown fox jumps over the lazy dog",
			maxSize:  200,
			spacing:  1.2,
			wantSize: 101,
			wantLines: []string{
				"The quick brown",
				"fox jumps over",
				"the lazy dog",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fit(tt.text, halfEm, Params{MaxSize: tt.maxSize, LineSpacing: tt.spacing, Width: w, Height: h})
			if err != nil {
				t.Fatalf("Fit() error: %v", err)
			}
			if got.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", got.Size, tt.wantSize)
			}
			if strings.Join(got.Lines, "|") != strings.Join(tt.wantLines, "|") {
				t.Errorf("Lines = %q, want %q", got.Lines, tt.wantLines)
			}
			if !got.Fits {
				t.Error("Fits = false, want true")
			}
			if got.LineHeight != float64(tt.wantSize)*tt.spacing {
				t.Errorf("LineHeight = %g", got.LineHeight)
			}
		})
	}
}

func TestFitBound(t *testing.T) {
	texts := []string{
		"Hi",
		"Hello World",
		"The quick brown fox jumps over the lazy dog",
		"A considerably longer body of text that needs to wrap across several lines before it fits anywhere sensible",
	}
	boxes := [][2]float64{{100, 30}, {300, 100}, {778, 365}, {900, 1200}, {50, 500}}

	const eps = 1e-9
	for _, text := range texts {
		for _, box := range boxes {
			for _, spacing := range []float64{0.5, 1.0, 1.3, 3.0} {
				p := Params{MaxSize: 200, LineSpacing: spacing, Width: box[0], Height: box[1]}
				got, err := Fit(text, halfEm, p)
				if err != nil {
					t.Fatalf("Fit() error: %v", err)
				}
				height := float64(got.Size) * spacing * float64(len(got.Lines))
				if height > box[1]+eps && got.Size != MinSize {
					t.Errorf("Fit(%q, %v, %g) = %d px, %d lines: height %g exceeds %g",
						text, box, spacing, got.Size, len(got.Lines), height, box[1])
				}
				if got.Size < MinSize || got.Size > 200 {
					t.Errorf("Size %d outside [%d, 200]", got.Size, MinSize)
				}
			}
		}
	}
}

func TestFitMonotonicInBox(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog"
	prev := 0
	for h := 20.0; h <= 800; h += 20 {
		got, err := Fit(text, halfEm, Params{MaxSize: 200, LineSpacing: 1.2, Width: 600, Height: h})
		if err != nil {
			t.Fatalf("Fit() error: %v", err)
		}
		if got.Size < prev {
			t.Errorf("height %g: size %d decreased from %d", h, got.Size, prev)
		}
		prev = got.Size
	}

	prev = 0
	for w := 40.0; w <= 1200; w += 40 {
		got, err := Fit(text, halfEm, Params{MaxSize: 200, LineSpacing: 1.2, Width: w, Height: 400})
		if err != nil {
			t.Fatalf("Fit() error: %v", err)
		}
		if got.Size < prev {
			t.Errorf("width %g: size %d decreased from %d", w, got.Size, prev)
		}
		prev = got.Size
	}
}

func TestFitFloor(t *testing.T) {
	got, err := Fit("far too much text for a tiny box", halfEm, Params{MaxSize: 64, LineSpacing: 1.2, Width: 40, Height: 10})
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if got.Size != MinSize {
		t.Errorf("Size = %d, want %d", got.Size, MinSize)
	}
	if got.Fits {
		t.Error("Fits = true, want false")
	}
	if strings.Join(got.Lines, " ") != "far too much text for a tiny box" {
		t.Errorf("floor layout lost words: %q", got.Lines)
	}
}

func TestFitClampsUpperBound(t *testing.T) {
	got, err := Fit("x", halfEm, Params{MaxSize: 5, LineSpacing: 1, Width: 500, Height: 500})
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if got.Size != MinSize {
		t.Errorf("Size = %d, want %d", got.Size, MinSize)
	}
}

func TestFitMaxLines(t *testing.T) {
	text := "one two three four five six"
	p := Params{MaxSize: 200, LineSpacing: 1.0, Width: 300, Height: 1000}

	free, err := Fit(text, halfEm, p)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}

	p.MaxLines = 1
	capped, err := Fit(text, halfEm, p)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}

	if len(capped.Lines) != 1 {
		t.Errorf("capped layout has %d lines, want 1", len(capped.Lines))
	}
	if capped.Size > free.Size {
		t.Errorf("line cap increased size: %d > %d", capped.Size, free.Size)
	}
}

func TestFitProbes(t *testing.T) {
	got, err := Fit("Hello World", halfEm, Params{MaxSize: 200, LineSpacing: 1.3, Width: 778, Height: 365})
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	limit := int(math.Ceil(math.Log2(float64(200-MinSize+1)))) + 1
	if got.Probes > limit {
		t.Errorf("Probes = %d, want <= %d", got.Probes, limit)
	}
}

func TestFitPropagatesMeasurerErrors(t *testing.T) {
	boom := errors.New("no face")
	_, err := Fit("text", func(int) (Measurer, error) { return nil, boom }, Params{MaxSize: 40, LineSpacing: 1, Width: 10, Height: 10})
	if !errors.Is(err, boom) {
		t.Errorf("Fit() error = %v, want %v", err, boom)
	}
}

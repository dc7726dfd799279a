// Package typeset lays text out inside a box: greedy word wrapping and the
// autofit search that picks the largest font size whose wrapped lines fit.
//
// The package is backend-agnostic. It only needs a [Measurer] that reports the
// pixel advance of a string at one font size; the font provider supplies one
// per candidate size through a [MeasurerAt] function.
//
// # Autofit
//
// [Fit] binary-searches integer sizes in [MinSize, maxSize]. A size fits when
//
//	size * lineSpacing * len(lines) <= boxHeight
//
// (and len(lines) <= maxLines when a line cap is set). The search returns the
// largest fitting size, or MinSize with whatever wrap it produces when nothing
// fits.
//
// Greedy wrapping does not make the line count strictly monotonic in the font
// size: a slightly larger size can occasionally produce fewer lines because a
// word boundary falls differently. The search assumes monotonicity anyway, so
// in those rare cases it may return a size that is not the global maximum.
// This is a known limitation and is left as is.
package typeset

// Measurer reports the horizontal advance, in pixels, of a string set in one
// font at one size.
type Measurer interface {
	Measure(text string) float64
}

// MeasurerFunc adapts a function to [Measurer].
type MeasurerFunc func(text string) float64

// Measure calls f(text).
func (f MeasurerFunc) Measure(text string) float64 { return f(text) }

// MeasurerAt returns a [Measurer] for the given pixel size.
type MeasurerAt func(size int) (Measurer, error)

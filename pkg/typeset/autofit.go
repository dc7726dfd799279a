package typeset

import "fmt"

// MinSize is the smallest font size autofit will choose.
const MinSize = 12

// Params bounds one autofit search.
type Params struct {
	MaxSize     int     // upper bound of the search; clamped up to MinSize
	LineSpacing float64 // line height as a multiple of the font size
	MaxLines    int     // 0 means no line cap
	Width       float64 // usable box width in pixels
	Height      float64 // usable box height in pixels
}

// Layout is the outcome of an autofit search.
type Layout struct {
	Size       int      // chosen font size in pixels
	Lines      []string // wrapped lines at Size
	LineHeight float64  // Size * LineSpacing
	Fits       bool     // false when even MinSize overflows the box
	Probes     int      // number of wrap evaluations performed
}

// Height returns the total height of the stacked lines.
func (l Layout) Height() float64 {
	return l.LineHeight * float64(len(l.Lines))
}

// Fit finds the largest integer size in [MinSize, p.MaxSize] whose wrapped
// layout fits in p.Width × p.Height. It runs O(log p.MaxSize) wraps.
//
// When no size fits, the layout at MinSize is returned with Fits == false.
func Fit(text string, at MeasurerAt, p Params) (Layout, error) {
	lo, hi := MinSize, max(MinSize, p.MaxSize)

	var (
		best   Layout
		found  bool
		probes int
	)
	for lo <= hi {
		mid := lo + (hi-lo)/2
		lines, err := wrapAt(text, at, mid, p.Width)
		if err != nil {
			return Layout{}, err
		}
		probes++

		if fits(mid, len(lines), p) {
			best = Layout{Size: mid, Lines: lines, LineHeight: float64(mid) * p.LineSpacing, Fits: true}
			found = true
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	if !found {
		lines, err := wrapAt(text, at, MinSize, p.Width)
		if err != nil {
			return Layout{}, err
		}
		probes++
		best = Layout{Size: MinSize, Lines: lines, LineHeight: float64(MinSize) * p.LineSpacing}
	}
	best.Probes = probes
	return best, nil
}

func fits(size, lines int, p Params) bool {
	if p.MaxLines > 0 && lines > p.MaxLines {
		return false
	}
	return float64(size)*p.LineSpacing*float64(lines) <= p.Height
}

func wrapAt(text string, at MeasurerAt, size int, width float64) ([]string, error) {
	m, err := at(size)
	if err != nil {
		return nil, fmt.Errorf("measure at %dpx: %w", size, err)
	}
	return Wrap(text, m, width), nil
}

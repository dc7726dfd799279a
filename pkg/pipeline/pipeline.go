// Package pipeline renders carousels: batches of slides that share a base
// style.
//
// A [Runner] wraps an [engine.Engine] with a render cache and concurrency.
// Both the CLI and the HTTP server use it, so cache keys and logging stay
// consistent across entry points.
//
//	runner := pipeline.NewRunner(eng, cache, nil, logger)
//	m, err := pipeline.LoadManifest("carousel.json")
//	slides := m.Resolve()
//	res, err := runner.RenderBatch(ctx, slides, pipeline.BatchOptions{Concurrency: 4})
//
// Slides render independently. A slide that fails, for example because its
// background does not decode, is recorded in its [SlideResult] and the rest
// of the batch continues.
package pipeline

import (
	"time"

	"github.com/matzehuels/slidetype/pkg/engine"
	"github.com/matzehuels/slidetype/pkg/style"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultConcurrency is the number of slides rendered at once.
	DefaultConcurrency = 4

	// TTLRender is how long rendered slides stay cached.
	TTLRender = 7 * 24 * time.Hour

	// TTLSuggest is how long style suggestions stay cached.
	TTLSuggest = 30 * 24 * time.Hour
)

// =============================================================================
// Slides and Results
// =============================================================================

// Slide is one fully resolved slide. Background holds the encoded image;
// when it is empty the file at BackgroundPath is read.
type Slide struct {
	ID             string
	Background     []byte
	BackgroundPath string
	Title          string
	Body           string
	Style          style.TextStyle
}

// SlideResult is the outcome of rendering one slide.
type SlideResult struct {
	ID       string
	Index    int
	PNG      []byte
	Report   *engine.Report // nil when served from cache or failed
	Cached   bool
	Duration time.Duration
	Err      error
}

// OK reports whether the slide rendered.
func (r SlideResult) OK() bool { return r.Err == nil }

// BatchResult is the outcome of a batch, with slides in input order.
type BatchResult struct {
	RunID  string
	Slides []SlideResult
	Stats  Stats
}

// Stats summarizes a batch.
type Stats struct {
	Total    int
	Rendered int
	Cached   int
	Failed   int
	Duration time.Duration
}

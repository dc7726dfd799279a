package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/slidetype/pkg/cache"
	"github.com/matzehuels/slidetype/pkg/engine"
	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/observability"
	"github.com/matzehuels/slidetype/pkg/style"
)

// Runner renders slides with caching.
//
// The Runner is stateless except for the engine, cache and logger; multiple
// goroutines can use the same Runner.
type Runner struct {
	Engine *engine.Engine
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long rendered slides stay cached.
	TTL time.Duration
}

// NewRunner creates a runner around e.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(e *engine.Engine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Engine: e,
		Cache:  cache.NewInstrumented(c),
		Keyer:  keyer,
		Logger: logger,
		TTL:    TTLRender,
	}
}

// RenderSlide renders one slide, serving it from the cache when possible.
// Failures are returned in the result, never as a panic or a batch abort.
func (r *Runner) RenderSlide(ctx context.Context, s Slide) SlideResult {
	start := time.Now()
	res := SlideResult{ID: s.ID}
	observability.Render().OnSlideStart(ctx, s.ID)
	defer func() {
		res.Duration = time.Since(start)
		observability.Render().OnSlideComplete(ctx, s.ID, res.Duration, res.Err)
	}()

	bg, err := background(s)
	if err != nil {
		res.Err = err
		return res
	}

	w, h := r.Engine.Size()
	key := r.Keyer.RenderKey(cache.Hash(bg), cache.RenderKeyOpts{
		Title:  s.Title,
		Body:   s.Body,
		Style:  s.Style,
		Width:  w,
		Height: h,
		Fonts:  r.Engine.FontFingerprint(),
	})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		res.PNG, res.Cached = data, true
		return res
	} else if err != nil {
		r.Logger.Warn("cache read failed", "slide", s.ID, "err", err)
	}

	out, err := r.Engine.Render(engine.Request{
		Background: bg,
		Title:      s.Title,
		Body:       s.Body,
		Style:      s.Style,
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.PNG, res.Report = out.PNG, &out.Report

	if err := r.Cache.Set(ctx, key, out.PNG, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "slide", s.ID, "err", err)
	}
	return res
}

func background(s Slide) ([]byte, error) {
	if len(s.Background) > 0 {
		return s.Background, nil
	}
	if s.BackgroundPath == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "slide %q has no background", s.ID)
	}
	data, err := os.ReadFile(s.BackgroundPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "background %s", s.BackgroundPath)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read background %s", s.BackgroundPath)
	}
	return data, nil
}

// BatchOptions configures [Runner.RenderBatch].
type BatchOptions struct {
	// Concurrency bounds the number of slides rendered at once.
	// Zero or less uses DefaultConcurrency.
	Concurrency int

	// OnSlide, when set, is called as each slide finishes. It may be called
	// from several goroutines at once.
	OnSlide func(SlideResult)
}

// RenderBatch renders slides concurrently. Individual slide failures are
// recorded in the result. Cancelling ctx stops scheduling new slides; the
// partial result is returned together with the context's error.
func (r *Runner) RenderBatch(ctx context.Context, slides []Slide, opts BatchOptions) (*BatchResult, error) {
	n := opts.Concurrency
	if n <= 0 {
		n = DefaultConcurrency
	}
	start := time.Now()
	out := &BatchResult{
		RunID:  uuid.NewString(),
		Slides: make([]SlideResult, len(slides)),
	}
	r.Logger.Debug("starting batch", "run", out.RunID, "slides", len(slides), "concurrency", n)

	var mu sync.Mutex
	done := make([]bool, len(slides))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i, s := range slides {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res := r.RenderSlide(gctx, s)
			res.Index = i
			if res.Err != nil {
				r.Logger.Warn("slide failed", "slide", s.ID, "err", res.Err)
			} else {
				r.Logger.Debug("slide rendered", "slide", s.ID, "cached", res.Cached, "duration", res.Duration)
			}
			mu.Lock()
			out.Slides[i] = res
			done[i] = true
			mu.Unlock()
			if opts.OnSlide != nil {
				opts.OnSlide(res)
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, s := range slides {
		if !done[i] {
			out.Slides[i] = SlideResult{ID: s.ID, Index: i, Err: context.Cause(ctx)}
		}
	}
	out.Stats = summarize(out.Slides, time.Since(start))
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

func summarize(results []SlideResult, d time.Duration) Stats {
	st := Stats{Total: len(results), Duration: d}
	for _, r := range results {
		switch {
		case r.Err != nil:
			st.Failed++
		case r.Cached:
			st.Cached++
		default:
			st.Rendered++
		}
	}
	return st
}

// Suggest proposes a style for background, caching the result.
func (r *Runner) Suggest(ctx context.Context, background []byte, title, body string) (style.TextStyle, bool, error) {
	key := r.Keyer.SuggestKey(cache.Hash(background), title, body)
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if st, err := style.Parse(data); err == nil {
			return st, true, nil
		}
	}

	st, err := r.Engine.Suggest(background, title, body)
	if err != nil {
		return style.TextStyle{}, false, err
	}
	if data, err := json.Marshal(st); err == nil {
		if err := r.Cache.Set(ctx, key, data, TTLSuggest); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		}
	}
	return st, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/pipeline"
)

// batchOpts holds the command-line flags for the batch command.
type batchOpts struct {
	outDir      string
	concurrency int
	noCache     bool
	noProgress  bool
}

func (c *CLI) batchCommand() *cobra.Command {
	var opts batchOpts

	cmd := &cobra.Command{
		Use:   "batch <manifest.json>",
		Short: "Render every slide of a carousel manifest",
		Long: `Batch renders the slides listed in a manifest concurrently and writes
<id>.png for each into the output directory. A failing slide is reported
and does not stop the others.

Manifest format:

  {
    "style":  {"font_family": "Inter", "font_size_px": 72},
    "slides": [
      {"background": "bg1.jpg", "title": "Hello", "body": "..."},
      {"id": "outro", "background": "bg2.png", "patch": {"text_color": "#000000"}}
    ]
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.concurrency <= 0 {
				opts.concurrency = c.Config.Batch.Concurrency
			}
			return c.runBatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "output", "o", ".", "output directory")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "slides rendered at once (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "log progress instead of showing the interactive view")

	return cmd
}

func (c *CLI) runBatch(cmd *cobra.Command, manifestPath string, opts batchOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	m, err := pipeline.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", opts.outDir)
	}

	r, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer r.Close()

	slides := m.Resolve()
	logger.Info("rendering carousel", "manifest", manifestPath, "slides", len(slides), "concurrency", opts.concurrency)
	prog := newProgress(logger)

	bopts := pipeline.BatchOptions{Concurrency: opts.concurrency}
	var res *pipeline.BatchResult
	if !opts.noProgress && logger.GetLevel() > log.DebugLevel && isatty.IsTerminal(os.Stderr.Fd()) {
		res, err = runBatchTUI(ctx, r, slides, bopts)
	} else {
		bopts.OnSlide = func(s pipeline.SlideResult) {
			if s.Err == nil {
				logger.Info("slide done", "slide", s.ID, "cached", s.Cached)
			}
		}
		res, err = r.RenderBatch(ctx, slides, bopts)
	}
	if res == nil {
		return err
	}

	out := cmd.OutOrStdout()
	written, werr := writeSlides(opts.outDir, res.Slides)
	prog.done("carousel finished", "run", res.RunID)

	fmt.Fprintln(out, batchTable(res.Slides))
	printBatchStats(out, res.Stats)
	for _, p := range written {
		printFile(out, p)
	}

	switch {
	case err != nil:
		return err
	case werr != nil:
		return werr
	case res.Stats.Failed > 0:
		return fmt.Errorf("%d of %d slides failed", res.Stats.Failed, res.Stats.Total)
	}
	return nil
}

// writeSlides writes <id>.png for every successful slide.
func writeSlides(dir string, results []pipeline.SlideResult) ([]string, error) {
	var written []string
	for _, s := range results {
		if !s.OK() {
			continue
		}
		path := filepath.Join(dir, s.ID+".png")
		if err := os.WriteFile(path, s.PNG, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// runBatchTUI renders the batch behind the interactive progress view.
// Quitting the view cancels the batch; the partial result is still returned.
func runBatchTUI(ctx context.Context, r *pipeline.Runner, slides []pipeline.Slide, opts pipeline.BatchOptions) (*pipeline.BatchResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Log lines would tear the view; failures show in the view and the table.
	quiet := *r
	quiet.Logger = log.New(io.Discard)

	p := tea.NewProgram(NewBatchModel(len(slides)), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	opts.OnSlide = func(s pipeline.SlideResult) { p.Send(slideDoneMsg{s}) }

	type outcome struct {
		res *pipeline.BatchResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := quiet.RenderBatch(ctx, slides, opts)
		done <- outcome{res, err}
		p.Send(batchDoneMsg{res, err})
	}()

	_, runErr := p.Run()
	cancel()
	o := <-done
	if o.err != nil {
		return o.res, o.err
	}
	if runErr != nil && !stderrors.Is(runErr, tea.ErrProgramKilled) {
		return o.res, runErr
	}
	return o.res, nil
}

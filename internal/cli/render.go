package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/pipeline"
	"github.com/matzehuels/slidetype/pkg/style"
)

const defaultOutput = "slide.png"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	title     string
	body      string
	stylePath string // JSON TextStyle decoded on top of the configured defaults
	patchPath string // JSON Patch applied after the style
	output    string
	noCache   bool
	report    bool // print the per-block layout report
}

// renderCommand creates the render command for drawing text onto one background.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{output: defaultOutput}

	cmd := &cobra.Command{
		Use:   "render <background>",
		Short: "Render a title and body onto a background image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.title == "" && opts.body == "" {
				c.Logger.Warn("no text given; the output is the normalized background")
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.title, "title", "", "title text")
	cmd.Flags().StringVar(&opts.body, "body", "", "body text")
	cmd.Flags().StringVarP(&opts.stylePath, "style", "s", "", "style JSON file")
	cmd.Flags().StringVarP(&opts.patchPath, "patch", "p", "", "style patch JSON file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output PNG file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.report, "report", false, "print the layout of each text block")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, bgPath string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	st, err := loadStyle(c.baseStyle(), opts.stylePath, opts.patchPath)
	if err != nil {
		return err
	}
	r, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer r.Close()

	prog := newProgress(logger)
	res := r.RenderSlide(ctx, pipeline.Slide{
		ID:             "slide",
		BackgroundPath: bgPath,
		Title:          opts.title,
		Body:           opts.body,
		Style:          st,
	})
	if res.Err != nil {
		return res.Err
	}
	if err := os.WriteFile(opts.output, res.PNG, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("slide rendered", "cached", res.Cached)

	out := cmd.OutOrStdout()
	printSuccess(out, "Rendered slide %s", cacheLabel(res.Cached))
	printFile(out, opts.output)
	if opts.report && res.Report != nil {
		printBlockReports(out, res.Report)
	}
	return nil
}

// loadStyle decodes the optional style file on top of base, then applies the
// optional patch file. The result is validated.
func loadStyle(base style.TextStyle, stylePath, patchPath string) (style.TextStyle, error) {
	st := base
	if stylePath != "" {
		data, err := readInput(stylePath)
		if err != nil {
			return style.TextStyle{}, err
		}
		if st, err = style.Decode(base, data); err != nil {
			return style.TextStyle{}, err
		}
	}
	if patchPath != "" {
		data, err := readInput(patchPath)
		if err != nil {
			return style.TextStyle{}, err
		}
		var p style.Patch
		if err := json.Unmarshal(data, &p); err != nil {
			return style.TextStyle{}, errors.Wrap(errors.ErrCodeInvalidStyle, err, "decode patch %s", patchPath)
		}
		st = style.Merge(st, p)
	}
	if err := st.Validate(); err != nil {
		return style.TextStyle{}, err
	}
	return st, nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}

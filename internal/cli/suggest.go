package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slidetype/pkg/raster"
)

func (c *CLI) suggestCommand() *cobra.Command {
	var (
		title, body, output string
		asJSON, noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <background>",
		Short: "Suggest a legible style for a background image",
		Long: `Suggest analyzes the brightness of the regions where text usually goes and
proposes a style: dark text with a light outline on bright backgrounds, and the
reverse on dark ones. The result can be passed to "render --style".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			img, err := raster.Decode(data)
			if err != nil {
				return err
			}

			r, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer r.Close()

			st, cached, err := r.Suggest(ctx, data, title, body)
			if err != nil {
				return err
			}
			loggerFromContext(ctx).Debug("style suggested", "cached", cached)

			encoded, err := json.MarshalIndent(st, "", "  ")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				fmt.Fprintln(out, string(encoded))
				return nil
			}

			printStyleSummary(out, st, r.Engine.Analyze(img))
			if output != "" {
				if err := os.WriteFile(output, append(encoded, '\n'), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printFile(out, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "title text the style is for")
	cmd.Flags().StringVar(&body, "body", "", "body text the style is for")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the style JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the style JSON instead of a summary")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")

	return cmd
}

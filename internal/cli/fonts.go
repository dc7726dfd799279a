package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slidetype/pkg/fonts"
)

func (c *CLI) fontsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "Inspect available fonts",
	}
	cmd.AddCommand(c.fontsListCommand())
	return cmd
}

func (c *CLI) fontsListCommand() *cobra.Command {
	var system bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List font families that resolve without fallback",
		Long: `List prints the families loaded from the configured font directories
and the built-in Go family. With --system it also prints the font files found
in the platform's font directories, which are used by name as fallbacks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			families := c.newProvider().Families()

			fmt.Fprintln(out, StyleTitle.Render("Families"))
			for _, f := range families {
				fmt.Fprintln(out, "  "+StyleValue.Render(f))
			}
			if len(families) == 0 {
				printDetail(out, "none registered")
			}

			if system {
				files := fonts.ListSystem()
				fmt.Fprintln(out, StyleTitle.Render("System fonts"))
				for _, f := range files {
					printFile(out, f)
				}
				printDetail(out, "%d files", len(files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&system, "system", false, "also list system font files")
	return cmd
}

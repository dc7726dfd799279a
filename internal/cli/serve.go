package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/slidetype/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve exposes rendering over HTTP until interrupted:

  POST /v1/render   multipart background, title, body, style, patch → PNG
  POST /v1/suggest  multipart background, title, body → style JSON
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			r, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer r.Close()

			srv := server.New(r,
				server.WithLogger(loggerFromContext(ctx)),
				server.WithMaxUpload(c.Config.Server.MaxUploadBytes()),
				server.WithBaseStyle(c.baseStyle()))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

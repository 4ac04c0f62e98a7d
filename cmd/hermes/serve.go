package main

import (
	"github.com/prior-it/hermes/app"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Run the hermes web server on app.host:app.port (default 0.0.0.0:3000).

Templates are loaded once at startup. With templates.watch or app.debug enabled
the template directory is watched and reloaded on every change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return app.NewServer(cfg).Start(cmd.Context(), nil)
		},
	}
}

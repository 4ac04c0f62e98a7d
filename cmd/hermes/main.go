// Package main provides the hermes command line: the web server and template tooling.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/prior-it/hermes/config"
	"github.com/spf13/cobra"
)

// Build info set via ldflags at build time.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "none"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s)", version, shortCommit)
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(buildVersion())); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hermes",
		Short: "Serve and check Jinja templates",
		Long: `hermes renders the templates of a directory behind a small htmx web application.

Configuration is read from config.toml and .env in the working directory,
environment variables (e.g. APP_PORT=8080) override both.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	lipgloss.SetHasDarkBackground(true)

	cmd.AddCommand(
		newServeCmd(),
		newCheckCmd(),
		newRenderCmd(),
		newWatchCmd(),
	)
	return cmd
}

// loadConfig reads the configuration of the current working directory.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot access the current working directory: %w", err)
	}
	cfg, err := config.Load(os.DirFS(cwd), ".env")
	if err != nil {
		return nil, fmt.Errorf("cannot load configuration: %w", err)
	}
	cfg.App.Version = buildVersion()
	return cfg, nil
}

// templateDir returns the directory argument, falling back to the configured template directory.
func templateDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Templates.Dir, nil
}

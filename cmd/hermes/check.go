package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prior-it/hermes/views"
	"github.com/spf13/cobra"
)

var errInvalidTemplates = errors.New("invalid templates")

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Parse every template and report the broken ones",
		Long: `Parse every file in the template directory (default: templates.dir) and print its status.

Sub-directories and unreadable files are listed but never fail the check.
The command exits with a non-zero status if any template has invalid syntax.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := templateDir(args)
			if err != nil {
				return err
			}
			return runCheck(cmd.OutOrStdout(), dir)
		},
	}
}

func runCheck(out io.Writer, dir string) error {
	entries, err := views.Inspect(os.DirFS(dir), views.WithBuildLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		return err
	}

	invalid := 0
	for _, entry := range entries {
		if !entry.OK() {
			invalid++
		}
		fmt.Fprintln(out, entryLine(entry))
	}
	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d entries in %q", errInvalidTemplates, invalid, len(entries), dir)
	}
	fmt.Fprintln(out, StyleOK.Render(fmt.Sprintf("%d entries in %q, all templates are valid", len(entries), dir)))
	return nil
}

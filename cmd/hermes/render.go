package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/prior-it/hermes/views"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	dir  string
	data string
	out  string
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Render a single template",
		Long: `Render the named template of the template directory and print the result.

The render context is a JSON object passed with --data. With --out the result
is written to a file instead, the file is replaced atomically.`,
		Example: `  hermes render index.html
  hermes render pokemon.html --data '{"creature": {"name": "pikachu", "id": 25}}' --out pikachu.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.dir) == 0 {
				dir, err := templateDir(nil)
				if err != nil {
					return err
				}
				opts.dir = dir
			}
			return runRender(cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", "", "template directory (default: templates.dir)")
	cmd.Flags().StringVar(&opts.data, "data", "", "render context as a JSON object")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the result to this file")
	return cmd
}

func runRender(out io.Writer, name string, opts renderOptions) error {
	var data views.Context
	if len(opts.data) > 0 {
		decoder := json.NewDecoder(strings.NewReader(opts.data))
		decoder.UseNumber()
		if err := decoder.Decode(&data); err != nil {
			return fmt.Errorf("--data must be a JSON object: %w", err)
		}
	}

	env, err := views.Build(os.DirFS(opts.dir), views.WithBuildLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		return err
	}
	result, err := env.Render(name, data)
	if err != nil {
		return err
	}

	if len(opts.out) == 0 {
		_, err = io.WriteString(out, result)
		return err
	}
	if err := atomic.WriteFile(opts.out, strings.NewReader(result)); err != nil {
		return fmt.Errorf("cannot write %q: %w", opts.out, err)
	}
	return nil
}

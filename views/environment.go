package views

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/google/uuid"
)

// Environment is an immutable set of parsed templates, keyed by filename.
// It is safe for concurrent use: nothing in it changes after [Build] returns.
type Environment struct {
	id        uuid.UUID
	loadedAt  time.Time
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	names     []string
}

type buildOptions struct {
	logger *slog.Logger
}

// BuildOption configures a single [Build].
type BuildOption func(*buildOptions)

// WithBuildLogger sets the logger that reports skipped entries. Defaults to [slog.Default].
func WithBuildLogger(logger *slog.Logger) BuildOption {
	return func(opts *buildOptions) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// Build scans the root of fsys and parses every eligible file into a new [Environment].
//
// Directories are skipped, as are files that cannot be read or are not valid UTF-8.
// Failing to list the directory returns [ErrListDirectory], a template with invalid syntax
// returns [ErrParseTemplate]. Either way no environment is returned: a build is all-or-nothing.
func Build(fsys fs.FS, options ...BuildOption) (*Environment, error) {
	opts := buildOptions{logger: slog.Default()}
	for _, option := range options {
		option(&opts)
	}

	sources, _, err := scan(fsys, opts.logger)
	if err != nil {
		return nil, err
	}

	set := newTemplateSet(sources)
	env := &Environment{
		id:        uuid.New(),
		loadedAt:  time.Now(),
		set:       set,
		templates: make(map[string]*pongo2.Template, len(sources)),
		names:     sources.names(),
	}
	for _, name := range env.names {
		tpl, err := set.FromFile(name)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrParseTemplate, name, err)
		}
		env.templates[name] = tpl
	}

	return env, nil
}

// ID uniquely identifies this snapshot.
func (env *Environment) ID() uuid.UUID {
	return env.id
}

func (env *Environment) LoadedAt() time.Time {
	return env.loadedAt
}

// Names returns all template names in lexical order.
func (env *Environment) Names() []string {
	return slices.Clone(env.names)
}

func (env *Environment) Len() int {
	return len(env.templates)
}

// Has reports whether a template with this exact name was loaded.
func (env *Environment) Has(name string) bool {
	_, ok := env.templates[name]
	return ok
}

// Render executes the named template with data and returns the complete output.
// data may be nil, a [Context], a map[string]any or any value that encodes to a JSON object.
//
// An unknown name returns [ErrTemplateNotFound]; there is no fallback template.
// Any execution failure returns [ErrRenderTemplate] and no output at all.
func (env *Environment) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := env.execute(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderWriter behaves like [Environment.Render] but copies the output to w.
// Nothing is written to w unless rendering succeeded.
func (env *Environment) RenderWriter(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := env.execute(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (env *Environment) execute(buf *bytes.Buffer, name string, data any) (err error) {
	tpl, ok := env.templates[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	ctx, err := toContext(data)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			buf.Reset()
			err = fmt.Errorf("%w %q: panic: %v", ErrRenderTemplate, name, r)
		}
	}()
	if err := tpl.ExecuteWriterUnbuffered(ctx, buf); err != nil {
		buf.Reset()
		return fmt.Errorf("%w %q: %w", ErrRenderTemplate, name, err)
	}
	return nil
}

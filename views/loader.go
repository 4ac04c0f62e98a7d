package views

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
)

// sources maps a template name to its raw contents.
type sources map[string][]byte

func (s sources) names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// sourceLoader is a pongo2.TemplateLoader that only knows the files of a single scan, so
// includes can never escape the template directory or see files added after the scan.
type sourceLoader struct {
	sources sources
}

var _ pongo2.TemplateLoader = sourceLoader{}

func (l sourceLoader) Abs(_, name string) string {
	return path.Clean(strings.TrimPrefix(name, "/"))
}

func (l sourceLoader) Get(name string) (io.Reader, error) {
	src, ok := l.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return bytes.NewReader(src), nil
}

func newTemplateSet(src sources) *pongo2.TemplateSet {
	registerFilters()
	return pongo2.NewSet("views", sourceLoader{sources: src})
}

var errNotText = errors.New("file is not valid UTF-8 text")

// scan lists the root of fsys and reads every regular entry.
// Only the listing itself can fail, unreadable entries are reported and skipped.
func scan(fsys fs.FS, logger *slog.Logger) (sources, []Entry, error) {
	dirEntries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrListDirectory, err)
	}

	src := make(sources, len(dirEntries))
	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if dirEntry.IsDir() {
			entries = append(entries, Entry{Name: name, Status: StatusDirectory})
			continue
		}

		body, err := fs.ReadFile(fsys, name)
		if err == nil && !utf8.Valid(body) {
			err = errNotText
		}
		if err != nil {
			logger.Debug("Skipping unreadable template", "name", name, "error", err)
			entries = append(entries, Entry{Name: name, Status: StatusUnreadable, Err: err})
			continue
		}

		src[name] = body
		entries = append(entries, Entry{Name: name, Status: StatusLoaded})
	}
	return src, entries, nil
}

package views

import (
	"fmt"
	"io/fs"
	"log/slog"
)

type Status string

const (
	StatusLoaded     Status = "loaded"
	StatusDirectory  Status = "directory"
	StatusUnreadable Status = "unreadable"
	StatusInvalid    Status = "invalid"
)

// Entry describes what a build did with one directory entry.
type Entry struct {
	Name   string
	Status Status
	Err    error
}

// OK reports whether the entry did not prevent a build.
func (e Entry) OK() bool {
	return e.Status != StatusInvalid
}

// Inspect scans fsys like [Build] but parses every template independently, so it reports all
// broken templates instead of stopping at the first one. Entries are sorted by name.
// Only a listing failure is returned as an error.
func Inspect(fsys fs.FS, options ...BuildOption) ([]Entry, error) {
	opts := buildOptions{logger: slog.Default()}
	for _, option := range options {
		option(&opts)
	}

	src, entries, err := scan(fsys, opts.logger)
	if err != nil {
		return nil, err
	}

	set := newTemplateSet(src)
	for i, entry := range entries {
		if entry.Status != StatusLoaded {
			continue
		}
		if _, err := set.FromFile(entry.Name); err != nil {
			entries[i].Status = StatusInvalid
			entries[i].Err = fmt.Errorf("%w %q: %w", ErrParseTemplate, entry.Name, err)
		}
	}
	return entries, nil
}

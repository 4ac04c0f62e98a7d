package views

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// ReloadHook is called after every reload attempt with either the new snapshot or the error.
type ReloadHook func(env *Environment, err error)

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDebounce sets how long Watch waits for the directory to settle before reloading.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		s.debounce = d
	}
}

func WithReloadHook(hook ReloadHook) Option {
	return func(s *Store) {
		s.hooks = append(s.hooks, hook)
	}
}

// WithFS reads templates from fsys instead of the directory passed to NewStore.
// The directory is still used by Watch.
func WithFS(fsys fs.FS) Option {
	return func(s *Store) {
		s.fsys = fsys
	}
}

// Store shares the current [Environment] between concurrent readers and swaps it atomically on
// reload. The zero value is not usable, create one with [NewStore].
type Store struct {
	dir      string
	fsys     fs.FS
	logger   *slog.Logger
	debounce time.Duration
	hooks    []ReloadHook

	current atomic.Pointer[Environment]

	mu      sync.Mutex // serialises reloads
	lastErr error
}

// NewStore creates a store for the template directory dir and performs the first build.
// A failing first build does not fail NewStore: the store keeps running without a snapshot,
// every render returns [ErrUnavailable] and [Store.Err] holds the cause until a reload succeeds.
func NewStore(dir string, options ...Option) *Store {
	s := &Store{
		dir:      dir,
		logger:   slog.Default(),
		debounce: 200 * time.Millisecond, //nolint:mnd
	}
	for _, option := range options {
		option(s)
	}
	if s.fsys == nil {
		s.fsys = os.DirFS(dir)
	}
	_, _ = s.Reload()
	return s
}

// Dir returns the template directory.
func (s *Store) Dir() string {
	return s.dir
}

// Current returns the active snapshot, or nil if no build has succeeded yet.
func (s *Store) Current() *Environment {
	return s.current.Load()
}

// Err returns the error of the most recent reload, or nil if it succeeded.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reload rebuilds the environment from disk. On success the new snapshot replaces the current
// one for all subsequent renders. On failure the current snapshot stays active.
func (s *Store) Reload() (*Environment, error) {
	s.mu.Lock()
	env, err := Build(s.fsys, WithBuildLogger(s.logger))
	s.lastErr = err
	if err == nil {
		s.current.Store(env)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Could not load templates", "dir", s.dir, "error", err)
	} else {
		s.logger.Info(
			"Loaded templates",
			"dir", s.dir,
			"snapshot", env.ID().String(),
			"count", env.Len(),
		)
	}
	for _, hook := range s.hooks {
		hook(env, err)
	}
	return env, err
}

// Inspect reports the status of every entry in the template directory, see [Inspect].
func (s *Store) Inspect() ([]Entry, error) {
	return Inspect(s.fsys, WithBuildLogger(s.logger))
}

// Snapshot returns the active environment, or [ErrUnavailable] wrapping the last build error
// when no build has succeeded yet.
func (s *Store) Snapshot() (*Environment, error) {
	env := s.Current()
	if env != nil {
		return env, nil
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil, ErrUnavailable
}

// Render renders name against the current snapshot, see [Environment.Render].
func (s *Store) Render(name string, data any) (string, error) {
	env, err := s.Snapshot()
	if err != nil {
		return "", err
	}
	return env.Render(name, data)
}

// RenderWriter renders name against the current snapshot, see [Environment.RenderWriter].
func (s *Store) RenderWriter(w io.Writer, name string, data any) error {
	env, err := s.Snapshot()
	if err != nil {
		return err
	}
	return env.RenderWriter(w, name, data)
}

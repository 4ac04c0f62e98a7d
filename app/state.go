package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/server"
	"github.com/prior-it/hermes/views"
)

// State is shared by every handler. Templates is the only mutable part and swaps snapshots atomically.
type State struct {
	Templates *views.Store

	stopWatch context.CancelFunc
	watching  sync.WaitGroup
}

func New() *State {
	return &State{}
}

// Init loads the template directory and attaches it to srv. When cfg enables it, the directory
// is watched until the state is closed.
func (s *State) Init(srv *server.Server[*State], cfg *config.Config, logger *slog.Logger) {
	s.Templates = views.NewStore(
		cfg.Templates.Dir,
		views.WithLogger(logger),
		views.WithDebounce(time.Duration(cfg.Templates.Debounce)*time.Millisecond),
	)
	srv.WithTemplates(s.Templates)

	if cfg.WatchTemplates() {
		s.watch(logger)
	}
}

func (s *State) watch(logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopWatch = cancel
	s.watching.Add(1)
	go func() {
		defer s.watching.Done()
		if err := s.Templates.Watch(ctx); err != nil {
			logger.Error("Template watcher stopped", "error", err)
		}
	}()
}

// Close stops the template watcher, if any.
func (s *State) Close(_ context.Context) {
	if s.stopWatch != nil {
		s.stopWatch()
	}
	s.watching.Wait()
}

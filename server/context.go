package server

import (
	"context"
	"net/http"

	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/views"
)

type contextKey uint

const (
	ctxConfig contextKey = iota
	ctxSnapshot
)

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ctxConfig).(*config.Config)
	return cfg
}

// Snapshot returns the template environment pinned to this request, or nil if there is none.
// A request keeps rendering from the same snapshot even when the store reloads halfway through.
func Snapshot(ctx context.Context) *views.Environment {
	env, _ := ctx.Value(ctxSnapshot).(*views.Environment)
	return env
}

// PinContext is Hermes middleware that stores the server config and the current template snapshot in the
// request context.
func (server *Server[state]) PinContext(hermes *Hermes, _ state) (context.Context, error) {
	ctx := context.WithValue(hermes.Context(), ctxConfig, server.cfg)
	if server.templates != nil {
		if env := server.templates.Current(); env != nil {
			ctx = context.WithValue(ctx, ctxSnapshot, env)
		}
	}
	return ctx, nil
}

// ContextMiddleware is [Server.PinContext] as a standard http middleware.
func (server *Server[state]) ContextMiddleware(next http.Handler) http.Handler {
	return server.HandlerMiddleware(server.PinContext)(next)
}

package app

import (
	"os"

	"github.com/prior-it/hermes/bootstrap"
	"github.com/prior-it/hermes/components"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/server"
)

// NewServer bootstraps a server for cfg with all hermes routes attached.
func NewServer(cfg *config.Config) *server.Server[*State] {
	srv := bootstrap.Full(New(), cfg)
	Register(srv, cfg)
	return srv
}

// Register attaches the hermes routes to srv.
func Register(srv *server.Server[*State], cfg *config.Config) {
	srv.WithErrorHandler(ErrorHandler)

	srv.Page("/", "index.html").
		Page("/tyler", "tyler.html").
		Post("/tyler", ShowCreature).
		Page("/mouse", "mouse.html").
		Post("/mouse_entered", MouseEntered).
		Page("/form", "form.html").
		Post("/form", SubmitForm).
		Get("/tst", Kill)

	srv.Group("/assets").
		ScriptFiles("/js", os.DirFS(cfg.Assets.Scripts))

	components.ServeHTMX(srv)
}

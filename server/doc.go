/*
Package server provides the HTTP server of hermes.
Handlers take an application-specific state object (used for dependency injection)
and a [Hermes] object which wraps the request and offers rendering and logging helpers.
Handlers return an error instead of writing one; the server's [ErrorHandler] maps it to a
status code (see [StatusFor]).

Basic example:

	import (
		"context"

		"myapp/state"

		"github.com/prior-it/hermes/config"
		"github.com/prior-it/hermes/server"
		"github.com/prior-it/hermes/views"
	)

	func main() {
		cfg, _ := config.Load(os.DirFS("."))
		templates := views.NewStore(cfg.Templates.Dir)

		srv := server.New(state.New(), cfg).
			WithTemplates(templates)
		srv.AttachDefaultMiddleware()

		srv.Page("/", "index.html").
			Post("/ping", Ping)

		log.Fatal(srv.Start(context.Background(), nil))
	}

	func Ping(hermes *server.Hermes, _ *state.State) error {
		hermes.Text(http.StatusOK, "pong")
		return nil
	}
*/
package server

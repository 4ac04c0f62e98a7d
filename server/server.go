package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/views"
	"github.com/vearutop/statigz"
)

type (
	ErrorHandler    func(hermes *Hermes, err error)
	NotFoundHandler func(hermes *Hermes)
)

type State interface {
	Close(ctx context.Context)
}

type Server[state State] struct {
	mux          *chi.Mux
	state        state
	logger       *slog.Logger
	errorHandler ErrorHandler
	templates    *views.Store
	cfg          *config.Config
}

type (
	Handler[state any]    func(hermes *Hermes, state state) error
	Middleware[state any] func(hermes *Hermes, state state) (context.Context, error)
)

// New creates a new server with the specified state object and configuration.
func New[state State](s state, cfg *config.Config) *Server[state] {
	server := &Server[state]{
		mux:          chi.NewMux(),
		state:        s,
		logger:       slog.Default(),
		errorHandler: DefaultErrorHandler,
		cfg:          cfg,
	}

	// Attach default not found handler
	server.WithNotFoundHandler(
		func(hermes *Hermes) {
			hermes.Text(http.StatusNotFound, fmt.Sprintf("Page %q not found", hermes.Path()))
		},
	)
	server.mux.MethodNotAllowed(server.handle(func(_ *Hermes, _ state) error {
		return core.ErrMethodNotAllowed
	}))

	return server
}

func (server *Server[state]) WithErrorHandler(errorHandler ErrorHandler) *Server[state] {
	server.errorHandler = errorHandler
	return server
}

func (server *Server[state]) WithNotFoundHandler(notFoundHandler NotFoundHandler) *Server[state] {
	server.mux.NotFound(server.handle(func(hermes *Hermes, _ state) error {
		notFoundHandler(hermes)
		return nil
	}))
	return server
}

func (server *Server[state]) WithLogger(logger *slog.Logger) *Server[state] {
	server.logger = logger
	return server
}

// WithTemplates sets the store that [Hermes.RenderTemplate] and [Server.Page] render from.
func (server *Server[state]) WithTemplates(store *views.Store) *Server[state] {
	server.templates = store
	return server
}

func (server *Server[state]) NewHermes(w http.ResponseWriter, r *http.Request) *Hermes {
	return &Hermes{
		Writer:    w,
		Request:   r,
		logger:    server.logger,
		templates: server.templates,
		Cfg:       server.cfg,
	}
}

func (server *Server[state]) handle(handler Handler[state]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hermes := server.NewHermes(w, r)
		err := handler(hermes, server.state)
		if err != nil {
			server.errorHandler(hermes, err)
		}
		_ = r.Body.Close()
	}
}

// Utility function that converts Hermes middleware to a http handler
func (server *Server[state]) HandlerMiddleware(
	middleware Middleware[state],
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hermes := server.NewHermes(w, r)
			ctx, err := middleware(hermes, server.state)
			if err != nil {
				server.errorHandler(hermes, err)
			} else {
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

func (server *Server[state]) AttachDefaultMiddleware() {
	server.UseStd(
		middleware.RedirectSlashes,
		middleware.Recoverer,
		middleware.RealIP,
		middleware.RequestID,
		HTTPLogger(server.cfg),
		middleware.Timeout(
			time.Duration(server.cfg.App.RequestTimeout)*time.Second,
		),
	)
	server.Use(server.PinContext)
}

// Start runs the server until ctx is cancelled, SIGINT or SIGTERM is received, or serving fails.
// If no listener is provided, a new TCP listener will be created on the configured host and port.
func (server *Server[state]) Start(ctx context.Context, listener net.Listener) error {
	// Handle OS signals to cancel the context
	ctxServer, stopSignal := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignal()

	httpServer := &http.Server{
		Addr:              server.cfg.Address(),
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second, //nolint:mnd
	}

	errorCh := make(chan error, 1)
	// Run the actual server
	go func() {
		host := httpServer.Addr
		if listener != nil {
			host = listener.Addr().String()
		}
		server.logger.Info("Starting server", "url", server.cfg.BaseURL(), "host", host)
		var err error
		if listener != nil {
			err = httpServer.Serve(listener)
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorCh <- err
		}
		close(errorCh)
	}()

	var errServer error
	select {
	case err := <-errorCh:
		errServer = err
	case <-ctxServer.Done():
		server.logger.Info("Server interrupt received")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(
		context.WithoutCancel(ctx),
		time.Duration(server.cfg.App.ShutdownTimeout)*time.Second,
	)
	defer cancelShutdown()

	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		server.logger.Warn("Could not shut down gracefully", "error", err)
	}
	server.Shutdown(ctxShutdown)

	return errServer
}

// Shutdown will release all server resources. You generally don't need to call this manually.
func (server *Server[state]) Shutdown(ctx context.Context) {
	sentryTimeout := max(0, time.Duration(server.cfg.App.ShutdownTimeout-1))
	sentry.Flush(sentryTimeout * time.Second)
	server.state.Close(ctx)
}

// ServeHTTP implements [net/http.Handler].
func (server *Server[state]) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	server.mux.ServeHTTP(writer, request)
}

// UseStd appends a stdlib middleware handler to the middleware stack.
//
// The middleware stack for any server will execute before searching for a matching
// route to a specific handler, which provides opportunity to respond early,
// change the course of the request execution, or set request-scoped values for
// the next Handler.
func (server *Server[state]) UseStd(middlewares ...func(http.Handler) http.Handler) *Server[state] {
	server.mux.Use(middlewares...)
	return server
}

// Use appends a Hermes middleware handler to the middleware stack, see [Server.UseStd].
func (server *Server[state]) Use(
	middlewares ...Middleware[state],
) *Server[state] {
	for _, mi := range middlewares {
		server.mux.Use(server.HandlerMiddleware(mi))
	}
	return server
}

// Handle adds the route `pattern` that matches any http method to
// execute the `handler` [net/http.Handler].
func (server *Server[state]) Handle(pattern string, handler http.Handler) *Server[state] {
	server.mux.Handle(pattern, handler)
	return server
}

// StaticFiles serves all files in the `dir` directory or the `files` FileSystem at the `pattern` url.
// In debug mode, assets will be loaded from disk to support hot-reloading.
// In production mode, assets will be compressed and embedded in the executable instead.
// Debug mode hot-reloading will be disabled if dir is set to the empty string.
// Filesystems will ignore `/static` folders and instead directly target the files inside. So if your
// filesystem has a file "/static/file.txt", you can get it directly with "/file.txt".
//
// Example:
//
//	server.StaticFiles("/static/", "./components/static/", components.EmbedStatic)
func (server *Server[state]) StaticFiles(pattern string, dir string, files fs.ReadDirFS) {
	if server.cfg.App.Debug && len(dir) > 0 {
		server.Handle(
			pattern+"*",
			http.StripPrefix(pattern,
				http.FileServer(http.Dir(dir)),
			),
		)
	} else {
		server.Handle(
			pattern+"*",
			http.StripPrefix(pattern,
				middleware.NoCache(
					statigz.FileServer(files, statigz.EncodeOnInit, statigz.FSPrefix("static")),
				),
			),
		)
	}
}

// StaticFile serves the single file `static/<name>` of `files` at the fixed GET route `pattern`.
// A file that is not part of `files` results in [core.ErrNotFound].
func (server *Server[state]) StaticFile(pattern string, files fs.ReadDirFS, name string) *Server[state] {
	fileServer := statigz.FileServer(files, statigz.EncodeOnInit, statigz.FSPrefix("static"))
	server.Get(pattern, func(hermes *Hermes, _ state) error {
		if _, err := fs.Stat(files, path.Join("static", name)); err != nil {
			return fmt.Errorf("static file %q: %w", name, core.ErrNotFound)
		}
		r := hermes.Request.Clone(hermes.Context())
		r.URL.Path = "/" + name
		r.URL.RawPath = ""
		fileServer.ServeHTTP(hermes.Writer, r)
		return nil
	})
	return server
}

// ScriptFiles serves `pattern/{file_name}` from the flat directory `files`.
// The name must exactly match a regular file listed in the directory at the time of the request,
// anything else (including sub-directories and any path with a separator) results in [core.ErrNotFound].
// A directory that cannot be listed is a misconfiguration and results in [core.ErrInternal].
func (server *Server[state]) ScriptFiles(pattern string, files fs.FS) *Server[state] {
	server.Get(path.Join(pattern, "{file_name}"), func(hermes *Hermes, _ state) error {
		name := hermes.GetPath("file_name")
		hermes.LogString("file_name", name)

		entries, err := fs.ReadDir(files, ".")
		if err != nil {
			return fmt.Errorf("cannot list scripts: %w: %w", core.ErrInternal, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || entry.Name() != name {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return fmt.Errorf("script %q: %w: %w", name, core.ErrNotFound, err)
			}
			data, err := fs.ReadFile(files, name)
			if err != nil {
				return fmt.Errorf("script %q: %w: %w", name, core.ErrNotFound, err)
			}
			http.ServeContent(hermes.Writer, hermes.Request, name, info.ModTime(), bytes.NewReader(data))
			return nil
		}
		return fmt.Errorf("script %q: %w", name, core.ErrNotFound)
	})
	return server
}

// Group attaches another Handler or Router as a subrouter along a routing
// path. It's very useful to split up a large API as many independent routers and
// compose them as a single service. Or to attach an additional set of middleware
// along a group of endpoints.
//
// Note that Group() does NOT return the original server but rather
// a subroute server that only serves routes along the specified Group pattern.
// If you define two Group() routes on the exact same pattern, the second group will panic.
func (server *Server[state]) Group(
	pattern string,
) *Server[state] {
	srv := Server[state](*server) //nolint:unconvert // shallow copy
	srv.mux = chi.NewMux()
	server.mux.Mount(pattern, srv.mux)
	return &srv
}

// Get adds the route `pattern` that matches a GET http method to execute the `handlerFn` HandlerFunc.
func (server *Server[state]) Get(
	pattern string,
	handlerFn func(hermes *Hermes, state state) error,
) *Server[state] {
	server.mux.Get(pattern, server.handle(handlerFn))
	return server
}

// Post adds the route `pattern` that matches a POST http method to execute the `handlerFn` HandlerFunc.
func (server *Server[state]) Post(
	pattern string,
	handlerFn func(hermes *Hermes, state state) error,
) *Server[state] {
	server.mux.Post(pattern, server.handle(handlerFn))
	return server
}

// Page adds the route `pattern` that matches a GET http method to render the named template with an empty context.
func (server *Server[state]) Page(
	pattern string,
	templateName string,
) *Server[state] {
	server.mux.Get(pattern, server.handle(func(hermes *Hermes, _ state) error {
		return hermes.RenderTemplate(templateName, nil)
	}))
	return server
}

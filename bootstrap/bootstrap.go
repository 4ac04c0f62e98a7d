package bootstrap

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/prior-it/hermes/components"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/server"
)

// BootstrappedState is a state that is initialised through bootstrapping.
//
// The state receives the configured logger and is responsible for releasing whatever it starts in Init
// in its own Close function.
type BootstrappedState[state server.State] interface {
	server.State
	Init(server *server.Server[state], cfg *config.Config, logger *slog.Logger)
}

// Minimal creates a new server with the default middleware and the embedded static files, but no
// logger, Sentry or state initialisation.
//
// Note that this function will add routes before returning, which means it is not possible to add additional
// middleware after calling this function.
func Minimal[state server.State](
	stt state,
	cfg *config.Config,
	middlewares ...func(http.Handler) http.Handler,
) *server.Server[state] {
	if cfg == nil {
		panic("You need to supply a config.Config value to bootstrap a new server")
	}
	s := server.New(stt, cfg)
	s.AttachDefaultMiddleware()

	s.UseStd(middlewares...)

	components.ServeStaticFiles(s, "/static")

	return s
}

// Full creates a new server and initializes all default systems.
//
// This will initialise the logger, Sentry (if enabled in config), the state itself and all middleware.
//
// Note that this function will add routes before returning, which means it is not possible to add additional
// global middleware after calling this function.
func Full[state BootstrappedState[state]](
	stt state,
	cfg *config.Config,
	middlewares ...func(http.Handler) http.Handler,
) *server.Server[state] {
	if cfg == nil {
		panic("You need to supply a config.Config value to bootstrap a new server")
	}

	logger := CreateLogger(cfg)

	s := server.New(stt, cfg).
		WithLogger(logger)

	// Initialize Sentry
	if cfg.Sentry.Enabled {
		initSentry(logger, cfg)
	}

	stt.Init(s, cfg, logger)

	s.AttachDefaultMiddleware()

	// Enable sentry middleware
	if cfg.Sentry.Enabled {
		sentryHandler := sentryhttp.New(sentryhttp.Options{
			Repanic:         true,
			WaitForDelivery: true,
			Timeout:         5 * time.Second, //nolint:mnd
		})
		s.UseStd(sentryHandler.Handle)
	}

	// Fully disable caching in debug mode
	if cfg.App.Debug {
		s.UseStd(middleware.NoCache)
		if cfg.Log.Verbose {
			s.UseStd(server.Debug(false))
		}
	}

	s.UseStd(middlewares...)

	components.ServeStaticFiles(s, "/static")

	return s
}

// CreateLogger builds the logger described by cfg.Log and makes it the default logger.
func CreateLogger(cfg *config.Config) *slog.Logger {
	var logger *slog.Logger
	level := cfg.Log.Level.ToSlog()
	addSource := cfg.Log.Verbose && cfg.App.Debug
	switch cfg.Log.Format {
	case config.LogFormatPlaintext:
		{
			logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
				Level:      level,
				AddSource:  addSource,
				TimeFormat: time.Kitchen,
			}))
		}
	default:
		{
			logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     level,
				AddSource: addSource,
			}))
		}
	}
	slog.SetDefault(logger)
	return logger
}

func initSentry(logger *slog.Logger, cfg *config.Config) {
	logger.Debug("Trying to initialise Sentry")
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Debug:            cfg.App.Debug,
		AttachStacktrace: true,
		SampleRate:       cfg.Sentry.SampleRate,
		EnableTracing:    true,
		TracesSampleRate: cfg.Sentry.TracesRate,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			if ctx.Span.Name == "GET /static" || ctx.Span.Name == "GET /htmx" {
				return 0.0
			}
			return cfg.Sentry.TracesRate
		}),
		ServerName:  cfg.App.Name,
		Release:     cfg.App.Version,
		Environment: string(cfg.App.Env),
	}); err != nil {
		logger.Error("Sentry initialization failed", "error", err)
	} else {
		logger.Debug("Sentry initialised")
	}
}

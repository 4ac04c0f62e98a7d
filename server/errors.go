package server

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/prior-it/hermes/core"
)

// StatusFor maps an error to the status code and the public message describing it.
// The message never contains the error itself.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest, "bad request"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, core.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method not allowed"
	}
	return http.StatusInternalServerError, "internal server error"
}

func DefaultErrorHandler(hermes *Hermes, err error) {
	code, msg := StatusFor(err)
	ReportError(hermes, code, err)
	hermes.Text(code, msg)
}

// ReportError logs err and sends server errors to Sentry when the Sentry middleware is active.
// Client errors are only logged at debug level.
func ReportError(hermes *Hermes, code int, err error) {
	if code < http.StatusInternalServerError {
		hermes.Debug("Client error", "status", code, "path", hermes.Path(), "error", err)
		return
	}
	hermes.Error("Server error", "status", code, "path", hermes.Path(), "error", err)
	if hub := sentry.GetHubFromContext(hermes.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

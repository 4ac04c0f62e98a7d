package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/gorilla/schema"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/views"
)

const maxMultipartMemory = 32 << 20

var formDecoder = func() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder
}()

// Hermes wraps a single request and its response writer.
type Hermes struct {
	Writer    http.ResponseWriter
	Request   *http.Request
	logger    *slog.Logger
	templates *views.Store
	Cfg       *config.Config
}

func (hermes *Hermes) StatusCode(code int) {
	hermes.Writer.WriteHeader(code)
}

// Log the specified error message. args is a list of structured fields to add to the error message.
// The arguments should alternate between a field's name (string) and its value (any).
// This behaves the same as [log/slog.Error]
//
// # Example
//
//	hermes.Error("Something went wrong", "error", err, "template", name)
func (hermes *Hermes) Error(msg string, args ...any) {
	hermes.logger.Error(msg, args...)
}

// Log the specified debug message. args is a list of structured fields to add to the message.
// This behaves the same as [log/slog.Debug]
func (hermes *Hermes) Debug(msg string, args ...any) {
	hermes.logger.Debug(msg, args...)
}

// LogString will add the specified field and its value to the current request's log entry.
func (hermes *Hermes) LogString(field string, value string) {
	hermes.LogField(field, slog.StringValue(value))
}

// LogField will add the specified field and its value to the current request's log entry
//
// # Example
//
// hermes.LogField("creature_id", slog.IntValue(creature.ID))
func (hermes *Hermes) LogField(field string, value slog.Value) {
	httplog.LogEntrySetField(hermes.Context(), field, value)
}

// Context returns the request's context.
func (hermes *Hermes) Context() context.Context {
	return hermes.Request.Context()
}

// Path returns the full path of the request.
func (hermes *Hermes) Path() string {
	return hermes.Request.URL.Path
}

// GetPath returns the value for the named path wildcard in the router pattern
// that matched the request, or the empty string if there is no such wildcard.
//
// E.g.: A route defined as `/assets/js/{file_name}` can call `GetPath("file_name")`.
func (hermes *Hermes) GetPath(key string) string {
	return chi.URLParam(hermes.Request, key)
}

// GetQuery returns the first value associated with the given query parameter in the request url.
func (hermes *Hermes) GetQuery(param string) string {
	return hermes.Request.URL.Query().Get(param)
}

// GetHeader returns the first value associated with the given header in the request.
// If there are no values set for the header, this returns the empty string.
func (hermes *Hermes) GetHeader(header string) string {
	return hermes.Request.Header.Get(header)
}

// AddHeader adds the header, value pair to the response header.
func (hermes *Hermes) AddHeader(header string, value string) {
	hermes.Writer.Header().Add(header, value)
}

// IsHTMX reports whether the request was made by htmx.
func (hermes *Hermes) IsHTMX() bool {
	return hermes.GetHeader("HX-Request") == "true"
}

// ParseBody parses the request body into v. The decoder is picked from the Content-Type header:
// JSON bodies (e.g. sent by the htmx json-enc extension) are decoded with encoding/json, everything
// else is treated as a form and decoded using the `schema` struct tags.
// A body that cannot be decoded returns [core.ErrInvalidInput].
//
// # Example:
//
//	var data SomeStruct
//	if err := hermes.ParseBody(&data); err != nil {
//		return fmt.Errorf("cannot parse body: %w", err)
//	}
func (hermes *Hermes) ParseBody(v any) error {
	if render.GetRequestContentType(hermes.Request) == render.ContentTypeJSON {
		if err := render.DecodeJSON(hermes.Request.Body, v); err != nil {
			return errors.Join(core.ErrInvalidInput, err)
		}
		return nil
	}

	form, err := hermes.ParseForm()
	if err != nil {
		return err
	}
	if err := formDecoder.Decode(v, form); err != nil {
		return errors.Join(core.ErrInvalidInput, err)
	}
	return nil
}

// ParseForm parses a urlencoded or multipart body and returns its fields.
func (hermes *Hermes) ParseForm() (url.Values, error) {
	var err error
	if strings.HasPrefix(hermes.GetHeader("Content-Type"), "multipart/form-data") {
		err = hermes.Request.ParseMultipartForm(maxMultipartMemory)
	} else {
		err = hermes.Request.ParseForm()
	}
	if err != nil {
		return nil, errors.Join(core.ErrInvalidInput, err)
	}
	return hermes.Request.PostForm, nil
}

// Text writes body as text/plain with the specified status code.
func (hermes *Hermes) Text(code int, body string) {
	render.Status(hermes.Request, code)
	render.PlainText(hermes.Writer, hermes.Request, body)
}

// RawJSON writes body, which must already be valid JSON, with status 200.
func (hermes *Hermes) RawJSON(body string) error {
	hermes.Writer.Header().Set("Content-Type", "application/json")
	hermes.StatusCode(http.StatusOK)
	_, err := io.WriteString(hermes.Writer, body)
	return err
}

// RenderComponent renders the specified component in the response body.
// You can render multiple components and they will all be returned by the response,
// this can be used to perform out-of-band swaps with HTMX, for example.
func (hermes *Hermes) RenderComponent(
	component templ.Component,
) error {
	hermes.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(hermes.Context(), hermes.Writer)
}

// RenderTemplate renders the named template from the request's snapshot as text/html.
// Nothing is written when rendering fails, so the error handler can still pick the status code.
//
// # Example:
//
//	return hermes.RenderTemplate("pokemon.html", views.Context{"creature": creature})
func (hermes *Hermes) RenderTemplate(name string, data any) error {
	env, err := hermes.snapshot()
	if err != nil {
		return err
	}
	hermes.LogString("template", name)
	hermes.LogString("snapshot", env.ID().String())

	hermes.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	return env.RenderWriter(hermes.Writer, name, data)
}

func (hermes *Hermes) snapshot() (*views.Environment, error) {
	if env := Snapshot(hermes.Context()); env != nil {
		return env, nil
	}
	if hermes.templates == nil {
		return nil, fmt.Errorf("no template store configured: %w", core.ErrInternal)
	}
	return hermes.templates.Snapshot()
}

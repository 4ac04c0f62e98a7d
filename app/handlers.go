package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prior-it/hermes/components"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/server"
	"github.com/prior-it/hermes/views"
)

const (
	creatureTemplate = "pokemon.html"
	viewRaw          = "raw"
)

var errMissingCreature = errors.New(`missing form field "pokemon"`)

// creatureForm is the body posted by tyler.html, either form encoded or through json-enc.
type creatureForm struct {
	Pokemon string `json:"pokemon" schema:"pokemon"`
	View    string `json:"view"    schema:"view"`
}

// ShowCreature renders the posted creature JSON, either as a record or pretty-printed with view=raw.
// The view can also be picked with the query string, e.g. `POST /tyler?view=raw`.
func ShowCreature(hermes *server.Hermes, _ *State) error {
	var form creatureForm
	if err := hermes.ParseBody(&form); err != nil {
		return fmt.Errorf("cannot parse creature form: %w", err)
	}
	if len(form.Pokemon) == 0 {
		return errors.Join(core.ErrInvalidInput, errMissingCreature)
	}
	if len(form.View) == 0 {
		form.View = hermes.GetQuery("view")
	}

	if form.View == viewRaw {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, []byte(form.Pokemon), "", "  "); err != nil {
			return errors.Join(core.ErrInvalidInput, err)
		}
		return hermes.RenderComponent(components.Preformatted(pretty.String()))
	}

	creature, err := core.ParseCreature([]byte(form.Pokemon))
	if err != nil {
		return fmt.Errorf("cannot read creature: %w", err)
	}
	hermes.LogField("creature_id", slog.Int64Value(int64(creature.ID)))
	return hermes.RenderTemplate(creatureTemplate, views.Context{"creature": creature})
}

func MouseEntered(hermes *server.Hermes, _ *State) error {
	hermes.Debug("Mouse entered", "remote", hermes.Request.RemoteAddr)
	hermes.StatusCode(http.StatusOK)
	return nil
}

// SubmitForm accepts any form encoded body.
func SubmitForm(hermes *server.Hermes, _ *State) error {
	form, err := hermes.ParseForm()
	if err != nil {
		return fmt.Errorf("cannot parse form: %w", err)
	}
	hermes.LogField("fields", slog.IntValue(len(form)))
	hermes.Text(http.StatusOK, "Success!")
	return nil
}

func Kill(hermes *server.Hermes, _ *State) error {
	return hermes.RawJSON(`{"kill": 7}`)
}

// ErrorHandler renders errors as an htmx fragment for htmx requests and as plain text otherwise.
func ErrorHandler(hermes *server.Hermes, err error) {
	hermes.AddHeader("Vary", "HX-Request")
	if !hermes.IsHTMX() {
		server.DefaultErrorHandler(hermes, err)
		return
	}
	code, msg := server.StatusFor(err)
	server.ReportError(hermes, code, err)
	hermes.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	hermes.StatusCode(code)
	if err := components.ErrorFragment(code, msg).Render(hermes.Context(), hermes.Writer); err != nil {
		hermes.Error("Could not render error fragment", "error", err)
	}
}

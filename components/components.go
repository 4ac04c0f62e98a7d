package components

import (
	"context"
	"embed"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/prior-it/hermes/server"
)

//go:generate curl -fsSL -o static/htmx.min.js https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js

//go:embed static/*
var EmbedStatic embed.FS

const (
	// HTMXScript is vendored with `go generate ./components` and checked in.
	HTMXScript    = "htmx.min.js"
	JSONEncScript = "json-enc.js"
)

// Serve the hermes static files using the specified server at the specified endpoint.
// Pages should import the following scripts in the HTML header:
//
//	<script src="/htmx"></script>
//	<script src="/htmx/json-enc"></script>
//
// When working on the scripts themselves, you can set the HERMES_STATIC_FILES environment
// variable to serve them from disk instead.
func ServeStaticFiles[state server.State](srv *server.Server[state], endpoint string) {
	srv.StaticFiles(
		endpoint,
		os.Getenv("HERMES_STATIC_FILES"),
		EmbedStatic,
	)
}

// ServeHTMX attaches the fixed htmx script routes.
func ServeHTMX[state server.State](srv *server.Server[state]) {
	srv.StaticFile("/htmx", EmbedStatic, HTMXScript)
	srv.StaticFile("/htmx/json-enc", EmbedStatic, JSONEncScript)
}

// Preformatted shows already formatted text, e.g. indented JSON, as an escaped <pre> block.
func Preformatted(text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<pre>"+templ.EscapeString(text)+"</pre>")
		return err
	})
}

// ErrorFragment is the htmx swap target shown when a request fails.
func ErrorFragment(code int, message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(
			w,
			`<div class="error" role="alert" data-status="%d"><strong>%s</strong> %s</div>`,
			code,
			templ.EscapeString(http.StatusText(code)),
			templ.EscapeString(message),
		)
		return err
	})
}

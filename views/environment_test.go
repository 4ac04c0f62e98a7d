package views_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/tests"
	"github.com/prior-it/hermes/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Run("ok: every regular file is a template rendering its literal content", func(t *testing.T) {
		files := map[string]string{
			"index.html": "<p>hi</p>",
			"mouse.html": "<div hx-post=\"/mouse_entered\">mouse</div>\n",
			"empty.txt":  "",
			"notes":      tests.Faker.Sentence(12),
		}
		env, err := views.Build(os.DirFS(tests.TemplateDir(t, files)))
		require.NoError(t, err)

		assert.Equal(t, len(files), env.Len())
		for name, content := range files {
			assert.True(t, env.Has(name), "%q should be a template", name)
			out, err := env.Render(name, nil)
			require.NoError(t, err)
			assert.Equal(t, content, out)
		}
	})

	t.Run("ok: sub-directories are skipped", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{
			"index.html":          "<p>hi</p>",
			"drafts/":             "",
			"partials/header.txt": "{% broken",
		})
		env, err := views.Build(os.DirFS(dir))
		require.NoError(t, err)

		out, err := env.Render("index.html", views.Context{})
		require.NoError(t, err)
		assert.Equal(t, "<p>hi</p>", out)

		assert.False(t, env.Has("drafts"))
		assert.False(t, env.Has("partials"))
		_, err = env.Render("drafts", nil)
		assert.ErrorIs(t, err, views.ErrTemplateNotFound)
		if diff := cmp.Diff([]string{"index.html"}, env.Names()); diff != "" {
			t.Errorf("template names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ok: files that are not text are skipped", func(t *testing.T) {
		fsys := fstest.MapFS{
			"index.html": &fstest.MapFile{Data: []byte("ok")},
			"logo.png":   &fstest.MapFile{Data: []byte{0x89, 'P', 'N', 'G', 0xff, 0xfe}},
		}
		env, err := views.Build(fsys)
		require.NoError(t, err)
		assert.True(t, env.Has("index.html"))
		assert.False(t, env.Has("logo.png"))
	})

	t.Run("ok: dangling symlinks are skipped", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{"index.html": "ok"})
		require.NoError(t, os.Symlink(filepath.Join(dir, "missing.html"), filepath.Join(dir, "gone.html")))

		env, err := views.Build(os.DirFS(dir))
		require.NoError(t, err)
		assert.Equal(t, []string{"index.html"}, env.Names())
	})

	t.Run("ok: empty directory builds an empty environment", func(t *testing.T) {
		env, err := views.Build(os.DirFS(t.TempDir()))
		require.NoError(t, err)
		assert.Zero(t, env.Len())
	})

	t.Run("ok: templates include each other by filename", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{
			"base.html":  "<main>{% block content %}{% endblock %}</main>",
			"page.html":  `{% extends "base.html" %}{% block content %}{% include "title.html" %}{% endblock %}`,
			"title.html": "<h1>{{ title }}</h1>",
		})
		env, err := views.Build(os.DirFS(dir))
		require.NoError(t, err)

		out, err := env.Render("page.html", views.Context{"title": "Hermes"})
		require.NoError(t, err)
		assert.Equal(t, "<main><h1>Hermes</h1></main>", out)
	})

	t.Run("err: invalid syntax fails the whole build", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{
			"index.html":  "<p>hi</p>",
			"broken.html": "{% if %}",
		})
		env, err := views.Build(os.DirFS(dir))
		assert.Nil(t, env)
		assert.ErrorIs(t, err, views.ErrParseTemplate)
		assert.ErrorIs(t, err, core.ErrInternal)
		assert.Contains(t, err.Error(), "broken.html")
	})

	t.Run("err: include of a file outside the directory", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{
			"index.html": `{% include "../secret.txt" %}`,
		})
		_, err := views.Build(os.DirFS(dir))
		assert.ErrorIs(t, err, views.ErrParseTemplate)
	})

	t.Run("err: missing directory", func(t *testing.T) {
		env, err := views.Build(os.DirFS(filepath.Join(t.TempDir(), "missing")))
		assert.Nil(t, env)
		assert.ErrorIs(t, err, views.ErrListDirectory)
		assert.ErrorIs(t, err, core.ErrInternal)
	})

	t.Run("ok: every build is a new snapshot", func(t *testing.T) {
		fsys := os.DirFS(tests.TemplateDir(t, map[string]string{"index.html": "x"}))
		first, err := views.Build(fsys)
		require.NoError(t, err)
		second, err := views.Build(fsys)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID(), second.ID())
	})
}

func TestRender(t *testing.T) {
	env, err := views.Build(fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<p>hi</p>")},
		"creature.html": &fstest.MapFile{Data: []byte(
			`{{ creature.name }}#{{ creature.id }}:{% for g in creature.game_indices %}[{{ g.version.name }}]{% endfor %}`,
		)},
		"escape.html":       &fstest.MapFile{Data: []byte(`{{ value }}|{{ value|sanitize }}`)},
		"json.html":         &fstest.MapFile{Data: []byte(`{{ data|tojson|safe }}`)},
		"nested.html":       &fstest.MapFile{Data: []byte(`{{ a.b.0.c }}{% if flag %}!{% endif %}`)},
		"undefined.html":    &fstest.MapFile{Data: []byte(`[{{ missing }}]`)},
		"not-callable.html": &fstest.MapFile{Data: []byte(`before {{ value() }}`)},
	})
	require.NoError(t, err)

	t.Run("ok: render is idempotent", func(t *testing.T) {
		first, err := env.Render("index.html", nil)
		require.NoError(t, err)
		second, err := env.Render("index.html", nil)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("ok: struct context uses json field names", func(t *testing.T) {
		creature, err := core.ParseCreature([]byte(tests.Pikachu()))
		require.NoError(t, err)

		out, err := env.Render("creature.html", views.Context{"creature": creature})
		require.NoError(t, err)
		assert.Equal(t, "pikachu#25:[red]", out)
	})

	t.Run("ok: nested maps and slices", func(t *testing.T) {
		out, err := env.Render("nested.html", map[string]any{
			"a":    map[string]any{"b": []any{map[string]any{"c": "deep"}}},
			"flag": true,
		})
		require.NoError(t, err)
		assert.Equal(t, "deep!", out)
	})

	t.Run("ok: values are escaped, sanitize keeps safe markup", func(t *testing.T) {
		out, err := env.Render("escape.html", views.Context{
			"value": `<b>bold</b><script>alert(1)</script>`,
		})
		require.NoError(t, err)
		assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt;&lt;script&gt;alert(1)&lt;/script&gt;|<b>bold</b>", out)
	})

	t.Run("ok: tojson", func(t *testing.T) {
		out, err := env.Render("json.html", views.Context{"data": map[string]any{"kill": 7}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"kill": 7}`, out)
	})

	t.Run("ok: undefined variables render empty", func(t *testing.T) {
		out, err := env.Render("undefined.html", nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", out)
	})

	t.Run("ok: render writer", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, env.RenderWriter(&buf, "index.html", nil))
		assert.Equal(t, "<p>hi</p>", buf.String())
	})

	t.Run("err: unknown template", func(t *testing.T) {
		out, err := env.Render("missing.html", nil)
		assert.Empty(t, out)
		assert.ErrorIs(t, err, views.ErrTemplateNotFound)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("err: execution failure writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		err := env.RenderWriter(&buf, "not-callable.html", views.Context{"value": "not a function"})
		assert.ErrorIs(t, err, views.ErrRenderTemplate)
		assert.Zero(t, buf.Len())
	})

	t.Run("err: context that is not an object", func(t *testing.T) {
		_, err := env.Render("index.html", []string{"not", "an", "object"})
		assert.ErrorIs(t, err, views.ErrInvalidContext)
	})

	t.Run("err: invalid context key", func(t *testing.T) {
		for _, key := range []string{"first-name", "creature.name", "", "two words"} {
			_, err := env.Render("index.html", views.Context{key: 1})
			assert.ErrorIs(t, err, views.ErrInvalidContext, "key %q", key)
			assert.NotErrorIs(t, err, views.ErrRenderTemplate, "key %q", key)
		}
	})

	t.Run("ok: nested keys are not identifiers", func(t *testing.T) {
		_, err := env.Render("index.html", views.Context{"first_name": map[string]any{"not-an-identifier": 1}})
		assert.NoError(t, err)
	})
}

func TestInspect(t *testing.T) {
	t.Run("ok: reports every entry", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{
			"a.html":  "ok",
			"b.html":  "{% for %}",
			"c.html":  "{{ unclosed",
			"drafts/": "",
		})
		entries, err := views.Inspect(os.DirFS(dir))
		require.NoError(t, err)

		statuses := map[string]views.Status{}
		for _, entry := range entries {
			statuses[entry.Name] = entry.Status
			if entry.Status == views.StatusInvalid {
				assert.ErrorIs(t, entry.Err, views.ErrParseTemplate)
				assert.False(t, entry.OK())
			}
		}
		assert.Equal(t, map[string]views.Status{
			"a.html": views.StatusLoaded,
			"b.html": views.StatusInvalid,
			"c.html": views.StatusInvalid,
			"drafts": views.StatusDirectory,
		}, statuses)
	})

	t.Run("err: missing directory", func(t *testing.T) {
		_, err := views.Inspect(os.DirFS(filepath.Join(t.TempDir(), "missing")))
		assert.ErrorIs(t, err, views.ErrListDirectory)
	})
}

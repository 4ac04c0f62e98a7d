package views_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prior-it/hermes/tests"
	"github.com/prior-it/hermes/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.DiscardHandler)

func TestStore(t *testing.T) {
	t.Run("ok: first build is active", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{"index.html": "<p>hi</p>"})
		store := views.NewStore(dir, views.WithLogger(quiet))

		require.NoError(t, store.Err())
		require.NotNil(t, store.Current())
		out, err := store.Render("index.html", nil)
		require.NoError(t, err)
		assert.Equal(t, "<p>hi</p>", out)
	})

	t.Run("ok: reload picks up changes", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{"index.html": "v1"})
		store := views.NewStore(dir, views.WithLogger(quiet))
		before := store.Current()

		tests.WriteFile(t, dir, "index.html", "v2")
		tests.WriteFile(t, dir, "extra.html", "new")
		env, err := store.Reload()
		require.NoError(t, err)

		assert.Same(t, env, store.Current())
		assert.NotEqual(t, before.ID(), env.ID())
		if diff := cmp.Diff([]string{"extra.html", "index.html"}, env.Names()); diff != "" {
			t.Errorf("template names mismatch (-want +got):\n%s", diff)
		}
		out, err := store.Render("index.html", nil)
		require.NoError(t, err)
		assert.Equal(t, "v2", out)

		// Old snapshots keep rendering what they were built from.
		out, err = before.Render("index.html", nil)
		require.NoError(t, err)
		assert.Equal(t, "v1", out)
	})

	t.Run("ok: failed reload keeps the last good snapshot", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{"index.html": "good"})
		store := views.NewStore(dir, views.WithLogger(quiet))
		good := store.Current()

		tests.WriteFile(t, dir, "index.html", "{% if %}")
		env, err := store.Reload()
		assert.Nil(t, env)
		assert.ErrorIs(t, err, views.ErrParseTemplate)
		assert.ErrorIs(t, store.Err(), views.ErrParseTemplate)

		assert.Same(t, good, store.Current())
		out, err := store.Render("index.html", nil)
		require.NoError(t, err)
		assert.Equal(t, "good", out)

		tests.WriteFile(t, dir, "index.html", "fixed")
		_, err = store.Reload()
		require.NoError(t, err)
		assert.NoError(t, store.Err())
	})

	t.Run("err: failed first build makes the store unavailable", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{"index.html": "{{ unclosed"})
		store := views.NewStore(dir, views.WithLogger(quiet))

		assert.Nil(t, store.Current())
		_, err := store.Render("index.html", nil)
		assert.ErrorIs(t, err, views.ErrUnavailable)
		assert.ErrorIs(t, err, views.ErrParseTemplate)

		tests.WriteFile(t, dir, "index.html", "recovered")
		_, err = store.Reload()
		require.NoError(t, err)
		out, err := store.Render("index.html", nil)
		require.NoError(t, err)
		assert.Equal(t, "recovered", out)
	})

	t.Run("err: missing directory", func(t *testing.T) {
		store := views.NewStore(filepath.Join(t.TempDir(), "missing"), views.WithLogger(quiet))
		assert.ErrorIs(t, store.Err(), views.ErrListDirectory)
		_, err := store.Render("index.html", nil)
		assert.ErrorIs(t, err, views.ErrUnavailable)
	})

	t.Run("ok: reload hooks see every attempt", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{"index.html": "ok"})
		var results []error
		store := views.NewStore(
			dir,
			views.WithLogger(quiet),
			views.WithReloadHook(func(_ *views.Environment, err error) {
				results = append(results, err)
			}),
		)
		tests.WriteFile(t, dir, "index.html", "{% endfor %}")
		_, _ = store.Reload()

		require.Len(t, results, 2)
		assert.NoError(t, results[0])
		assert.ErrorIs(t, results[1], views.ErrParseTemplate)
	})

	t.Run("ok: concurrent renders during reloads", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{"index.html": "stable"})
		store := views.NewStore(dir, views.WithLogger(quiet))

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 50 {
					out, err := store.Render("index.html", nil)
					assert.NoError(t, err)
					assert.Equal(t, "stable", out)
				}
			}()
		}
		for range 10 {
			_, err := store.Reload()
			assert.NoError(t, err)
		}
		wg.Wait()
	})
}

func TestWatch(t *testing.T) {
	t.Run("ok: writes trigger a reload", func(t *testing.T) {
		dir := tests.TemplateDir(t, map[string]string{"index.html": "before"})
		store := views.NewStore(dir, views.WithLogger(quiet), views.WithDebounce(10*time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- store.Watch(ctx) }()

		// Keep writing until the watcher has registered the directory.
		assert.Eventually(t, func() bool {
			tests.WriteFile(t, dir, "index.html", "after")
			out, err := store.Render("index.html", nil)
			return err == nil && out == "after"
		}, 5*time.Second, 50*time.Millisecond)

		require.NoError(t, os.Remove(filepath.Join(dir, "index.html")))
		assert.Eventually(t, func() bool {
			return !store.Current().Has("index.html")
		}, 5*time.Second, 50*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not stop after cancel")
		}
	})

	t.Run("err: missing directory", func(t *testing.T) {
		store := views.NewStore(filepath.Join(t.TempDir(), "missing"), views.WithLogger(quiet))
		assert.Error(t, store.Watch(context.Background()))
	})
}

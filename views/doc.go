/*
Package views loads a directory of Jinja-syntax templates into an immutable [Environment] and
renders them by name.

# Loading

[Build] scans a directory non-recursively. Sub-directories are skipped, entries that cannot be
read as UTF-8 text are skipped, every other file becomes a template whose name is its filename.
Templates are parsed with pongo2, so `{% include %}` and `{% extends %}` resolve against the
other files of the same directory. A template that fails to parse fails the whole build, and so
does a directory that cannot be listed.

# Serving

Long-running processes use a [Store]: it holds the current [Environment] behind an atomic
pointer so request handlers never rescan the disk and never block each other. The snapshot is
replaced by [Store.Reload], which is triggered explicitly or by [Store.Watch] whenever the
directory changes. A failed reload keeps the previous snapshot.

Basic example:

	store := views.NewStore("templates", views.WithLogger(logger))
	go store.Watch(ctx)

	html, err := store.Render("index.html", views.Context{"title": "Hello"})

# Errors

Every error returned by this package wraps one of the [core] sentinels: a missing template wraps
[core.ErrNotFound], everything else wraps [core.ErrInternal].
*/
package views

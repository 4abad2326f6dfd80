package render

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/staticbuilder/internal/content"
	"git.home.luguber.info/inful/staticbuilder/internal/export"
)

const layout = `<html lang="{{.Page.Lang}}"><title>{{.Page.Title}} | {{.Site.Title}}</title>` +
	`<a href="{{.Site.Home}}">home</a><a href="{{pageURL "about"}}">about</a>` +
	`{{range .Site.Languages}}<a href="{{langURL .}}">{{.}}</a>{{end}}` +
	`<link rel="stylesheet" href="{{url "css/site.css"}}">` +
	`<main>{{.Page.Content}}</main></html>`

func setup(t *testing.T, templates map[string]string) (*content.Store, *Renderer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/proj/content/home/default.en.md":   "---\ntitle: Welcome\n---\nSee [about](/about/).\n",
		"/proj/content/about/default.en.md":  "---\ntitle: About\n---\n# About\n",
		"/proj/content/about/default.de.md":  "---\ntitle: Über\n---\n# Über\n",
		"/proj/content/legal/imprint.en.md":  "Imprint\n",
		"/proj/content/broken/special.en.md": "x\n",
	}
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	for name, body := range templates {
		require.NoError(t, afero.WriteFile(fs, "/proj/templates/"+name, []byte(body), 0o644))
	}
	store, err := content.NewStore(fs, "/proj/content", "/proj", []string{"en", "de"}, "en")
	require.NoError(t, err)
	return store, New(fs, "/proj/templates", store, Site{Title: "Example", Languages: []string{"en", "de"}})
}

func TestRenderDefaultTemplate(t *testing.T) {
	store, r := setup(t, map[string]string{"default.html": layout})
	page, err := store.Page("about", "de")
	require.NoError(t, err)

	out, err := r.Render(context.Background(), page)
	require.NoError(t, err)

	m := export.Marker
	require.Contains(t, out, `<html lang="de">`)
	require.Contains(t, out, `<title>Über | Example</title>`)
	require.Contains(t, out, `<a href="`+m+`/de/">home</a>`)
	require.Contains(t, out, `<a href="`+m+`/de/about/">about</a>`)
	require.Contains(t, out, `<a href="`+m+`/about/">en</a>`)
	require.Contains(t, out, `<a href="`+m+`/de/about/">de</a>`)
	require.Contains(t, out, `href="`+m+`/css/site.css"`)
	require.Contains(t, out, "<h1>Über</h1>")
}

func TestRenderMarkdownLinksUseMarker(t *testing.T) {
	store, r := setup(t, map[string]string{"default.html": `{{.Page.Content}}`})
	page, err := store.Page("home", "en")
	require.NoError(t, err)

	out, err := r.Render(context.Background(), page)
	require.NoError(t, err)
	require.Contains(t, out, `href="`+export.Marker+`/about/"`)
}

func TestRenderPageTemplateWins(t *testing.T) {
	store, r := setup(t, map[string]string{
		"default.html": "default",
		"imprint.html": "imprint {{.Page.Title}}",
	})
	page, err := store.Page("legal", "en")
	require.NoError(t, err)

	out, err := r.Render(context.Background(), page)
	require.NoError(t, err)
	require.Equal(t, "imprint legal", out)
}

func TestRenderMissingTemplate(t *testing.T) {
	store, r := setup(t, nil)
	page, err := store.Page("broken", "en")
	require.NoError(t, err)

	_, err = r.Render(context.Background(), page)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no template")
}

func TestRenderTemplateError(t *testing.T) {
	store, r := setup(t, map[string]string{"default.html": `{{.Page.Nope}}`})
	page, err := store.Page("about", "en")
	require.NoError(t, err)

	_, err = r.Render(context.Background(), page)
	require.Error(t, err)
}

func TestRenderRewrittenEndToEnd(t *testing.T) {
	store, r := setup(t, map[string]string{"default.html": `<a href="{{pageURL "about"}}">a</a>`})
	page, err := store.Page("home", "en")
	require.NoError(t, err)

	out, err := r.Render(context.Background(), page)
	require.NoError(t, err)
	rw := export.Rewriter{BaseURL: export.RelativeBase}
	require.Equal(t, `<a href="./about/">a</a>`, rw.Rewrite(out, "/index.html"))
}

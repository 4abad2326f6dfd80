// Package render turns pages into HTML using html/template layouts and
// markdown bodies.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/staticbuilder/internal/export"
	"git.home.luguber.info/inful/staticbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/staticbuilder/internal/markdown"
)

// DefaultTemplate is used for pages without a template of their own.
const DefaultTemplate = "default"

// Source gives the renderer access to page documents and URLs.
type Source interface {
	Document(page *export.Page) (frontmatter.Document, error)
	URL(uri, lang string) string
}

// Site carries site-wide template data.
type Site struct {
	Title     string
	Languages []string
}

// Renderer implements export.Renderer. URLs exposed to templates are built
// against export.Marker.
type Renderer struct {
	fs     afero.Fs
	dir    string
	source Source
	site   Site
	md     *markdown.Converter

	mu    sync.Mutex
	cache map[string]*template.Template
}

var _ export.Renderer = (*Renderer)(nil)

// New returns a Renderer loading templates from dir.
func New(fs afero.Fs, dir string, source Source, site Site) *Renderer {
	return &Renderer{
		fs:     fs,
		dir:    dir,
		source: source,
		site:   site,
		md:     markdown.New(export.Marker),
		cache:  map[string]*template.Template{},
	}
}

// PageData is the page as seen by templates.
type PageData struct {
	URI     string
	Lang    string
	Title   string
	URL     string
	Fields  map[string]any
	Content template.HTML
}

// SiteData is the site as seen by templates.
type SiteData struct {
	Title     string
	Languages []string
	Home      string
}

type data struct {
	Page PageData
	Site SiteData
}

// Render renders page with its template, falling back to DefaultTemplate.
func (r *Renderer) Render(_ context.Context, page *export.Page) (string, error) {
	base, err := r.template(page.Template)
	if err != nil {
		return "", err
	}
	doc, err := r.source.Document(page)
	if err != nil {
		return "", err
	}
	body, err := r.md.Convert(doc.Body)
	if err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	tmpl, err := base.Clone()
	if err != nil {
		return "", err
	}
	tmpl.Funcs(r.funcs(page))

	d := data{
		Page: PageData{
			URI:     page.URI,
			Lang:    page.Lang,
			Title:   page.Title,
			URL:     markerURL(page.URL),
			Fields:  doc.Fields,
			Content: template.HTML(body), //nolint:gosec // markdown output
		},
		Site: SiteData{
			Title:     r.site.Title,
			Languages: r.site.Languages,
			Home:      markerURL(r.source.URL("", page.Lang)),
		},
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("execute template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func (r *Renderer) funcs(page *export.Page) template.FuncMap {
	return template.FuncMap{
		"url": func(p string) template.URL {
			return template.URL(markerURL("/" + strings.TrimLeft(p, "/"))) //nolint:gosec // site-relative
		},
		"pageURL": func(uri string) template.URL {
			return template.URL(markerURL(r.source.URL(uri, page.Lang))) //nolint:gosec // site-relative
		},
		"langURL": func(code string) template.URL {
			return template.URL(markerURL(r.source.URL(page.URI, code))) //nolint:gosec // site-relative
		},
	}
}

// placeholder funcs let templates parse before page-bound funcs are installed.
var placeholder = template.FuncMap{
	"url":     func(string) template.URL { return "" },
	"pageURL": func(string) template.URL { return "" },
	"langURL": func(string) template.URL { return "" },
}

func (r *Renderer) template(name string) (*template.Template, error) {
	if name == "" {
		name = DefaultTemplate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.cache[name]; ok {
		return t, nil
	}

	file := filepath.Join(r.dir, name+".html")
	data, err := afero.ReadFile(r.fs, file)
	if err != nil && name != DefaultTemplate {
		file = filepath.Join(r.dir, DefaultTemplate+".html")
		data, err = afero.ReadFile(r.fs, file)
	}
	if err != nil {
		return nil, fmt.Errorf("no template for %q in %s", name, r.dir)
	}
	t, err := template.New(filepath.Base(file)).Funcs(placeholder).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", file, err)
	}
	r.cache[name] = t
	return t, nil
}

func markerURL(p string) string {
	return export.Marker + p
}

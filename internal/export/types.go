package export

import (
	"context"
	"time"
)

// Marker is the synthetic base URL pages are rendered against. Links starting
// with it are internal and get rewritten after rendering.
const Marker = "__STATICBUILDER_URL_PREFIX__"

// TargetKind selects which pages a run covers.
type TargetKind int

const (
	TargetPage TargetKind = iota
	TargetPages
	TargetSite
)

func (k TargetKind) String() string {
	switch k {
	case TargetPage:
		return "page"
	case TargetPages:
		return "pages"
	default:
		return "site"
	}
}

// Target is the subject of a run. Only site targets flush the output
// directory and copy assets.
type Target struct {
	Kind TargetKind
	URIs []string
}

// SiteTarget covers every page of the index.
func SiteTarget() Target { return Target{Kind: TargetSite} }

// PageTarget covers a single page.
func PageTarget(uri string) Target { return Target{Kind: TargetPage, URIs: []string{uri}} }

// PagesTarget covers an explicit page collection.
func PagesTarget(uris ...string) Target { return Target{Kind: TargetPages, URIs: uris} }

// Page describes one language version of a page as seen by the exporter.
type Page struct {
	URI      string
	Lang     string // empty on single-language sites
	URL      string // site-relative URL path, "/" for the home page
	Title    string
	Template string
	// Source is the content file path relative to the project root.
	Source string
	// Exists is false when the page directory has no content file for Lang.
	Exists   bool
	Modified time.Time
}

// Attachment is a file stored next to a page's content file.
type Attachment struct {
	Name string
	Path string
}

// ContentStore is the exporter's view of the site content.
type ContentStore interface {
	// Index lists page URIs in site order.
	Index() ([]string, error)
	// Languages lists language codes in configured order; nil for single-language sites.
	Languages() []string
	// Page returns a fresh descriptor for uri in lang.
	Page(uri, lang string) (*Page, error)
	// Attachments lists the files stored with page.
	Attachments(page *Page) ([]Attachment, error)
}

// Renderer produces the text of a page. URLs in the text are expected to be
// built against Marker.
type Renderer interface {
	Render(ctx context.Context, page *Page) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, page *Page) (string, error)

func (f RendererFunc) Render(ctx context.Context, page *Page) (string, error) { return f(ctx, page) }

// AssetMapping copies From (project-relative or absolute) to To (output-relative).
type AssetMapping struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

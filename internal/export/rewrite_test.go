package export

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelativeURL(t *testing.T) {
	tests := []struct {
		from, to, want string
	}{
		{"/a/b/index.html", "/a/b/index.html", "./index.html"},
		{"/a/b/index.html", "/a/c/index.html", "./../c/index.html"},
		{"/index.html", "/a/index.html", "./a/index.html"},
		{"/about/index.html", "/", "./../"},
		{"/index.html", "/css/site.css", "./css/site.css"},
		{"/de/about/index.html", "/de/", "./../"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			require.Equal(t, tt.want, RelativeURL(tt.from, tt.to))
		})
	}
}

func TestRewriteRelative(t *testing.T) {
	r := Rewriter{BaseURL: RelativeBase}
	in := `<a href="` + Marker + `/a/c/index.html">c</a> <img src='` + Marker + `/img/x.png'>`
	out := r.Rewrite(in, "/a/b/index.html")
	require.Equal(t, `<a href="./../c/index.html">c</a> <img src='./../../img/x.png'>`, out)
}

func TestRewriteAbsolute(t *testing.T) {
	r := Rewriter{BaseURL: "https://example.com/"}
	in := `<a href="` + Marker + `/about/">About</a><link href=` + Marker + `/css/site.css>`
	out := r.Rewrite(in, "/index.html")
	require.Equal(t, `<a href="https://example.com/about/">About</a><link href=https://example.com/css/site.css>`, out)
}

func TestRewriteUgly(t *testing.T) {
	r := Rewriter{BaseURL: "https://example.com", UglyURLs: true, Extension: "/index.html"}

	require.Equal(t, `<a href="https://example.com/index.html">`, r.Rewrite(`<a href="`+Marker+`">`, "/index.html"))
	require.Equal(t, `<a href="https://example.com/index.html">`, r.Rewrite(`<a href="`+Marker+`/">`, "/index.html"))
	require.Equal(t, `<a href="https://example.com/about/index.html">`, r.Rewrite(`<a href="`+Marker+`/about">`, "/index.html"))
	// Paths with a trailing slash or an extension are left alone.
	require.Equal(t, `<a href="https://example.com/about/">`, r.Rewrite(`<a href="`+Marker+`/about/">`, "/index.html"))
	require.Equal(t, `<a href="https://example.com/site.css">`, r.Rewrite(`<a href="`+Marker+`/site.css">`, "/index.html"))
}

func TestRewriteStopsAtQuery(t *testing.T) {
	r := Rewriter{BaseURL: "https://example.com"}
	out := r.Rewrite(`<a href="`+Marker+`/search?q=1">`, "/index.html")
	require.Equal(t, `<a href="https://example.com/search?q=1">`, out)
}

func TestRewriteLeftoverMarkers(t *testing.T) {
	in := `<script>var base = "x` + Marker + `/";</script> ` + Marker
	require.Equal(t, `<script>var base = "x./";</script> ./`, Rewriter{}.Rewrite(in, "/index.html"))
	require.Equal(t,
		`<script>var base = "xhttps://example.com/";</script> https://example.com/`,
		Rewriter{BaseURL: "https://example.com"}.Rewrite(in, "/index.html"))
}

func TestRewriteSrcsetAndCSSURLs(t *testing.T) {
	m := Marker
	in := `<img srcset="` + m + `/a.jpg 1x, ` + m + `/b.jpg 2x">` +
		`<div style="background: url(` + m + `/c.css)">` +
		`<style>@import url('` + m + `/d.css');</style>`

	require.Equal(t,
		`<img srcset="./../../a.jpg 1x, ./../../b.jpg 2x">`+
			`<div style="background: url(./../../c.css)">`+
			`<style>@import url('./../../d.css');</style>`,
		Rewriter{}.Rewrite(in, "/de/about/index.html"))

	require.Equal(t,
		`<img srcset="https://example.com/a.jpg 1x, https://example.com/b.jpg 2x">`+
			`<div style="background: url(https://example.com/c.css)">`+
			`<style>@import url('https://example.com/d.css');</style>`,
		Rewriter{BaseURL: "https://example.com/"}.Rewrite(in, "/de/about/index.html"))
}

func TestRewriteLeavesExternalLinks(t *testing.T) {
	in := `<a href="https://other.org/page">x</a>`
	require.Equal(t, in, Rewriter{}.Rewrite(in, "/index.html"))
}

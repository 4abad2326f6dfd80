package export

import (
	"testing"

	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/staticbuilder/internal/errors"
	"git.home.luguber.info/inful/staticbuilder/internal/pathsafe"
)

func TestMapOutputPath(t *testing.T) {
	const root = "/srv/site/static"

	tests := []struct {
		name   string
		url    string
		suffix Suffix
		want   string
	}{
		{name: "home", url: "/", want: root + "/index.html"},
		{name: "home with marker", url: Marker + "/", want: root + "/index.html"},
		{name: "page", url: "/about/", want: root + "/about/index.html"},
		{name: "language page", url: "/de/about", want: root + "/de/about/index.html"},
		{name: "kept extension", url: "/feed.xml", want: root + "/feed.xml"},
		{name: "kept extension upper case", url: "/data/site.JSON", want: root + "/data/site.JSON"},
		{name: "flat suffix", url: "/about", suffix: Suffix{Extension: ".html"}, want: root + "/about.html"},
		{name: "custom keep list", url: "/feed.xml", suffix: Suffix{Keep: []string{"js"}}, want: root + "/feed.xml/index.html"},
		{name: "http like uri", url: "/http-guide/", want: root + "/http-guide/index.html"},
		{name: "dots collapse", url: "/a/.../b", want: root + "/a/b/index.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapOutputPath(root, tt.url, tt.suffix)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.True(t, pathsafe.Contains(root, got, pathsafe.Sep))
		})
	}
}

func TestMapOutputPathRejects(t *testing.T) {
	const root = "/srv/site/static"
	for _, url := range []string{"https://example.com/about", "http:foo", "/../../etc/passwd", "/a/../../x"} {
		t.Run(url, func(t *testing.T) {
			_, err := MapOutputPath(root, url, Suffix{})
			require.Error(t, err)
			require.True(t, derrors.IsCategory(err, derrors.CategoryOutputPath))
		})
	}
}

func TestNormalizeExtension(t *testing.T) {
	require.Equal(t, DefaultExtension, NormalizeExtension(""))
	require.Equal(t, ".html", NormalizeExtension("html"))
	require.Equal(t, ".htm", NormalizeExtension(".htm"))
	require.Equal(t, "/index.html", NormalizeExtension(`\index.html`))
}

func TestRelativeTo(t *testing.T) {
	require.Equal(t, "/about/index.html", RelativeTo("/srv/static", "/srv/static/about/index.html"))
	require.Equal(t, "/index.html", RelativeTo("/srv/static/", "/srv/static/index.html"))
}

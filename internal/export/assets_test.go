package export

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestCopyAssetFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/assets/robots.txt", []byte("User-agent: *"), 0o644))

	dry := CopyAsset(fs, "/out/static", "/proj", "assets/robots.txt", "robots.txt", false)
	require.Equal(t, StatusReady, dry.Status)
	require.Equal(t, AssetFile, dry.AssetType)
	require.Equal(t, "/out/static/robots.txt", dry.Dest)
	exists, err := afero.Exists(fs, "/out/static/robots.txt")
	require.NoError(t, err)
	require.False(t, exists)

	e := CopyAsset(fs, "/out/static", "/proj", "assets/robots.txt", "robots.txt", true)
	require.Equal(t, StatusDone, e.Status)
	data, err := afero.ReadFile(fs, "/out/static/robots.txt")
	require.NoError(t, err)
	require.Equal(t, "User-agent: *", string(data))
}

func TestCopyAssetDirReplacesDestination(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/theme/css/site.css", []byte("body{}"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/theme/js/app.js", []byte("1"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/out/static/theme/stale.txt", []byte("old"), 0o644))

	e := CopyAsset(fs, "/out/static", "/proj", "theme", "theme", true)
	require.Equal(t, StatusDone, e.Status)
	require.Equal(t, AssetDir, e.AssetType)

	for _, p := range []string{"/out/static/theme/css/site.css", "/out/static/theme/js/app.js"} {
		ok, err := afero.Exists(fs, p)
		require.NoError(t, err)
		require.True(t, ok, p)
	}
	ok, err := afero.Exists(fs, "/out/static/theme/stale.txt")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCopyAssetAbsoluteSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/shared/logo.svg", []byte("<svg/>"), 0o644))

	e := CopyAsset(fs, "/out/static", "/proj", "/shared/logo.svg", "img/logo.svg", true)
	require.Equal(t, StatusDone, e.Status)
	require.Equal(t, "/out/static/img/logo.svg", e.Dest)
}

func TestCopyAssetMissingSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := CopyAsset(fs, "/out/static", "/proj", "nope", "nope", true)
	require.Equal(t, StatusIgnore, e.Status)
	require.Equal(t, reasonSourceNotFound, e.Reason)
}

func TestCopyAssetTraversalNeverWrites(t *testing.T) {
	for _, to := range []string{"../escape.txt", "a/../../escape.txt", "", "/"} {
		t.Run(to, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/proj/file.txt", []byte("x"), 0o644))

			e := CopyAsset(fs, "/out/static", "/proj", "file.txt", to, true)
			require.Equal(t, StatusIgnore, e.Status)
			require.Equal(t, reasonEscapes, e.Reason)
			require.Empty(t, e.Dest)

			ok, err := afero.Exists(fs, "/out/escape.txt")
			require.NoError(t, err)
			require.False(t, ok)
			ok, err = afero.DirExists(fs, "/out/static")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestCopyAssetSourceContainingOutputIsIgnored(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/site/page.html", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/p/static/index.html", []byte("x"), 0o644))

	for _, from := range []string{".", "/p", "static", "/"} {
		t.Run(from, func(t *testing.T) {
			e := CopyAsset(fs, "/p/static", "/p", from, "site", true)
			require.Equal(t, StatusIgnore, e.Status)
			require.Equal(t, reasonSourceOverlaps, e.Reason)
		})
	}
	exists, err := afero.Exists(fs, "/p/static/site")
	require.NoError(t, err)
	require.False(t, exists)
}

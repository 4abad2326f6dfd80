package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const prefix = "__PREFIX__"

func TestConvert_PrefixesSiteRootLinks(t *testing.T) {
	out, err := New(prefix).Convert([]byte("[About](/about/) and ![logo](/img/logo.png)\n"))
	require.NoError(t, err)
	require.Contains(t, out, `href="__PREFIX__/about/"`)
	require.Contains(t, out, `src="__PREFIX__/img/logo.png"`)
}

func TestConvert_LeavesOtherLinks(t *testing.T) {
	out, err := New(prefix).Convert([]byte("[a](https://example.com) [b](other/page) [c](//cdn.example.com/x.js) [d](#top)\n"))
	require.NoError(t, err)
	require.NotContains(t, out, prefix)
	require.Contains(t, out, `href="https://example.com"`)
	require.Contains(t, out, `href="other/page"`)
}

func TestConvert_CodeIsNotRewritten(t *testing.T) {
	out, err := New(prefix).Convert([]byte("`[x](/inline)`\n\n```\n[y](/block)\n```\n"))
	require.NoError(t, err)
	require.NotContains(t, out, prefix)
}

func TestConvert_NoPrefix(t *testing.T) {
	out, err := New("").Convert([]byte("# Title\n\n[About](/about/)\n"))
	require.NoError(t, err)
	require.Contains(t, out, "<h1>Title</h1>")
	require.Contains(t, out, `href="/about/"`)
}

func TestConvert_GFMTables(t *testing.T) {
	out, err := New("").Convert([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)
	require.Contains(t, out, "<table>")
}

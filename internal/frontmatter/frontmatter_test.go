package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, err := Split(input)
	require.NoError(t, err)
	require.Nil(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter(t *testing.T) {
	fm, body, err := Split([]byte("---\ntitle: About\n---\n# About\n"))
	require.NoError(t, err)
	require.Equal(t, "title: About\n", string(fm))
	require.Equal(t, "# About\n", string(body))
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, err := Split([]byte("---\r\ntitle: About\r\n---\r\nbody\r\n"))
	require.NoError(t, err)
	require.Equal(t, "title: About\r\n", string(fm))
	require.Equal(t, "body\r\n", string(body))
}

func TestSplit_EmptyFrontmatter(t *testing.T) {
	fm, body, err := Split([]byte("---\n---\nbody"))
	require.NoError(t, err)
	require.Empty(t, fm)
	require.Equal(t, "body", string(body))
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.Equal(t, "title: x\n", string(fm))
	require.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: Über uns\nweight: 3\ntags: [a]\n---\nText\n"))
	require.NoError(t, err)
	require.Equal(t, "Über uns", doc.String("title"))
	require.Equal(t, "3", doc.String("weight"))
	require.Empty(t, doc.String("tags"))
	require.Empty(t, doc.String("missing"))
	require.Equal(t, "Text\n", string(doc.Body))
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [unclosed\n---\n"))
	require.Error(t, err)
}

func TestParse_NoFrontmatter(t *testing.T) {
	doc, err := Parse([]byte("plain"))
	require.NoError(t, err)
	require.Empty(t, doc.Fields)
	require.NotNil(t, doc.Fields)
}

package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BuildError
		expected string
	}{
		{
			name:     "error without cause",
			err:      ConfigurationError("output directory is absolute"),
			expected: "config (fatal): output directory is absolute",
		},
		{
			name:     "error with cause",
			err:      RenderError("content/about/default.md", fmt.Errorf("template missing")),
			expected: "render (error): render failed: template missing",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestBuildError_UnwrapAndCategory(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := fmt.Errorf("write page: %w", FileSystemError("write", cause))

	require.True(t, stdErrors.Is(err, cause))
	require.True(t, IsCategory(err, CategoryFileSystem))
	require.False(t, IsCategory(err, CategoryRender))
	require.Equal(t, CategoryFileSystem, GetCategory(err))
	require.Equal(t, CategoryInternal, GetCategory(stdErrors.New("plain")))
}

func TestReason(t *testing.T) {
	require.Equal(t, "", Reason(nil))
	require.Equal(t, "plain", Reason(stdErrors.New("plain")))
	require.Equal(t, "render failed: boom", Reason(RenderError("x", stdErrors.New("boom"))))
	require.Equal(t, "output path goes outside of the output directory", Reason(OutputPathError("/etc")))
}

func TestOutputPathError_Context(t *testing.T) {
	err := OutputPathError("/tmp/escape/index.html")
	require.Equal(t, "/tmp/escape/index.html", err.Context["path"])
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	require.Equal(t, 0, a.ExitCodeFor(nil))
	require.Equal(t, 1, a.ExitCodeFor(stdErrors.New("x")))
	require.Equal(t, 7, a.ExitCodeFor(ConfigurationError("bad")))
	require.Equal(t, 2, a.ExitCodeFor(ValidationError("bad")))
	require.Equal(t, 11, a.ExitCodeFor(RenderError("p", stdErrors.New("x"))))
	require.Equal(t, 12, a.ExitCodeFor(FatalRuntimeFailure("p", "boom")))
}

func TestCLIErrorAdapter_FormatAndLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	a := NewCLIErrorAdapter(false, logger)

	require.Equal(t, "bad output", a.FormatError(ConfigurationError("bad output")))
	require.Equal(t, "Error: x", a.FormatError(stdErrors.New("x")))

	a.Log(ConfigurationError("bad output").WithContext("dir", "/srv"))
	require.Contains(t, buf.String(), "category=config")
	require.Contains(t, buf.String(), "dir=/srv")
}

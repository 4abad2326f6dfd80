package export

import (
	"path"
	"strings"

	derrors "git.home.luguber.info/inful/staticbuilder/internal/errors"
	"git.home.luguber.info/inful/staticbuilder/internal/pathsafe"
)

// DefaultExtension is appended to page URLs that carry no kept extension.
const DefaultExtension = "/index.html"

// DefaultKeepExtensions are URL extensions written as-is.
var DefaultKeepExtensions = []string{"js", "json", "css", "txt", "svg", "xml", "atom", "rss"}

// Suffix controls how page URLs become file names.
type Suffix struct {
	// Extension is appended to URLs without a kept extension, e.g. "/index.html" or ".html".
	Extension string
	// Keep lists extensions (without dot) of URLs that are already file names.
	Keep []string
}

// NormalizeExtension cleans a configured extension: backslashes become
// slashes and values that start with neither "/" nor "." get a leading dot.
// An empty value means DefaultExtension.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(strings.ReplaceAll(ext, `\`, "/"))
	if ext == "" {
		return DefaultExtension
	}
	if strings.HasPrefix(ext, "/") || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

func (s Suffix) extension() string {
	if s.Extension == "" {
		return DefaultExtension
	}
	return s.Extension
}

func (s Suffix) keeps(urlPath string) bool {
	ext := strings.TrimPrefix(path.Ext(urlPath), ".")
	if ext == "" {
		return false
	}
	keep := s.Keep
	if keep == nil {
		keep = DefaultKeepExtensions
	}
	for _, k := range keep {
		if strings.EqualFold(strings.TrimPrefix(k, "."), ext) {
			return true
		}
	}
	return false
}

// MapOutputPath returns the file a page with URL path urlPath is written to.
// The result is normalized and always inside outputRoot; anything else is an
// OutputPathError.
func MapOutputPath(outputRoot, urlPath string, suffix Suffix) (string, error) {
	lower := strings.ToLower(urlPath)
	if strings.Contains(lower, "://") || strings.HasPrefix(lower, "http:") || strings.HasPrefix(lower, "https:") {
		return "", derrors.OutputPathError(urlPath).WithContext("reason", "url is not site-relative")
	}
	rel := strings.Trim(strings.ReplaceAll(urlPath, Marker, ""), "/")

	var file string
	switch {
	case rel == "":
		file = pathsafe.Join(pathsafe.Sep, outputRoot, "index.html")
	case suffix.keeps(rel):
		file = pathsafe.Join(pathsafe.Sep, outputRoot, rel)
	default:
		file = pathsafe.Join(pathsafe.Sep, outputRoot, rel) + suffix.extension()
	}

	normalized := pathsafe.Normalize(file, pathsafe.Sep)
	if !pathsafe.Contains(outputRoot, normalized, pathsafe.Sep) {
		return "", derrors.OutputPathError(file)
	}
	return normalized, nil
}

// RelativeTo returns file relative to root with a leading separator, as used
// for the link rewriting source path.
func RelativeTo(root, file string) string {
	root = strings.TrimSuffix(pathsafe.Normalize(root, pathsafe.Sep), pathsafe.Sep)
	return "/" + strings.TrimPrefix(strings.TrimPrefix(pathsafe.Normalize(file, pathsafe.Sep), root), "/")
}

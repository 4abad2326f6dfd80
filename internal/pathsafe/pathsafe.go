// Package pathsafe normalizes slash-separated paths and decides whether a path
// stays inside a root directory. Every write performed by the exporter goes
// through Contains first.
package pathsafe

import (
	"regexp"
	"strings"
)

// Sep is the separator used for all output paths.
const Sep = "/"

var (
	slashRun    = regexp.MustCompile(`[/\\]+`)
	dotRun      = regexp.MustCompile(`\.{2,}`)
	absolutePfx = regexp.MustCompile(`(?i)^([/\\]|[a-z]:)`)
)

// Normalize rewrites path using sep as the only separator and resolves "."
// and ".." segments left to right. A ".." with nothing left to pop is dropped,
// runs of dots inside a segment collapse to a single dot, and a leading
// separator is kept.
func Normalize(path, sep string) string {
	if sep == "" {
		sep = Sep
	}
	path = slashRun.ReplaceAllString(path, sep)
	if path == "" {
		return ""
	}

	out := make([]string, 0, strings.Count(path, sep)+1)
	for i, seg := range strings.Split(path, sep) {
		if seg == ".." && i > 0 && len(out) > 0 {
			out = out[:len(out)-1]
		}
		seg = dotRun.ReplaceAllString(seg, ".")
		if seg == "" || seg == "." {
			continue
		}
		out = append(out, seg)
	}

	lead := ""
	if strings.HasPrefix(path, sep) {
		lead = sep
	}
	return lead + strings.Join(out, sep)
}

// IsAbsolute reports whether path starts with a separator or a drive letter.
func IsAbsolute(path string) bool {
	return absolutePfx.MatchString(path)
}

// Contains reports whether candidate resolves to a strict descendant of root.
// Candidates carrying an unresolved ".." segment are always rejected.
func Contains(root, candidate, sep string) bool {
	if sep == "" {
		sep = Sep
	}
	if HasTraversal(candidate) {
		return false
	}
	base := Normalize(root, sep)
	if base == "" {
		return false
	}
	return strings.HasPrefix(Normalize(candidate, sep), strings.TrimSuffix(base, sep)+sep)
}

// HasTraversal reports whether path has a ".." segment.
func HasTraversal(path string) bool {
	for _, seg := range slashRun.Split(path, -1) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// Join concatenates parts with sep without resolving anything; callers pass
// the result to Normalize or Contains.
func Join(sep string, parts ...string) string {
	if sep == "" {
		sep = Sep
	}
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

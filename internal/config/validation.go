package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/language"

	derrors "git.home.luguber.info/inful/staticbuilder/internal/errors"
	"git.home.luguber.info/inful/staticbuilder/internal/export"
	"git.home.luguber.info/inful/staticbuilder/internal/pathsafe"
)

// reservedSegment must appear in the output directory path.
const reservedSegment = "static"

// Validate checks a defaulted configuration. Every failure is a
// ConfigurationError.
func Validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateOutputDir,
		validateBaseURL,
		validateLanguages,
		validatePatterns,
		validateSchedule,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

// validateOutputDir rejects output directories whose flush could destroy
// project data.
func validateOutputDir(cfg *Config) error {
	if pathsafe.IsAbsolute(cfg.OutputDir) {
		return derrors.ConfigurationErrorf("output_dir must be relative to the project root: %q", cfg.OutputDir)
	}
	project := filepath.ToSlash(cfg.ProjectPath())
	output := filepath.ToSlash(cfg.OutputRoot())
	if !pathsafe.Contains(project, output, pathsafe.Sep) || pathsafe.HasTraversal(cfg.OutputDir) {
		return derrors.ConfigurationErrorf("output_dir %q resolves outside of the project root", cfg.OutputDir)
	}

	hasStatic := false
	for _, seg := range strings.Split(pathsafe.Normalize(cfg.OutputDir, pathsafe.Sep), pathsafe.Sep) {
		if seg == reservedSegment {
			hasStatic = true
			break
		}
	}
	if !hasStatic {
		return derrors.ConfigurationErrorf("output_dir %q must be or be nested under a directory named %q", cfg.OutputDir, reservedSegment)
	}

	protected := map[string]string{
		"content_dir":   filepath.ToSlash(cfg.ContentRoot()),
		"templates_dir": filepath.ToSlash(cfg.TemplatesRoot()),
	}
	for name, dir := range protected {
		if overlaps(output, dir) {
			return derrors.ConfigurationErrorf("output_dir %q collides with %s", cfg.OutputDir, name)
		}
	}
	for _, a := range cfg.Assets {
		src := a.From
		if !pathsafe.IsAbsolute(src) {
			src = pathsafe.Join(pathsafe.Sep, project, src)
		}
		src = pathsafe.Normalize(src, pathsafe.Sep)
		if overlaps(output, src) {
			return derrors.ConfigurationErrorf("output_dir %q overlaps asset source %q", cfg.OutputDir, a.From)
		}
	}
	return nil
}

func overlaps(a, b string) bool {
	return a == b || pathsafe.Contains(a, b, pathsafe.Sep) || pathsafe.Contains(b, a, pathsafe.Sep)
}

func validateBaseURL(cfg *Config) error {
	if export.IsRelativeBase(cfg.BaseURL) {
		return nil
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return derrors.ConfigurationErrorf("base_url must be %q or an absolute http(s) URL: %q", export.RelativeBase, cfg.BaseURL)
	}
	return nil
}

func validateLanguages(cfg *Config) error {
	seen := map[string]bool{}
	defaults := 0
	for _, l := range cfg.Languages {
		if l.Code == "" {
			return derrors.ConfigurationError("language without code")
		}
		if _, err := language.Parse(l.Code); err != nil {
			return derrors.ConfigurationErrorf("invalid language code %q: %v", l.Code, err)
		}
		if strings.ContainsAny(l.Code, "/\\.") {
			return derrors.ConfigurationErrorf("language code %q cannot be used in paths", l.Code)
		}
		if seen[l.Code] {
			return derrors.ConfigurationErrorf("duplicate language %q", l.Code)
		}
		seen[l.Code] = true
		if l.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return derrors.ConfigurationError("more than one default language")
	}
	return nil
}

func validatePatterns(cfg *Config) error {
	for _, p := range cfg.WithFiles.Patterns {
		if !doublestar.ValidatePattern(p) {
			return derrors.ConfigurationErrorf("invalid with_files pattern %q", p)
		}
	}
	for _, r := range cfg.Filter.ExcludeURIs {
		if !doublestar.ValidatePattern(r.Pattern) {
			return derrors.ConfigurationErrorf("invalid exclude_uris pattern %q", r.Pattern)
		}
	}
	for _, a := range cfg.Assets {
		if a.From == "" {
			return derrors.ConfigurationError("asset without source")
		}
	}
	return nil
}

func validateSchedule(cfg *Config) error {
	s := cfg.Schedule
	if s.Interval < 0 {
		return derrors.ConfigurationErrorf("schedule interval must be positive: %s", s.Interval)
	}
	if s.Interval > 0 && s.Cron != "" {
		return derrors.ConfigurationError("schedule takes either interval or cron, not both")
	}
	return nil
}

// Scheduled reports whether a schedule is configured.
func (s ScheduleConfig) Scheduled() bool {
	return s.Interval > 0 || s.Cron != ""
}

// String describes the schedule for logs.
func (s ScheduleConfig) String() string {
	switch {
	case s.Cron != "":
		return "cron " + s.Cron
	case s.Interval > 0:
		return fmt.Sprintf("every %s", s.Interval)
	default:
		return "unscheduled"
	}
}

// Package config loads the YAML configuration of a static export.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/staticbuilder/internal/export"
)

// DefaultFileName is the configuration file looked up when none is given.
const DefaultFileName = "staticbuilder.yaml"

// Config is the application configuration.
type Config struct {
	ProjectRoot    string          `yaml:"project_root"`
	OutputDir      string          `yaml:"output_dir"`
	BaseURL        string          `yaml:"base_url"`
	ContentDir     string          `yaml:"content_dir"`
	TemplatesDir   string          `yaml:"templates_dir"`
	SiteTitle      string          `yaml:"site_title"`
	Languages      []Language      `yaml:"languages,omitempty"`
	Assets         []Asset         `yaml:"assets,omitempty"`
	Extension      string          `yaml:"extension"`
	KeepExtensions []string        `yaml:"keep_extensions"`
	UglyURLs       bool            `yaml:"ugly_urls"`
	WithFiles      WithFilesConfig `yaml:"with_files"`
	Filter         FilterConfig    `yaml:"filter"`
	CatchErrors    *bool           `yaml:"catch_errors,omitempty"`
	ReportDir      string          `yaml:"report_dir"`
	History        HistoryConfig   `yaml:"history"`
	Notify         NotifyConfig    `yaml:"notify"`
	Metrics        MetricsConfig   `yaml:"metrics"`
	Schedule       ScheduleConfig  `yaml:"schedule"`

	// base is the directory relative paths are resolved against (the
	// directory of the configuration file).
	base string
}

// Language is one site language.
type Language struct {
	Code    string `yaml:"code"`
	Default bool   `yaml:"default,omitempty"`
}

// Asset maps a project file or directory into the output tree. In YAML it
// is either a scalar (same path on both sides) or a {from, to} mapping.
type Asset export.AssetMapping

// UnmarshalYAML accepts both asset forms.
func (a *Asset) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		a.From, a.To = node.Value, node.Value
		return nil
	}
	var m struct {
		From string `yaml:"from"`
		To   string `yaml:"to"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}
	if m.To == "" {
		m.To = m.From
	}
	a.From, a.To = m.From, m.To
	return nil
}

// WithFilesConfig controls copying of attached files.
type WithFilesConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Patterns []string `yaml:"patterns,omitempty"`
}

// FilterConfig configures the page filter.
type FilterConfig struct {
	ModulePrefix     string                `yaml:"module_prefix"`
	ExcludeTemplates []export.TemplateRule `yaml:"exclude_templates,omitempty"`
	ExcludeURIs      []export.URIRule      `yaml:"exclude_uris,omitempty"`
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// NotifyConfig configures run event publishing.
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the Prometheus endpoint of the schedule command.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// ScheduleConfig configures periodic rebuilds. Interval and Cron are
// mutually exclusive.
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval,omitempty"`
	Cron     string        `yaml:"cron,omitempty"`
}

// Load reads, defaults and validates the configuration at configPath.
// .env and .env.local next to the file are loaded first without overriding
// the process environment, then ${VAR} references are expanded.
func Load(configPath string) (*Config, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}
	loadEnvFiles(filepath.Dir(abs))

	data, err := os.ReadFile(abs) //nolint:gosec // user supplied config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes YAML data with relative paths anchored at base, then applies
// defaults and validates.
func Parse(data []byte, base string) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.base = base

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CatchErrorsEnabled reports whether the fatal guard is armed during writes.
func (c *Config) CatchErrorsEnabled() bool {
	return c.CatchErrors == nil || *c.CatchErrors
}

// ProjectPath returns the absolute project root.
func (c *Config) ProjectPath() string {
	return c.resolve(c.base, c.ProjectRoot)
}

// OutputRoot returns the absolute output directory.
func (c *Config) OutputRoot() string { return c.resolve(c.ProjectPath(), c.OutputDir) }

// ContentRoot returns the absolute content directory.
func (c *Config) ContentRoot() string { return c.resolve(c.ProjectPath(), c.ContentDir) }

// TemplatesRoot returns the absolute templates directory.
func (c *Config) TemplatesRoot() string { return c.resolve(c.ProjectPath(), c.TemplatesDir) }

// ReportRoot returns the absolute report directory.
func (c *Config) ReportRoot() string { return c.resolve(c.ProjectPath(), c.ReportDir) }

// HistoryPath returns the absolute history database path.
func (c *Config) HistoryPath() string { return c.resolve(c.ProjectPath(), c.History.Path) }

// LockPath returns the advisory lock file guarding the output directory.
func (c *Config) LockPath() string { return c.OutputRoot() + ".lock" }

func (c *Config) resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if base == "" {
		base = "."
	}
	abs, err := filepath.Abs(filepath.Join(base, p))
	if err != nil {
		return filepath.Join(base, p)
	}
	return abs
}

// LanguageCodes returns the language codes in configured order.
func (c *Config) LanguageCodes() []string {
	if len(c.Languages) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		out = append(out, l.Code)
	}
	return out
}

// DefaultLanguage returns the code of the default language, "" on
// single-language sites.
func (c *Config) DefaultLanguage() string {
	for _, l := range c.Languages {
		if l.Default {
			return l.Code
		}
	}
	if len(c.Languages) > 0 {
		return c.Languages[0].Code
	}
	return ""
}

// ExportOptions converts the configuration into builder options.
func (c *Config) ExportOptions() export.Options {
	assets := make([]export.AssetMapping, 0, len(c.Assets))
	for _, a := range c.Assets {
		assets = append(assets, export.AssetMapping(a))
	}
	return export.Options{
		OutputRoot:   filepath.ToSlash(c.OutputRoot()),
		ProjectRoot:  filepath.ToSlash(c.ProjectPath()),
		BaseURL:      c.BaseURL,
		UglyURLs:     c.UglyURLs,
		Suffix:       export.Suffix{Extension: c.Extension, Keep: c.KeepExtensions},
		Assets:       assets,
		Filter:       c.PageFilter(),
		WithFiles:    c.WithFiles.Enabled,
		FilePatterns: c.WithFiles.Patterns,
		CatchErrors:  c.CatchErrorsEnabled(),
	}
}

// PageFilter returns the rule filter described by the filter section.
func (c *Config) PageFilter() export.Filter {
	return export.RuleFilter{
		Templates: c.Filter.ExcludeTemplates,
		URIs:      c.Filter.ExcludeURIs,
		Next:      export.DefaultFilter{ModulePrefix: c.Filter.ModulePrefix},
	}
}

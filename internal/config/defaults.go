package config

import (
	"git.home.luguber.info/inful/staticbuilder/internal/export"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// PathDefaultApplier fills in project layout paths.
type PathDefaultApplier struct{}

func (PathDefaultApplier) Domain() string { return "paths" }

func (PathDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = "."
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "static"
	}
	if cfg.ContentDir == "" {
		cfg.ContentDir = "content"
	}
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = "templates"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = ".staticbuilder/reports"
	}
	if cfg.History.Path == "" {
		cfg.History.Path = ".staticbuilder/history.db"
	}
	return nil
}

// SiteDefaultApplier fills in URL and output naming defaults.
type SiteDefaultApplier struct{}

func (SiteDefaultApplier) Domain() string { return "site" }

func (SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.BaseURL == "" {
		cfg.BaseURL = export.RelativeBase
	}
	if cfg.SiteTitle == "" {
		cfg.SiteTitle = "Static Site"
	}
	cfg.Extension = export.NormalizeExtension(cfg.Extension)
	if cfg.KeepExtensions == nil {
		cfg.KeepExtensions = append([]string(nil), export.DefaultKeepExtensions...)
	}
	if cfg.Filter.ModulePrefix == "" {
		cfg.Filter.ModulePrefix = export.DefaultModulePrefix
	}
	if cfg.CatchErrors == nil {
		enabled := true
		cfg.CatchErrors = &enabled
	}
	return nil
}

// NotifyDefaultApplier fills in the NATS connection defaults.
type NotifyDefaultApplier struct{}

func (NotifyDefaultApplier) Domain() string { return "notify" }

func (NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.NATSURL == "" {
		cfg.Notify.NATSURL = "nats://127.0.0.1:4222"
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "staticbuilder.runs"
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{PathDefaultApplier{}, SiteDefaultApplier{}, NotifyDefaultApplier{}}
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

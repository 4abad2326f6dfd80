package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/staticbuilder/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"${config_file}"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text|json)" enum:"text,json" default:"text"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Export the whole site"`
	Page     PageCmd     `cmd:"" help:"Export one or more pages by URI"`
	Schedule ScheduleCmd `cmd:"" help:"Export the site periodically"`
	History  HistoryCmd  `cmd:"" help:"List recorded export runs"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// Vars are the kong variables the CLI definition refers to.
func Vars() kong.Vars {
	return kong.Vars{"config_file": config.DefaultFileName}
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(c.Verbose, c.LogFormat))
	return nil
}

func newLogger(verbose bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/staticbuilder/internal/config"
	"git.home.luguber.info/inful/staticbuilder/internal/export"
	"git.home.luguber.info/inful/staticbuilder/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	DryRun bool `name:"dry-run" help:"Report what a build would do without writing anything"`
	Quiet  bool `short:"q" help:"Do not print the entry table"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	return runExport(root.Config, export.SiteTarget(), !b.DryRun, b.Quiet, g)
}

// runExport loads the configuration and runs one export of target.
func runExport(configPath string, target export.Target, write, quiet bool, g *Global) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var out io.Writer = os.Stdout
	if quiet {
		out = nil
	}
	app, err := NewApp(ctx, cfg, afero.NewOsFs(), metrics.NoopRecorder{}, out, g.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	_, err = app.Export(ctx, target, write)
	return err
}

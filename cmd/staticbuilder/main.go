package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/staticbuilder/cmd/staticbuilder/commands"
	derrors "git.home.luguber.info/inful/staticbuilder/internal/errors"
	"git.home.luguber.info/inful/staticbuilder/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("staticbuilder"),
		kong.Description("Export a content directory into a tree of static files."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		commands.Vars(),
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli)
	if err == nil {
		return
	}
	adapter := derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	adapter.Log(err)
	fmt.Fprintln(os.Stderr, adapter.FormatError(err))
	os.Exit(adapter.ExitCodeFor(err))
}

package commands

import (
	"git.home.luguber.info/inful/staticbuilder/internal/export"
)

// PageCmd implements the 'page' command.
type PageCmd struct {
	URIs   []string `arg:"" name:"uri" help:"Page URIs to export, e.g. about or about/team"`
	DryRun bool     `name:"dry-run" help:"Report what would be written without writing anything"`
	Quiet  bool     `short:"q" help:"Do not print the entry table"`
}

func (p *PageCmd) Run(g *Global, root *CLI) error {
	target := export.PagesTarget(p.URIs...)
	if len(p.URIs) == 1 {
		target = export.PageTarget(p.URIs[0])
	}
	return runExport(root.Config, target, !p.DryRun, p.Quiet, g)
}

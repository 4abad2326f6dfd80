package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/staticbuilder/internal/config"
	derrors "git.home.luguber.info/inful/staticbuilder/internal/errors"
	"git.home.luguber.info/inful/staticbuilder/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `default:"20" help:"Number of runs to list"`
	RunID string `arg:"" optional:"" name:"run" help:"Run id whose entries to show"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return derrors.ConfigurationError("run history is disabled: set history.enabled in the configuration")
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if h.RunID != "" {
		entries, err := store.Entries(ctx, h.RunID)
		if errors.Is(err, history.ErrRunNotFound) {
			return derrors.ValidationError(fmt.Sprintf("unknown run %q", h.RunID))
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "KIND\tSTATUS\tLANG\tSOURCE\tDESTINATION\tSIZE\tREASON")
		for _, e := range entries {
			size := "-"
			if e.Size != nil {
				size = fmt.Sprint(*e.Size)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.Kind, e.Status, e.Lang, e.Source, e.Dest, size, e.Reason)
		}
		return tw.Flush()
	}

	runs, err := store.Runs(ctx, h.Limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "RUN\tSTARTED\tMODE\tTARGET\tOUTCOME\tENTRIES\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Started.Format(time.RFC3339), r.Mode, r.Target, r.Outcome, r.Entries, r.Finished.Sub(r.Started).Round(time.Millisecond))
	}
	return tw.Flush()
}

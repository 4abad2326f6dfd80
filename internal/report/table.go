package report

import (
	"fmt"
	"io"
	"path"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/staticbuilder/internal/export"
)

// WriteTable prints one aligned row per entry. Destinations are shown
// relative to the parent of outputRoot so that the output directory name
// stays visible.
func WriteTable(w io.Writer, res *export.Result, outputRoot string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "KIND\tSTATUS\tSOURCE\tLANG\tDEST\tSIZE\tREASON"); err != nil {
		return err
	}
	parent := strings.TrimSuffix(path.Dir(strings.TrimSuffix(outputRoot, "/")), "/") + "/"
	for _, e := range res.Entries {
		dest := strings.TrimPrefix(e.Dest, parent)
		size := "-"
		if e.Size != nil {
			size = fmt.Sprintf("%d", *e.Size)
		}
		if e.FileCount > 0 {
			size += fmt.Sprintf(" +%d files", e.FileCount)
		} else if len(e.Files) > 0 {
			size += fmt.Sprintf(" +%d files", len(e.Files))
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Kind, e.Status, e.Source, orDash(e.Lang), orDash(dest), size, e.Reason); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	r := New(res)
	_, err := fmt.Fprintln(w, r.Summary())
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

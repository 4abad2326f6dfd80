package export

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"git.home.luguber.info/inful/staticbuilder/internal/logfields"
)

// FatalReport is the best-effort account of a run aborted by an
// unrecoverable failure.
type FatalReport struct {
	RunID string `json:"run_id"`
	// InFlight is the source of the page being rendered when the failure hit.
	InFlight string  `json:"in_flight"`
	Cause    string  `json:"cause"`
	Stack    string  `json:"stack,omitempty"`
	Entries  []Entry `json:"entries"`
}

// FatalHandler receives the report of an aborted run.
type FatalHandler interface {
	HandleFatal(ctx context.Context, report FatalReport)
}

// FatalHandlerFunc adapts a function to FatalHandler.
type FatalHandlerFunc func(ctx context.Context, report FatalReport)

func (f FatalHandlerFunc) HandleFatal(ctx context.Context, report FatalReport) { f(ctx, report) }

// LogFatalHandler logs the report.
type LogFatalHandler struct {
	Logger *slog.Logger
}

func (h LogFatalHandler) HandleFatal(ctx context.Context, report FatalReport) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(ctx, "Export aborted",
		logfields.RunID(report.RunID),
		logfields.Page(report.InFlight),
		slog.String("cause", report.Cause),
		slog.Int("entries", len(report.Entries)))
}

// guard captures panics escaping the write pass. It is armed right before
// rendering starts and disarmed once the pass completes; a disarmed guard
// lets panics through.
type guard struct {
	armed   bool
	handler FatalHandler
}

func (g *guard) arm()    { g.armed = true }
func (g *guard) disarm() { g.armed = false }

// capture must be deferred directly by the write pass so that recover sees
// the panic. It records a FatalReport on r and hands it to the handler.
func (g *guard) capture(ctx context.Context, r *run) {
	if !g.armed {
		return
	}
	v := recover()
	if v == nil {
		return
	}
	g.disarm()
	report := &FatalReport{
		RunID:    r.id,
		InFlight: r.inFlight,
		Cause:    fmt.Sprint(v),
		Stack:    string(debug.Stack()),
		Entries:  r.summary.Entries(),
	}
	r.fatal = report
	if g.handler != nil {
		g.handler.HandleFatal(ctx, *report)
	}
}

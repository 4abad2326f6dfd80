package export

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	derrors "git.home.luguber.info/inful/staticbuilder/internal/errors"
	"git.home.luguber.info/inful/staticbuilder/internal/logfields"
	"git.home.luguber.info/inful/staticbuilder/internal/metrics"
	"git.home.luguber.info/inful/staticbuilder/internal/pathsafe"
)

// Options configures a Builder.
type Options struct {
	// OutputRoot is the absolute directory all writes go to.
	OutputRoot string
	// ProjectRoot anchors relative asset sources.
	ProjectRoot string
	BaseURL     string
	UglyURLs    bool
	Suffix      Suffix
	// Assets are copied, in order, after the pages of a whole-site run.
	Assets []AssetMapping
	// Filter decides which page versions are built; DefaultFilter when nil.
	Filter Filter
	// WithFiles copies attached files next to each generated page.
	WithFiles bool
	// FilePatterns restricts attached files to names matching one of these
	// doublestar patterns. Empty means every attachment.
	FilePatterns []string
	// CatchErrors arms the fatal guard around the write pass.
	CatchErrors bool
}

// Builder runs exports. A Builder keeps no per-run state, so each call to Run
// owns its own summary; callers still must not run two writes against the
// same output root at once.
type Builder struct {
	fs       afero.Fs
	store    ContentStore
	renderer Renderer
	opts     Options
	filter   Filter
	rewriter Rewriter
	logger   *slog.Logger
	recorder metrics.Recorder
	fatal    FatalHandler
}

// NewBuilder validates opts and returns a Builder writing through fs.
func NewBuilder(fs afero.Fs, store ContentStore, renderer Renderer, opts Options) (*Builder, error) {
	if fs == nil || store == nil || renderer == nil {
		return nil, derrors.ConfigurationError("builder needs a filesystem, a content store and a renderer")
	}
	if opts.OutputRoot == "" || !pathsafe.IsAbsolute(opts.OutputRoot) {
		return nil, derrors.ConfigurationErrorf("output root must be an absolute path: %q", opts.OutputRoot)
	}
	opts.OutputRoot = pathsafe.Normalize(opts.OutputRoot, pathsafe.Sep)
	if opts.OutputRoot == pathsafe.Sep {
		return nil, derrors.ConfigurationError("output root cannot be the filesystem root")
	}
	if opts.ProjectRoot != "" {
		opts.ProjectRoot = pathsafe.Normalize(opts.ProjectRoot, pathsafe.Sep)
	}
	opts.Suffix.Extension = NormalizeExtension(opts.Suffix.Extension)
	for _, p := range opts.FilePatterns {
		if !doublestar.ValidatePattern(p) {
			return nil, derrors.ConfigurationErrorf("invalid attached file pattern %q", p)
		}
	}

	filter := opts.Filter
	if filter == nil {
		filter = DefaultFilter{}
	}
	logger := slog.Default()
	return &Builder{
		fs:       fs,
		store:    store,
		renderer: renderer,
		opts:     opts,
		filter:   filter,
		rewriter: Rewriter{BaseURL: opts.BaseURL, UglyURLs: opts.UglyURLs, Extension: opts.Suffix.Extension},
		logger:   logger,
		recorder: metrics.NoopRecorder{},
		fatal:    LogFatalHandler{Logger: logger},
	}, nil
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// WithFatalHandler sets the receiver of fatal reports.
func (b *Builder) WithFatalHandler(h FatalHandler) *Builder {
	if h != nil {
		b.fatal = h
	}
	return b
}

// OutputRoot returns the normalized output root.
func (b *Builder) OutputRoot() string { return b.opts.OutputRoot }

// Result is the outcome of one run.
type Result struct {
	RunID   string       `json:"run_id"`
	Target  string       `json:"target"`
	Write   bool         `json:"write"`
	Start   time.Time    `json:"start"`
	End     time.Time    `json:"end"`
	Entries []Entry      `json:"entries"`
	Fatal   *FatalReport `json:"fatal,omitempty"`
}

// Mode returns "write" or "dry-run".
func (r *Result) Mode() string { return modeName(r.Write) }

// Aborted reports whether the run was cut short by a fatal failure.
func (r *Result) Aborted() bool { return r.Fatal != nil }

// Outcome derives the run outcome. A run is aborted by a fatal failure,
// failed when an entry errored and warning when a configured asset was
// skipped or a built page carries a reason (its attached files). Ignored
// pages are normal.
func (r *Result) Outcome() string {
	if r.Aborted() {
		return "aborted"
	}
	outcome := "success"
	for _, e := range r.Entries {
		switch {
		case e.Status == StatusError || e.Status == StatusFailed:
			return "failed"
		case e.Kind == KindAsset && e.Status == StatusIgnore:
			outcome = "warning"
		case e.Kind == KindPage && e.Status != StatusIgnore && e.Reason != "":
			outcome = "warning"
		}
	}
	return outcome
}

// run is the state of one invocation.
type run struct {
	id      string
	target  Target
	write   bool
	start   time.Time
	summary Summary
	// inFlight is the page source being rendered; read only by the guard.
	inFlight string
	fatal    *FatalReport
	guard    guard
	logger   *slog.Logger
}

func (r *run) result() *Result {
	return &Result{
		RunID:   r.id,
		Target:  r.target.Kind.String(),
		Write:   r.write,
		Start:   r.start,
		End:     time.Now(),
		Entries: r.summary.Entries(),
		Fatal:   r.fatal,
	}
}

// DryRun reports what a write would do without touching the filesystem.
func (b *Builder) DryRun(ctx context.Context, target Target) (*Result, error) {
	return b.Run(ctx, target, false)
}

// Write builds target into the output root.
func (b *Builder) Write(ctx context.Context, target Target) (*Result, error) {
	return b.Run(ctx, target, true)
}

// Run executes one export of target. Errors that invalidate the whole run are
// returned before any side effect; page and asset failures are recorded in
// the result. A run aborted by a fatal failure returns its partial result
// together with a FatalRuntimeFailure.
func (b *Builder) Run(ctx context.Context, target Target, write bool) (*Result, error) {
	r := &run{
		id:     uuid.NewString(),
		target: target,
		write:  write,
		start:  time.Now(),
		guard:  guard{handler: b.fatal},
	}
	r.summary.Reset()
	r.logger = b.logger.With(logfields.RunID(r.id), logfields.Mode(modeName(write)), logfields.Target(target.Kind.String()))

	uris, err := b.resolve(target)
	if err != nil {
		return nil, err
	}
	langs := b.store.Languages()
	if len(langs) == 0 {
		langs = []string{""}
	}

	r.logger.InfoContext(ctx, "Starting export", slog.Int("pages", len(uris)), slog.Int("languages", len(langs)))

	if write {
		if err := b.prepareOutput(target); err != nil {
			return r.result(), err
		}
		b.writePass(ctx, r, uris, langs)
	} else {
		for _, uri := range uris {
			for _, lang := range langs {
				b.buildPageVersion(ctx, r, uri, lang)
			}
		}
	}

	// Assets go last so that files generated while rendering exist.
	if r.fatal == nil && target.Kind == TargetSite {
		for _, m := range b.opts.Assets {
			e := CopyAsset(b.fs, b.opts.OutputRoot, b.opts.ProjectRoot, m.From, m.To, write)
			b.record(r, e)
		}
	}

	res := r.result()
	b.recorder.ObserveBuildDuration(res.Mode(), res.End.Sub(res.Start))
	b.recorder.IncBuildOutcome(res.Outcome())
	r.logger.InfoContext(ctx, "Export finished",
		slog.Int("entries", len(res.Entries)),
		slog.String("outcome", res.Outcome()),
		logfields.Duration(res.End.Sub(res.Start)))

	if r.fatal != nil {
		return res, derrors.FatalRuntimeFailure(r.fatal.InFlight, r.fatal.Cause)
	}
	return res, nil
}

// resolve returns the page URIs of target in index order.
func (b *Builder) resolve(target Target) ([]string, error) {
	index, err := b.store.Index()
	if err != nil {
		return nil, derrors.InternalError("list pages", err)
	}
	if target.Kind == TargetSite {
		return index, nil
	}
	if len(target.URIs) == 0 {
		return nil, derrors.ValidationError("no pages to build")
	}
	if target.Kind == TargetPage && len(target.URIs) != 1 {
		return nil, derrors.ValidationError("a page target names exactly one page")
	}

	wanted := make(map[string]bool, len(target.URIs))
	for _, uri := range target.URIs {
		wanted[strings.Trim(uri, "/")] = true
	}
	out := make([]string, 0, len(wanted))
	for _, uri := range index {
		if wanted[uri] {
			out = append(out, uri)
			delete(wanted, uri)
		}
	}
	for _, uri := range target.URIs {
		if wanted[strings.Trim(uri, "/")] {
			return nil, derrors.ValidationError(fmt.Sprintf("cannot find page %q", uri))
		}
	}
	return out, nil
}

// prepareOutput makes sure the output root exists; whole-site writes start
// from an empty directory.
func (b *Builder) prepareOutput(target Target) error {
	if target.Kind == TargetSite {
		if err := b.fs.RemoveAll(b.opts.OutputRoot); err != nil {
			return derrors.FileSystemError("flush output directory", err)
		}
	}
	if err := b.fs.MkdirAll(b.opts.OutputRoot, 0o755); err != nil {
		return derrors.FileSystemError("create output directory", err)
	}
	return nil
}

// writePass renders every page version under the fatal guard.
func (b *Builder) writePass(ctx context.Context, r *run, uris, langs []string) {
	if b.opts.CatchErrors {
		r.guard.arm()
	}
	defer r.guard.capture(ctx, r)

	for _, uri := range uris {
		for _, lang := range langs {
			b.buildPageVersion(ctx, r, uri, lang)
		}
	}
	r.guard.disarm()
}

func (b *Builder) buildPageVersion(ctx context.Context, r *run, uri, lang string) {
	page, err := b.store.Page(uri, lang)
	if err != nil {
		b.record(r, Entry{Kind: KindPage, Source: uri, URI: uri, Lang: lang, Status: StatusError, Reason: derrors.Reason(err)})
		return
	}

	e := Entry{Kind: KindPage, Source: page.Source, Title: page.Title, URI: page.URI, Lang: page.Lang}

	decision, err := b.filter.Decide(page)
	if err != nil {
		e.Status, e.Reason = StatusError, derrors.Reason(err)
		b.record(r, e)
		return
	}
	if !decision.Include {
		e.Status, e.Reason = StatusIgnore, orDefault(decision.Reason, reasonExcluded)
		b.record(r, e)
		return
	}

	dest, err := MapOutputPath(b.opts.OutputRoot, page.URL, b.opts.Suffix)
	if err != nil {
		e.Status, e.Reason = StatusError, derrors.Reason(err)
		b.record(r, e)
		return
	}
	e.Dest = dest

	var files []Attachment
	if b.opts.WithFiles {
		files, e.Reason = b.attachments(page, dest)
		if e.Reason != "" {
			r.logger.WarnContext(ctx, "Attached files skipped", logfields.Page(page.URI), slog.String("reason", e.Reason))
		}
	}

	if !r.write {
		b.inspect(&e, page, files)
		b.record(r, e)
		return
	}

	// The guard reports this page if the renderer never returns.
	r.inFlight = orDefault(page.Source, page.URI)
	started := time.Now()
	text, err := b.renderer.Render(ctx, page)
	b.recorder.ObserveRenderDuration(time.Since(started))
	if err != nil {
		e.Status, e.Reason = StatusError, derrors.Reason(derrors.RenderError(e.Source, err))
		b.record(r, e)
		return
	}

	text = b.rewriter.Rewrite(text, RelativeTo(b.opts.OutputRoot, dest))
	if err := b.fs.MkdirAll(path.Dir(dest), 0o755); err != nil {
		e.Status, e.Reason = StatusError, derrors.Reason(derrors.FileSystemError("create page directory", err))
		b.record(r, e)
		return
	}
	if err := afero.WriteFile(b.fs, dest, []byte(text), 0o644); err != nil {
		e.Status, e.Reason = StatusError, derrors.Reason(derrors.FileSystemError("write page", err))
		b.record(r, e)
		return
	}
	e.Status = StatusGenerated
	e.Size = sizePtr(int64(len(text)))
	b.recorder.AddBytesWritten(int64(len(text)))

	if len(files) > 0 {
		e.Files, e.Reason = b.copyAttachments(ctx, r, page, files)
	}
	b.record(r, e)
}

// inspect fills a dry-run entry from the current state of its destination.
func (b *Builder) inspect(e *Entry, page *Page, files []Attachment) {
	info, err := b.fs.Stat(e.Dest)
	switch {
	case err != nil || info.IsDir():
		e.Status = StatusMissing
	case info.ModTime().Before(page.Modified):
		e.Status = StatusOutdated
		e.Size = sizePtr(info.Size())
	default:
		e.Status = StatusUpToDate
		e.Size = sizePtr(info.Size())
	}
	if b.opts.WithFiles {
		e.FileCount = len(files)
	}
}

// attachments lists the attached files of page selected by the file
// patterns. When they cannot be copied the reason is returned instead.
func (b *Builder) attachments(page *Page, dest string) ([]Attachment, string) {
	all, err := b.store.Attachments(page)
	if err != nil {
		return nil, "cannot list attached files: " + derrors.Reason(err)
	}
	if len(all) > 0 && attachmentDir(b.opts.OutputRoot, page) == dest {
		return nil, fmt.Sprintf("%d attached files skipped: page is written to a file, not a directory", len(all))
	}
	if len(b.opts.FilePatterns) == 0 {
		return all, ""
	}
	out := make([]Attachment, 0, len(all))
	for _, a := range all {
		for _, p := range b.opts.FilePatterns {
			if ok, _ := doublestar.Match(p, a.Name); ok {
				out = append(out, a)
				break
			}
		}
	}
	return out, ""
}

// attachmentDir is the directory attached files of page are copied to.
func attachmentDir(outputRoot string, page *Page) string {
	return pathsafe.Normalize(pathsafe.Join(pathsafe.Sep, outputRoot, strings.Trim(page.URL, "/")), pathsafe.Sep)
}

// copyAttachments copies files into the directory named after the page URL.
// It returns the destinations that were written and, when some failed, a
// reason naming them.
func (b *Builder) copyAttachments(ctx context.Context, r *run, page *Page, files []Attachment) ([]string, string) {
	dir := attachmentDir(b.opts.OutputRoot, page)
	var copied, failures []string
	for _, f := range files {
		dest := pathsafe.Join(pathsafe.Sep, dir, f.Name)
		if !pathsafe.Contains(b.opts.OutputRoot, dest, pathsafe.Sep) {
			r.logger.WarnContext(ctx, "Skipping attached file outside of output directory", logfields.Page(page.URI), logfields.Dest(dest))
			failures = append(failures, f.Name+": "+reasonEscapes)
			continue
		}
		dest = pathsafe.Normalize(dest, pathsafe.Sep)
		info, err := b.fs.Stat(f.Path)
		if err == nil {
			err = copyFile(b.fs, f.Path, dest, info.Mode())
		}
		if err != nil {
			r.logger.WarnContext(ctx, "Failed to copy attached file", logfields.Page(page.URI), logfields.Dest(dest), logfields.Error(err))
			failures = append(failures, f.Name+": "+err.Error())
			continue
		}
		copied = append(copied, dest)
	}
	if len(failures) == 0 {
		return copied, ""
	}
	return copied, fmt.Sprintf("%d of %d attached files failed: %s", len(failures), len(files), strings.Join(failures, "; "))
}

func (b *Builder) record(r *run, e Entry) {
	r.summary.Append(e)
	b.recorder.IncEntry(string(e.Kind), string(e.Status))

	attrs := []any{logfields.Status(string(e.Status))}
	if e.Kind == KindAsset {
		attrs = append(attrs, logfields.Asset(e.Source))
	} else {
		attrs = append(attrs, logfields.Page(e.URI), logfields.Lang(e.Lang))
	}
	if e.Dest != "" {
		attrs = append(attrs, logfields.Dest(e.Dest))
	}
	if e.Reason != "" {
		attrs = append(attrs, slog.String("reason", e.Reason))
	}
	if e.Status == StatusError || e.Status == StatusFailed {
		r.logger.Warn("Entry failed", attrs...)
		return
	}
	r.logger.Debug("Entry recorded", attrs...)
}

func modeName(write bool) string {
	if write {
		return "write"
	}
	return "dry-run"
}

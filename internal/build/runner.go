// Package build runs the check pipeline: Loading → Extracting → Validating →
// Reporting. Only I/O failures abort a run; every other finding accumulates
// into the report so one invocation surfaces every problem.
package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docscheck/internal/config"
	"git.home.luguber.info/inful/docscheck/internal/corpus"
	"git.home.luguber.info/inful/docscheck/internal/logfields"
	"git.home.luguber.info/inful/docscheck/internal/metrics"
	"git.home.luguber.info/inful/docscheck/internal/nav"
	"git.home.luguber.info/inful/docscheck/internal/validate"
)

// Stage names used in logs and metrics.
const (
	StageLoading    = "loading"
	StageExtracting = "extracting"
	StageValidating = "validating"
	StageExternal   = "external"
)

// ExternalChecker verifies external links over the network. Optional.
type ExternalChecker interface {
	Check(ctx context.Context, links []validate.ExternalLink) []validate.BrokenLink
}

// Publisher forwards broken-link findings to an event stream. Optional.
type Publisher interface {
	PublishReport(ctx context.Context, report *validate.Report) error
}

// Runner executes check runs over a documentation root.
type Runner struct {
	cfg      *config.Config
	recorder metrics.Recorder
	checker  ExternalChecker
	pub      Publisher
}

// NewRunner creates a runner with a no-op recorder and no optional collaborators.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg, recorder: metrics.NoopRecorder{}}
}

// WithRecorder attaches a metrics recorder (fluent helper).
func (r *Runner) WithRecorder(rec metrics.Recorder) *Runner {
	if rec != nil {
		r.recorder = rec
	}
	return r
}

// WithExternalChecker attaches external link verification.
func (r *Runner) WithExternalChecker(c ExternalChecker) *Runner { r.checker = c; return r }

// WithPublisher attaches broken-link event publishing.
func (r *Runner) WithPublisher(p Publisher) *Runner { r.pub = p; return r }

// Run performs one full pass over root and returns the validation report.
// Errors are fatal I/O conditions; broken links and orphans are report data.
func (r *Runner) Run(ctx context.Context, root string) (*validate.Report, error) {
	runID := uuid.NewString()
	started := time.Now()

	slog.Info("Starting documentation check", logfields.RunID(runID), logfields.Root(root))

	loader := corpus.NewLoader(r.cfg.Extensions, r.cfg.Ignore, 0)
	c, err := r.timedLoad(loader, root)
	if err != nil {
		r.recorder.IncRunOutcome("failed")
		return nil, err
	}

	stageStart := time.Now()
	links, external, err := validate.ExtractLinks(c)
	if err != nil {
		r.recorder.IncRunOutcome("failed")
		return nil, err
	}
	r.recorder.ObserveStageDuration(StageExtracting, time.Since(stageStart))

	stageStart = time.Now()
	tree := nav.Build(c)
	report := validate.BuildReport(c, links, external, tree.Orphans(c), tree.Truncated, runID)
	r.recorder.ObserveStageDuration(StageValidating, time.Since(stageStart))

	if r.checker != nil && len(external) > 0 {
		stageStart = time.Now()
		report.BrokenExternal = r.checker.Check(ctx, external)
		r.recorder.ObserveStageDuration(StageExternal, time.Since(stageStart))
	}

	if r.pub != nil && len(report.BrokenLinks)+len(report.BrokenExternal) > 0 {
		if err := r.pub.PublishReport(ctx, report); err != nil {
			slog.Warn("Failed to publish broken link events", logfields.Error(err))
		}
	}

	outcome := "clean"
	if report.HasIssues() {
		outcome = "issues"
	}
	r.recorder.IncRunOutcome(outcome)
	r.recorder.ObserveRunDuration(time.Since(started))
	r.recorder.SetBrokenLinks(len(report.BrokenLinks))
	r.recorder.SetOrphanDocuments(len(report.OrphanDocuments))
	r.recorder.SetDocumentCount(report.DocumentCount)

	slog.Info("Documentation check completed",
		logfields.RunID(runID),
		logfields.DurationMS(float64(time.Since(started).Milliseconds())),
		slog.Int("documents", report.DocumentCount),
		slog.Int("broken_links", len(report.BrokenLinks)),
		slog.Int("orphans", len(report.OrphanDocuments)))

	return report, nil
}

func (r *Runner) timedLoad(loader *corpus.Loader, root string) (*corpus.Corpus, error) {
	start := time.Now()
	c, err := loader.Load(root)
	if err != nil {
		return nil, err
	}
	r.recorder.ObserveStageDuration(StageLoading, time.Since(start))
	return c, nil
}

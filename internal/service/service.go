package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/greensight/carbonscan/internal/contentlink"
	"github.com/greensight/carbonscan/internal/dashboard"
	"github.com/greensight/carbonscan/internal/emissions"
	"github.com/greensight/carbonscan/internal/model"
	"github.com/greensight/carbonscan/internal/pipeline"
	"github.com/greensight/carbonscan/internal/renderer"
)

// ReportStore is the persistence surface the service needs.
// *database.ReportDB satisfies this.
type ReportStore interface {
	SaveReport(ctx context.Context, report *model.SustainabilityReport) (int64, error)
	GetLatestReport(ctx context.Context, page model.PageKey) (*model.SustainabilityReport, error)
	GetReportHistory(ctx context.Context, page model.PageKey, excludeID int64, pageSize, pageIndex int) ([]*model.SustainabilityReport, bool, error)
	GetLatestPerPage(ctx context.Context, language string) ([]*model.SustainabilityReport, error)
}

// Service coordinates report runs and reads.
type Service struct {
	// store persists and queries reports.
	store ReportStore

	// renderer produces page traces.
	renderer renderer.Renderer

	// model is the local emissions fallback.
	model emissions.Model

	// checker is the green-hosting registry fallback. May be nil.
	checker emissions.GreenChecker

	// linker resolves content links on read. May be nil.
	linker *contentlink.Linker

	// meta supplies page display metadata for the dashboard. May be nil.
	meta dashboard.MetadataSource

	// now supplies report timestamps.
	now func() time.Time

	// logger is used for structured logging.
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithEmissionsModel replaces the default SWD emissions model.
func WithEmissionsModel(m emissions.Model) Option {
	return func(s *Service) {
		s.model = m
	}
}

// WithGreenChecker sets the green-hosting registry client.
// Without one, pages whose trace carries no verdict are Unknown.
func WithGreenChecker(checker emissions.GreenChecker) Option {
	return func(s *Service) {
		s.checker = checker
	}
}

// WithLinkResolver enables content link resolution on read.
func WithLinkResolver(resolver contentlink.Resolver) Option {
	return func(s *Service) {
		s.linker = contentlink.NewLinker(resolver)
	}
}

// WithMetadataSource sets the page metadata source for the dashboard.
func WithMetadataSource(meta dashboard.MetadataSource) Option {
	return func(s *Service) {
		s.meta = meta
	}
}

// WithClock overrides the report timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service over the given store and renderer.
func New(store ReportStore, r renderer.Renderer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		renderer: r,
		model:    emissions.NewSWDModel(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// traceGuard rejects traces that cannot ground a report. An empty resource
// list is a valid trace but recording it would produce a misleading
// zero-weight report, so the run stops here instead.
type traceGuard struct{}

// Name returns the step name.
func (traceGuard) Name() string { return "validate_trace" }

// Do executes the guard.
func (traceGuard) Do(_ context.Context, run *model.ReportRun) error {
	if run.Trace == nil || len(run.Trace.Resources) == 0 {
		return fmt.Errorf("page %s: empty trace: %w", run.Page.String(), ErrNoReport)
	}
	return nil
}

// RunNewReport renders the page, classifies its resources, estimates
// emissions, and persists the resulting report.
//
// Acquisition failures (render errors, invalid or empty traces) return
// ErrNoReport: the page simply has no new report, and any previously stored
// history is untouched. Store failures propagate as-is.
func (s *Service) RunNewReport(ctx context.Context, pageURL string, page model.PageKey) (*model.SustainabilityReport, error) {
	run := &model.ReportRun{URL: pageURL, Page: page}

	p := pipeline.New(pipeline.WithLogger(s.logger))
	p.AddSteps(
		pipeline.NewRenderStep(s.renderer, pipeline.WithRenderLogger(s.logger)),
		traceGuard{},
		pipeline.NewClassifyStep(pipeline.WithClassifyLogger(s.logger)),
		pipeline.NewEmissionsStep(s.model, s.checker, pipeline.WithEmissionsLogger(s.logger)),
		pipeline.NewAssembleStep(pipeline.WithAssembleClock(s.now)),
		pipeline.NewPersistStep(s.store, pipeline.WithPersistLogger(s.logger)),
	)

	if err := p.Execute(ctx, run); err != nil {
		if errors.Is(err, renderer.ErrRenderFailed) || errors.Is(err, renderer.ErrInvalidTrace) {
			return nil, fmt.Errorf("page %s: %w: %v", page.String(), ErrNoReport, err)
		}
		return nil, err
	}

	s.resolveLinks(ctx, run.Report)
	return run.Report, nil
}

// GetLastReport returns the newest stored report for the page, with content
// links resolved. Returns ErrNoReport when the page has no history.
func (s *Service) GetLastReport(ctx context.Context, page model.PageKey) (*model.SustainabilityReport, error) {
	report, err := s.store.GetLatestReport(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("load latest report: %w", err)
	}
	if report == nil {
		return nil, fmt.Errorf("page %s: %w", page.String(), ErrNoReport)
	}

	s.resolveLinks(ctx, report)
	return report, nil
}

// GetReportHistory returns one page of the report history, newest first,
// with content links resolved. excludeID drops that report from the results
// and from the hasMore accounting; pass 0 to exclude nothing.
func (s *Service) GetReportHistory(ctx context.Context, page model.PageKey, excludeID int64, pageSize, pageIndex int) ([]*model.SustainabilityReport, bool, error) {
	reports, hasMore, err := s.store.GetReportHistory(ctx, page, excludeID, pageSize, pageIndex)
	if err != nil {
		return nil, false, fmt.Errorf("load report history: %w", err)
	}

	if s.linker != nil {
		if err := s.linker.ResolveReports(ctx, reports); err != nil {
			return nil, false, fmt.Errorf("resolve content links: %w", err)
		}
	}
	return reports, hasMore, nil
}

// GetDashboard builds the site-wide overview for a language: each page's
// latest report joined with its display metadata, plus aggregate statistics.
func (s *Service) GetDashboard(ctx context.Context, language string) (*model.DashboardResponse, error) {
	latest, err := s.store.GetLatestPerPage(ctx, language)
	if err != nil {
		return nil, fmt.Errorf("load latest reports: %w", err)
	}

	meta := map[int64]model.PageMetadata{}
	if s.meta != nil {
		meta, err = s.meta.PageMetadata(ctx, language)
		if err != nil {
			return nil, fmt.Errorf("load page metadata: %w", err)
		}
	}

	return dashboard.Summarize(latest, meta), nil
}

// resolveLinks fills content hub links on a report's resources. Resolution
// is best-effort: a missing resolver or per-resource failures leave links
// empty, they never fail the read.
func (s *Service) resolveLinks(ctx context.Context, report *model.SustainabilityReport) {
	if s.linker == nil || report == nil {
		return
	}
	if err := s.linker.ResolveReport(ctx, report); err != nil {
		s.logger.Debug("content link resolution aborted", "error", err)
	}
}

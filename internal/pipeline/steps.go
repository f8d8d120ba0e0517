package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/greensight/carbonscan/internal/classifier"
	"github.com/greensight/carbonscan/internal/emissions"
	"github.com/greensight/carbonscan/internal/model"
	"github.com/greensight/carbonscan/internal/renderer"
)

// ReportSaver persists an assembled report and returns its assigned ID.
// *database.ReportDB satisfies this; tests substitute an in-memory fake.
type ReportSaver interface {
	SaveReport(ctx context.Context, report *model.SustainabilityReport) (int64, error)
}

// RenderStep loads the target page and captures its resource trace.
// This step is the data source for everything downstream: no trace,
// no report.
type RenderStep struct {
	// renderer produces the trace for a page URL.
	renderer renderer.Renderer

	// logger for structured logging.
	logger *slog.Logger
}

// RenderStepOption configures a RenderStep.
type RenderStepOption func(*RenderStep)

// WithRenderLogger sets a custom logger for the render step.
func WithRenderLogger(logger *slog.Logger) RenderStepOption {
	return func(s *RenderStep) {
		s.logger = logger
	}
}

// NewRenderStep creates a new page render step.
func NewRenderStep(r renderer.Renderer, opts ...RenderStepOption) *RenderStep {
	s := &RenderStep{
		renderer: r,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RenderStep) Name() string {
	return "render"
}

// Do executes the render step.
func (s *RenderStep) Do(ctx context.Context, run *model.ReportRun) error {
	trace, err := s.renderer.LoadAndTrace(ctx, run.URL)
	if err != nil {
		return fmt.Errorf("render %s: %w", run.URL, err)
	}

	run.Trace = trace
	s.logger.Debug("trace captured",
		"url", run.URL,
		"page_weight_bytes", trace.PageWeight,
		"resources", len(trace.Resources),
	)

	return nil
}

// ClassifyStep partitions the trace's resources into display groups.
type ClassifyStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// ClassifyStepOption configures a ClassifyStep.
type ClassifyStepOption func(*ClassifyStep)

// WithClassifyLogger sets a custom logger for the classify step.
func WithClassifyLogger(logger *slog.Logger) ClassifyStepOption {
	return func(s *ClassifyStep) {
		s.logger = logger
	}
}

// NewClassifyStep creates a new resource classification step.
func NewClassifyStep(opts ...ClassifyStepOption) *ClassifyStep {
	s := &ClassifyStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do executes the classification step.
func (s *ClassifyStep) Do(_ context.Context, run *model.ReportRun) error {
	if run.Trace == nil {
		return fmt.Errorf("classify %s: no trace to classify", run.Page.String())
	}

	run.Groups = classifier.Classify(run.Trace.Resources)
	return nil
}

// EmissionsStep resolves the green-hosting status and the emissions
// estimate for the run.
//
// Design decision: collector-side results win over local computation. The
// collector script runs inside the rendered page and sees the exact bytes
// the browser transferred, so when the trace already carries an estimate or
// a hosting verdict we keep it. The local SWD model and registry lookup are
// fallbacks for collectors that return a bare trace.
type EmissionsStep struct {
	// model estimates emissions from transfer size when the trace has none.
	model emissions.Model

	// checker resolves green hosting when the trace has no verdict.
	checker emissions.GreenChecker

	// logger for structured logging.
	logger *slog.Logger
}

// EmissionsStepOption configures an EmissionsStep.
type EmissionsStepOption func(*EmissionsStep)

// WithEmissionsLogger sets a custom logger for the emissions step.
func WithEmissionsLogger(logger *slog.Logger) EmissionsStepOption {
	return func(s *EmissionsStep) {
		s.logger = logger
	}
}

// NewEmissionsStep creates a new emissions estimation step.
func NewEmissionsStep(m emissions.Model, checker emissions.GreenChecker, opts ...EmissionsStepOption) *EmissionsStep {
	s := &EmissionsStep{
		model:   m,
		checker: checker,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *EmissionsStep) Name() string {
	return "emissions"
}

// Do executes the emissions step.
func (s *EmissionsStep) Do(ctx context.Context, run *model.ReportRun) error {
	if run.Trace == nil {
		return fmt.Errorf("emissions %s: no trace to estimate from", run.Page.String())
	}

	run.GreenHosting = s.resolveGreenHosting(ctx, run)

	if run.Trace.Emissions != nil {
		run.EmissionsGrams = run.Trace.Emissions.TotalGrams
		run.Rating = run.Trace.Emissions.Rating
		if run.Rating == "" {
			run.Rating = emissions.RatingFor(run.EmissionsGrams)
		}
		return nil
	}

	est := s.model.Estimate(run.Trace.PageWeight, run.GreenHosting == model.GreenHostingGreen)
	run.EmissionsGrams = est.TotalGrams
	run.Rating = est.Rating
	return nil
}

// resolveGreenHosting prefers the collector's verdict, then the registry
// lookup, and degrades to Unknown on any failure.
func (s *EmissionsStep) resolveGreenHosting(ctx context.Context, run *model.ReportRun) model.GreenHostingStatus {
	if status := model.GreenHostingStatus(run.Trace.GreenHostingStatus); status.Valid() {
		return status
	}

	if s.checker == nil {
		return model.GreenHostingUnknown
	}

	u, err := url.Parse(run.URL)
	if err != nil || u.Hostname() == "" {
		s.logger.Debug("green hosting check skipped, no hostname", "url", run.URL)
		return model.GreenHostingUnknown
	}

	status, err := s.checker.Check(ctx, u.Hostname())
	if err != nil {
		s.logger.Debug("green hosting check failed",
			"hostname", u.Hostname(),
			"error", err,
		)
		return model.GreenHostingUnknown
	}
	return status
}

// AssembleStep builds the final report from the accumulated run state.
type AssembleStep struct {
	// now supplies the report timestamp.
	now func() time.Time
}

// AssembleStepOption configures an AssembleStep.
type AssembleStepOption func(*AssembleStep)

// WithAssembleClock overrides the report timestamp source. Used in tests.
func WithAssembleClock(now func() time.Time) AssembleStepOption {
	return func(s *AssembleStep) {
		s.now = now
	}
}

// NewAssembleStep creates a new report assembly step.
func NewAssembleStep(opts ...AssembleStepOption) *AssembleStep {
	s := &AssembleStep{
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AssembleStep) Name() string {
	return "assemble"
}

// Do executes the assembly step.
func (s *AssembleStep) Do(_ context.Context, run *model.ReportRun) error {
	if run.Trace == nil || run.Groups == nil {
		return fmt.Errorf("assemble %s: incomplete run state", run.Page.String())
	}

	run.Report = model.NewSustainabilityReport(
		run.Page,
		run.Groups,
		run.Trace.PageWeight,
		run.EmissionsGrams,
		run.Rating,
		run.GreenHosting,
		s.now().UTC(),
	)
	return nil
}

// PersistStep saves the assembled report and records its assigned ID.
type PersistStep struct {
	// saver is the report store.
	saver ReportSaver

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new report persistence step.
func NewPersistStep(saver ReportSaver, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		saver:  saver,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persistence step.
func (s *PersistStep) Do(ctx context.Context, run *model.ReportRun) error {
	if run.Report == nil {
		return fmt.Errorf("persist %s: no report to save", run.Page.String())
	}

	id, err := s.saver.SaveReport(ctx, run.Report)
	if err != nil {
		return fmt.Errorf("persist %s: %w", run.Page.String(), err)
	}

	run.Report.ID = id
	s.logger.Info("report saved",
		"page", run.Page.String(),
		"report_id", id,
		"rating", run.Report.CarbonRating,
	)
	return nil
}

// DefaultPipeline creates a pipeline with the standard report steps in
// order: render, classify, emissions, assemble, persist.
//
// Design decision: We provide a default pipeline because:
// 1. Most callers want the full chain
// 2. Reduces boilerplate in the CLI and service
// 3. Ensures consistent ordering
func DefaultPipeline(r renderer.Renderer, m emissions.Model, checker emissions.GreenChecker, saver ReportSaver, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewRenderStep(r),
		NewClassifyStep(),
		NewEmissionsStep(m, checker),
		NewAssembleStep(),
		NewPersistStep(saver),
	)

	return p
}

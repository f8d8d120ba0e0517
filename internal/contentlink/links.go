package contentlink

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/greensight/carbonscan/internal/model"
)

// DefaultResolveConcurrency bounds the per-report fan-out of link lookups.
// Resolution happens on every history read, so a report with hundreds of
// resources must not open hundreds of simultaneous admin-system queries.
const DefaultResolveConcurrency = 8

// Linker recomputes admin deep links for every resource of a report that
// carries an extracted content identifier.
//
// Design decision: We resolve links on read rather than at write time so
// that links stay valid even if the admin routing scheme changes after the
// report was recorded. The resolved URL is therefore never persisted.
type Linker struct {
	// resolver performs the external lookup.
	resolver Resolver

	// concurrency limits simultaneous lookups per report.
	concurrency int

	// logger for structured logging.
	logger *slog.Logger
}

// LinkerOption configures a Linker.
type LinkerOption func(*Linker)

// WithResolveConcurrency sets the per-report lookup concurrency limit.
func WithResolveConcurrency(n int) LinkerOption {
	return func(l *Linker) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the linker.
func WithLogger(logger *slog.Logger) LinkerOption {
	return func(l *Linker) {
		l.logger = logger
	}
}

// NewLinker creates a Linker backed by the given resolver.
func NewLinker(resolver Resolver, opts ...LinkerOption) *Linker {
	l := &Linker{
		resolver:    resolver,
		concurrency: DefaultResolveConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ResolveReport fills ContentHubURL on every resource of the report that has
// a content identifier. Lookups for independent resources run concurrently.
//
// A failed lookup degrades that one resource to an empty link; it never
// fails the containing read. Only context cancellation aborts the whole
// resolution.
func (l *Linker) ResolveReport(ctx context.Context, report *model.SustainabilityReport) error {
	if l.resolver == nil || report == nil {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for _, group := range report.ResourceGroups {
		for i := range group.Resources {
			res := &group.Resources[i]
			if res.ContentItemID == nil {
				continue
			}

			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				url, err := l.resolver.ResolveLink(ctx, *res.ContentItemID, report.Page.Language)
				if err != nil {
					// Missing or failed lookups degrade to "no link".
					l.logger.Debug("content link resolution failed",
						"content_item_id", res.ContentItemID.String(),
						"url", res.URL,
						"error", err,
					)
					res.ContentHubURL = ""
					return nil
				}

				res.ContentHubURL = url
				return nil
			})
		}
	}

	return g.Wait()
}

// ResolveReports resolves links for a sequence of reports in order.
// Used by history reads, where every returned report needs fresh links.
func (l *Linker) ResolveReports(ctx context.Context, reports []*model.SustainabilityReport) error {
	for _, report := range reports {
		if err := l.ResolveReport(ctx, report); err != nil {
			return err
		}
	}
	return nil
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"FilmCatalog/internal/domain"
	"FilmCatalog/internal/ports"
)

// RefreshReport is the outcome of refreshing one category. NewFilms holds the
// films whose ids were not stored before the refresh.
type RefreshReport struct {
	Category string
	Result   domain.MergeResult
	NewFilms []domain.Film
	Err      error
}

// RefresherDeps wires the periodic refresh job.
type RefresherDeps struct {
	Catalog  *Catalog
	Driver   ports.Scheduler
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Refresher re-parses every registered category on each scheduler tick.
type Refresher struct {
	catalog  *Catalog
	driver   ports.Scheduler
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewRefresher returns a helper to start/stop recurring refreshes.
func NewRefresher(deps RefresherDeps) *Refresher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Refresher{
		catalog:  deps.Catalog,
		driver:   deps.Driver,
		notifier: deps.Notifier,
		logger:   logger,
	}
}

// RefreshAll updates every category in registration order. A failing category
// is recorded in its report and does not stop the others.
func (r *Refresher) RefreshAll(ctx context.Context) ([]RefreshReport, error) {
	categories, err := r.catalog.GetAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	reports := make([]RefreshReport, 0, len(categories))
	for _, cat := range categories {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		reports = append(reports, r.refreshOne(ctx, cat.Name))
	}

	failed := 0
	for _, rep := range reports {
		if rep.Err != nil {
			failed++
		}
	}
	r.logger.Info("refresh finished", "categories", len(reports), "failed", failed)

	if digests := buildDigests(reports); len(digests) > 0 && r.notifier != nil {
		if err := r.notifier.PublishDigest(ctx, digests); err != nil {
			return reports, fmt.Errorf("publish digest: %w", err)
		}
	}
	return reports, nil
}

// Start registers RefreshAll with the scheduler driver.
func (r *Refresher) Start(ctx context.Context) error {
	if r.driver == nil || r.catalog == nil {
		return nil
	}

	job := func(trigger time.Time) {
		r.logger.Debug("refresh triggered", "at", trigger.Format(time.RFC3339))
		if _, err := r.RefreshAll(ctx); err != nil {
			r.logger.Error("refresh failed", "error", err)
		}
	}

	return r.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (r *Refresher) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}
	return r.driver.Stop(ctx)
}

func (r *Refresher) refreshOne(ctx context.Context, name string) RefreshReport {
	report := RefreshReport{Category: name}

	before, err := r.catalog.GetFilmsByCategory(ctx, name)
	if err != nil {
		report.Err = err
		return report
	}
	known := make(map[string]struct{}, len(before))
	for _, f := range before {
		known[f.ID] = struct{}{}
	}

	report.Result, report.Err = r.catalog.UpdateCategory(ctx, name, nil)
	if report.Err != nil || report.Result.Added == 0 {
		return report
	}

	after, err := r.catalog.GetFilmsByCategory(ctx, name)
	if err != nil {
		r.logger.Warn("list films after refresh", "category", name, "error", err)
		return report
	}
	for _, f := range after {
		if _, ok := known[f.ID]; !ok {
			report.NewFilms = append(report.NewFilms, f)
		}
	}
	return report
}

func buildDigests(reports []RefreshReport) []domain.RefreshDigest {
	var digests []domain.RefreshDigest
	for _, rep := range reports {
		if rep.Err != nil || len(rep.NewFilms) == 0 {
			continue
		}
		digests = append(digests, domain.RefreshDigest{Category: rep.Category, NewFilms: rep.NewFilms})
	}
	return digests
}

package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yamori/gleaner/pkg/domain/interfaces"
	"github.com/yamori/gleaner/pkg/domain/model"
	"github.com/yamori/gleaner/pkg/infra/feed"
	"golang.org/x/sync/errgroup"
)

type collectUseCase struct {
	fetcher interfaces.FeedFetcher
	store   interfaces.ItemStore
	cfg     *model.FeedConfig
	now     func() time.Time
}

// Option configures the collect use case
type Option func(*collectUseCase)

// WithClock replaces the wall clock, used to pin the target week in tests
func WithClock(now func() time.Time) Option {
	return func(uc *collectUseCase) {
		uc.now = now
	}
}

// NewCollect creates a new instance of CollectUseCase
func NewCollect(fetcher interfaces.FeedFetcher, store interfaces.ItemStore, cfg *model.FeedConfig, opts ...Option) interfaces.CollectUseCase {
	uc := &collectUseCase{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Collect fetches every configured category feed, parses the items and
// merges the new ones into the current week's archive. A category whose
// fetch keeps failing is reported in the result but never aborts the run.
func (uc *collectUseCase) Collect(ctx context.Context) (*model.CollectReport, error) {
	logger := ctxlog.From(ctx)

	report := &model.CollectReport{
		RunID:     uuid.NewString(),
		Week:      model.CurrentWeek(uc.now()),
		StartedAt: uc.now(),
	}

	logger.Info("Starting collect run",
		"run_id", report.RunID,
		"week", report.Week.String(),
		"categories", len(uc.cfg.Categories),
	)

	type categoryOutcome struct {
		items []model.Item
		err   error
	}

	var mu sync.Mutex
	outcomes := make(map[string]categoryOutcome, len(uc.cfg.Categories))

	grp, grpCtx := errgroup.WithContext(ctx)
	for name, url := range uc.cfg.Categories {
		grp.Go(func() error {
			items, err := uc.scrapeCategory(grpCtx, name, url)

			mu.Lock()
			outcomes[name] = categoryOutcome{items: items, err: err}
			mu.Unlock()

			// A per-category failure is recorded, not propagated: the
			// remaining categories must keep running.
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Merge in deterministic category order with a single writer.
	existing, knownIDs, err := uc.store.LoadIndex(report.Week)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load weekly archive", goerr.V("week", report.Week.String()))
	}

	names := make([]string, 0, len(outcomes))
	for name := range outcomes {
		names = append(names, name)
	}
	sort.Strings(names)

	var added int
	for _, name := range names {
		outcome := outcomes[name]
		result := model.CategoryResult{
			Category: name,
			Fetched:  len(outcome.items),
		}
		if outcome.err != nil {
			result.Err = outcome.err.Error()
		}

		for _, item := range outcome.items {
			if _, ok := knownIDs[item.ID]; ok {
				continue
			}
			knownIDs[item.ID] = struct{}{}
			existing = append(existing, item)
			result.Added++
		}

		added += result.Added
		report.Results = append(report.Results, result)
	}

	if added > 0 {
		if err := uc.store.Save(report.Week, existing); err != nil {
			return nil, goerr.Wrap(err, "failed to save weekly archive", goerr.V("week", report.Week.String()))
		}
	}

	report.FinishedAt = uc.now()

	logger.Info("Collect run finished",
		"run_id", report.RunID,
		"added", added,
		"archived_total", len(existing),
		"failed_categories", report.FailedCategories(),
	)

	return report, nil
}

// scrapeCategory fetches and parses one category feed with retries.
func (uc *collectUseCase) scrapeCategory(ctx context.Context, category, url string) ([]model.Item, error) {
	logger := ctxlog.From(ctx)

	var lastErr error
	for attempt := 0; attempt < uc.cfg.RetryCount; attempt++ {
		data, err := uc.fetcher.Fetch(ctx, url)
		if err == nil {
			items, parseErr := feed.Parse(data, category)
			if parseErr == nil {
				logger.Info("Fetched feed",
					"category", category,
					"url", url,
					"items", len(items),
				)
				return items, nil
			}
			err = parseErr
		}

		lastErr = err
		logger.Error("Failed to fetch feed",
			"category", category,
			"url", url,
			"attempt", attempt+1,
			"error", err,
		)

		if attempt+1 < uc.cfg.RetryCount {
			logger.Info("Retrying feed fetch",
				"category", category,
				"delay", uc.cfg.Delay().String(),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(uc.cfg.Delay()):
			}
		}
	}

	return nil, goerr.Wrap(lastErr, "feed fetch failed",
		goerr.V("category", category),
		goerr.V("url", url),
		goerr.V("attempts", uc.cfg.RetryCount),
	)
}

// ListItems returns the archived items for the given week.
func (uc *collectUseCase) ListItems(ctx context.Context, week model.Week) ([]model.Item, error) {
	items, err := uc.store.Load(week)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load weekly archive", goerr.V("week", week.String()))
	}
	return items, nil
}

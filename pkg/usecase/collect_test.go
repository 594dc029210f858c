package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/yamori/gleaner/pkg/domain/model"
	"github.com/yamori/gleaner/pkg/infra/storage"
	"github.com/yamori/gleaner/pkg/usecase"
)

// stubFetcher serves canned payloads per URL and counts attempts.
type stubFetcher struct {
	mu        sync.Mutex
	payloads  map[string][]byte
	failures  map[string]int // failures to serve before succeeding
	attempts  map[string]int
	permanent map[string]bool
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		payloads:  map[string][]byte{},
		failures:  map[string]int{},
		attempts:  map[string]int{},
		permanent: map[string]bool{},
	}
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts[url]++
	if f.permanent[url] {
		return nil, fmt.Errorf("connection refused: %s", url)
	}
	if f.failures[url] > 0 {
		f.failures[url]--
		return nil, fmt.Errorf("temporary failure: %s", url)
	}
	return f.payloads[url], nil
}

func (f *stubFetcher) attemptCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[url]
}

func rssPayload(items ...[2]string) []byte {
	body := "<rss><channel>"
	for _, it := range items {
		body += "<item><guid>" + it[0] + "</guid><title>" + it[1] + "</title>" +
			"<description>desc</description><pubDate>today</pubDate></item>"
	}
	body += "</channel></rss>"
	return []byte(body)
}

// fixedClock pins runs to 2024-05-20, ISO week 2024/21.
func fixedClock() time.Time {
	return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
}

func TestCollect(t *testing.T) {
	week := model.Week{Year: 2024, Week: 21}

	t.Run("collects all categories into the weekly archive", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.payloads["http://feeds.test/tech"] = rssPayload([2]string{"t1", "Tech One"}, [2]string{"t2", "Tech Two"})
		fetcher.payloads["http://feeds.test/sport"] = rssPayload([2]string{"s1", "Sport One"})

		store := storage.NewJSONStore(t.TempDir())
		cfg := &model.FeedConfig{
			Categories: map[string]string{
				"Tech":  "http://feeds.test/tech",
				"Sport": "http://feeds.test/sport",
			},
			BaseFolder: "unused",
			RetryCount: 1,
		}

		uc := usecase.NewCollect(fetcher, store, cfg, usecase.WithClock(fixedClock))
		report, err := uc.Collect(context.Background())
		gt.NoError(t, err)

		gt.V(t, report.RunID).NotEqual("")
		gt.Equal(t, report.Week, week)
		gt.Equal(t, report.TotalAdded(), 3)
		gt.Equal(t, len(report.FailedCategories()), 0)

		items, err := store.Load(week)
		gt.NoError(t, err)
		gt.Equal(t, len(items), 3)
	})

	t.Run("second run adds nothing for known ids", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.payloads["http://feeds.test/tech"] = rssPayload([2]string{"t1", "Tech One"})

		store := storage.NewJSONStore(t.TempDir())
		cfg := &model.FeedConfig{
			Categories: map[string]string{"Tech": "http://feeds.test/tech"},
			BaseFolder: "unused",
			RetryCount: 1,
		}

		uc := usecase.NewCollect(fetcher, store, cfg, usecase.WithClock(fixedClock))

		first, err := uc.Collect(context.Background())
		gt.NoError(t, err)
		gt.Equal(t, first.TotalAdded(), 1)

		second, err := uc.Collect(context.Background())
		gt.NoError(t, err)
		gt.Equal(t, second.TotalAdded(), 0)
		gt.Equal(t, second.Results[0].Fetched, 1)

		items, err := store.Load(week)
		gt.NoError(t, err)
		gt.Equal(t, len(items), 1)
	})

	t.Run("failing category does not abort the others", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.payloads["http://feeds.test/tech"] = rssPayload([2]string{"t1", "Tech One"})
		fetcher.permanent["http://feeds.test/down"] = true

		store := storage.NewJSONStore(t.TempDir())
		cfg := &model.FeedConfig{
			Categories: map[string]string{
				"Tech": "http://feeds.test/tech",
				"Down": "http://feeds.test/down",
			},
			BaseFolder: "unused",
			RetryCount: 2,
		}

		uc := usecase.NewCollect(fetcher, store, cfg, usecase.WithClock(fixedClock))
		report, err := uc.Collect(context.Background())
		gt.NoError(t, err)

		gt.Equal(t, report.TotalAdded(), 1)
		gt.Equal(t, report.FailedCategories(), []string{"Down"})
		gt.Equal(t, fetcher.attemptCount("http://feeds.test/down"), 2)

		items, err := store.Load(week)
		gt.NoError(t, err)
		gt.Equal(t, len(items), 1)
	})

	t.Run("transient failure recovers by retrying", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.payloads["http://feeds.test/tech"] = rssPayload([2]string{"t1", "Tech One"})
		fetcher.failures["http://feeds.test/tech"] = 2

		store := storage.NewJSONStore(t.TempDir())
		cfg := &model.FeedConfig{
			Categories: map[string]string{"Tech": "http://feeds.test/tech"},
			BaseFolder: "unused",
			RetryCount: 3,
		}

		uc := usecase.NewCollect(fetcher, store, cfg, usecase.WithClock(fixedClock))
		report, err := uc.Collect(context.Background())
		gt.NoError(t, err)

		gt.Equal(t, report.TotalAdded(), 1)
		gt.Equal(t, len(report.FailedCategories()), 0)
		gt.Equal(t, fetcher.attemptCount("http://feeds.test/tech"), 3)
	})

	t.Run("items without guid share one archive slot", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.payloads["http://feeds.test/tech"] = rssPayload([2]string{"", "First"}, [2]string{"", "Second"})

		store := storage.NewJSONStore(t.TempDir())
		cfg := &model.FeedConfig{
			Categories: map[string]string{"Tech": "http://feeds.test/tech"},
			BaseFolder: "unused",
			RetryCount: 1,
		}

		uc := usecase.NewCollect(fetcher, store, cfg, usecase.WithClock(fixedClock))
		report, err := uc.Collect(context.Background())
		gt.NoError(t, err)

		gt.Equal(t, report.TotalAdded(), 1)

		items, err := store.Load(week)
		gt.NoError(t, err)
		gt.Equal(t, len(items), 1)
		gt.Equal(t, items[0].Title, "First")
	})

	t.Run("cancelled context stops the run", func(t *testing.T) {
		fetcher := newStubFetcher()
		fetcher.permanent["http://feeds.test/tech"] = true

		store := storage.NewJSONStore(t.TempDir())
		cfg := &model.FeedConfig{
			Categories: map[string]string{"Tech": "http://feeds.test/tech"},
			BaseFolder: "unused",
			RetryCount: 5,
			RetryDelay: 60,
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		uc := usecase.NewCollect(fetcher, store, cfg, usecase.WithClock(fixedClock))
		_, err := uc.Collect(ctx)
		gt.Error(t, err)
	})
}

func TestListItems(t *testing.T) {
	week := model.Week{Year: 2024, Week: 21}

	store := storage.NewJSONStore(t.TempDir())
	archived := []model.Item{
		{ID: "1", Title: "Kept", Category: "Tech"},
	}
	gt.NoError(t, store.Save(week, archived))

	cfg := &model.FeedConfig{
		Categories: map[string]string{"Tech": "http://feeds.test/tech"},
		BaseFolder: "unused",
		RetryCount: 1,
	}

	uc := usecase.NewCollect(newStubFetcher(), store, cfg, usecase.WithClock(fixedClock))

	items, err := uc.ListItems(context.Background(), week)
	gt.NoError(t, err)
	gt.Equal(t, items, archived)

	empty, err := uc.ListItems(context.Background(), model.Week{Year: 2024, Week: 22})
	gt.NoError(t, err)
	gt.Equal(t, len(empty), 0)
}

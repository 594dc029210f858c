package interfaces

import (
	"context"

	"github.com/yamori/gleaner/pkg/domain/model"
)

// CollectUseCase defines the feed collection operations
type CollectUseCase interface {
	// Collect runs one scrape over every configured category and merges
	// new items into the current week's archive
	Collect(ctx context.Context) (*model.CollectReport, error)

	// ListItems returns the archived items for the given week
	ListItems(ctx context.Context, week model.Week) ([]model.Item, error)
}

package interfaces

import "github.com/yamori/gleaner/pkg/domain/model"

// ItemStore defines operations on the weekly news archive
type ItemStore interface {
	// Load returns the items archived for the week; a missing archive
	// yields an empty slice
	Load(week model.Week) ([]model.Item, error)

	// LoadIndex returns the archived items together with the set of
	// known item IDs
	LoadIndex(week model.Week) ([]model.Item, map[string]struct{}, error)

	// Save replaces the week's archive with items
	Save(week model.Week, items []model.Item) error
}

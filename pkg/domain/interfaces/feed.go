package interfaces

import "context"

// FeedFetcher defines retrieval of a remote feed's raw payload
type FeedFetcher interface {
	// Fetch downloads the feed at url and returns its body
	Fetch(ctx context.Context, url string) ([]byte, error)
}

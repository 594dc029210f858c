package model

// Item is a single news entry collected from an RSS feed.
// The JSON field names define the on-disk archive format, so they must
// stay stable across releases.
type Item struct {
	ID          string `json:"id"`          // Feed guid; may be empty
	Title       string `json:"title"`       // Item title
	Description string `json:"description"` // Plain text, HTML stripped
	Category    string `json:"category"`    // Configured category name
	PubDate     string `json:"pub_date"`    // Publication date, verbatim from the feed
}

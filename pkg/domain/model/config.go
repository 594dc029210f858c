package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Default retry behavior when the configuration file leaves it unset.
const (
	DefaultRetryCount = 3
	DefaultRetryDelay = 2 // seconds
)

// FeedConfig is the feed collection configuration loaded from a JSON file.
type FeedConfig struct {
	// Categories maps a category name to its RSS feed URL.
	Categories map[string]string `json:"categories"`
	// BaseFolder is the directory holding the weekly archive files.
	BaseFolder string `json:"base_folder"`
	// RetryCount is the number of fetch attempts per feed.
	RetryCount int `json:"retry_count"`
	// RetryDelay is the pause between attempts, in seconds.
	RetryDelay int `json:"retry_delay"`
	// LogFile is an optional log destination. Relative paths are resolved
	// against the parent of the configuration file's directory.
	LogFile string `json:"log_file"`
}

// ApplyDefaults fills unset retry parameters.
func (c *FeedConfig) ApplyDefaults() {
	if c.RetryCount == 0 {
		c.RetryCount = DefaultRetryCount
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
}

// Validate checks the configuration for values that would make a collect
// run meaningless.
func (c *FeedConfig) Validate() error {
	if len(c.Categories) == 0 {
		return goerr.New("no categories configured")
	}
	for name, url := range c.Categories {
		if url == "" {
			return goerr.New("category has empty feed URL", goerr.V("category", name))
		}
	}
	if c.BaseFolder == "" {
		return goerr.New("base_folder is not set")
	}
	if c.RetryCount < 1 {
		return goerr.New("retry_count must be at least 1", goerr.V("retry_count", c.RetryCount))
	}
	if c.RetryDelay < 0 {
		return goerr.New("retry_delay must not be negative", goerr.V("retry_delay", c.RetryDelay))
	}
	return nil
}

// Delay returns the retry delay as a duration.
func (c *FeedConfig) Delay() time.Duration {
	return time.Duration(c.RetryDelay) * time.Second
}

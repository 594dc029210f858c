package model

import "time"

// CategoryResult summarizes one category within a collect run.
type CategoryResult struct {
	Category string `json:"category"`
	Fetched  int    `json:"fetched"`
	Added    int    `json:"added"`
	Err      string `json:"error,omitempty"`
}

// CollectReport summarizes a whole collect run.
type CollectReport struct {
	RunID      string           `json:"run_id"`
	Week       Week             `json:"week"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Results    []CategoryResult `json:"results"`
}

// TotalAdded returns the number of items appended to the archive.
func (r *CollectReport) TotalAdded() int {
	var n int
	for _, res := range r.Results {
		n += res.Added
	}
	return n
}

// FailedCategories returns the names of categories whose fetch failed.
func (r *CollectReport) FailedCategories() []string {
	var names []string
	for _, res := range r.Results {
		if res.Err != "" {
			names = append(names, res.Category)
		}
	}
	return names
}

package model

import (
	"fmt"
	"time"
)

// Week identifies one weekly archive by ISO-8601 year and week number.
type Week struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// CurrentWeek returns the ISO week containing t.
func CurrentWeek(t time.Time) Week {
	year, week := t.ISOWeek()
	return Week{Year: year, Week: week}
}

// FileName returns the archive file name for the week.
func (w Week) FileName() string {
	return fmt.Sprintf("news_%d_%d.json", w.Year, w.Week)
}

func (w Week) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Week)
}

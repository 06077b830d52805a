package domain

import (
	"time"
)

// Photo represents a single ingested photo. LocalPath is the date-bucketed
// directory holding the photo bytes and is never exposed to API clients.
type Photo struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	Place     string    `json:"place"`
	LocalPath string    `json:"-"`
}

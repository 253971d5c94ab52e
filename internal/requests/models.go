package requests

import (
	"fmt"
	"time"
)

// Status represents the acquisition lifecycle of a request.
type Status string

const (
	StatusRequested   Status = "requested"
	StatusDownloading Status = "downloading"
	StatusAvailable   Status = "available"
)

// Request records one user-initiated movie acquisition.
type Request struct {
	ID                int64     `json:"id"`
	Phone             string    `json:"phone"`
	Title             string    `json:"title"`
	Year              int       `json:"year,omitempty"`
	TMDBID            int64     `json:"tmdb_id"`
	RadarrID          int64     `json:"radarr_id,omitempty"`
	Status            Status    `json:"status"`
	NotifiedStarted   bool      `json:"notified_started"`
	NotifiedCompleted bool      `json:"notified_completed"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Active reports whether the monitor still needs to track this request.
func (r Request) Active() bool {
	return !r.NotifiedCompleted
}

// DisplayTitle renders the title with its year when known.
func (r Request) DisplayTitle() string {
	if r.Year > 0 {
		return fmt.Sprintf("%s (%d)", r.Title, r.Year)
	}
	return r.Title
}

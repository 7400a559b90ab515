package models

import (
	"fmt"
	"strings"
)

type WatchStatus string

const (
	StatusPlanToWatch WatchStatus = "Plan to Watch"
	StatusWatching    WatchStatus = "Watching"
	StatusCompleted   WatchStatus = "Completed"
	StatusOnHold      WatchStatus = "On-Hold"
	StatusDropped     WatchStatus = "Dropped"
)

// StatusOrder is the order in which grouped listings show their sections.
var StatusOrder = []WatchStatus{
	StatusWatching,
	StatusCompleted,
	StatusPlanToWatch,
	StatusOnHold,
	StatusDropped,
}

func (s WatchStatus) Valid() bool {
	for _, known := range StatusOrder {
		if s == known {
			return true
		}
	}
	return false
}

// ParseWatchStatus accepts the display names as well as the usual
// command line spellings ("plan-to-watch", "on_hold", "watching").
func ParseWatchStatus(raw string) (WatchStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	norm = strings.Join(strings.Fields(norm), " ")

	switch norm {
	case "plan to watch", "plan", "ptw":
		return StatusPlanToWatch, nil
	case "watching":
		return StatusWatching, nil
	case "completed", "done":
		return StatusCompleted, nil
	case "on hold", "onhold", "hold":
		return StatusOnHold, nil
	case "dropped":
		return StatusDropped, nil
	}
	return "", fmt.Errorf("unknown watch status %q", raw)
}

type WatchlistEntry struct {
	ID         int         `json:"id"`
	MediaID    int         `json:"mediaId"`
	MediaType  string      `json:"mediaType"`
	Title      string      `json:"title"`
	PosterPath string      `json:"posterPath"`
	Status     WatchStatus `json:"status"`
	AddedAt    string      `json:"addedAt"`
	Rating     int         `json:"rating"`
}

// WatchlistUpsert is the body of POST /watchlist. The backend inserts or
// updates the status of an existing (user, media) entry.
type WatchlistUpsert struct {
	MediaID    int         `json:"mediaId"`
	MediaType  string      `json:"mediaType"`
	Title      string      `json:"title"`
	PosterPath string      `json:"posterPath"`
	Status     WatchStatus `json:"status"`
}

func (e WatchlistEntry) Upsert(status WatchStatus) WatchlistUpsert {
	return WatchlistUpsert{
		MediaID:    e.MediaID,
		MediaType:  e.MediaType,
		Title:      e.Title,
		PosterPath: e.PosterPath,
		Status:     status,
	}
}

// StatusGroup is one status section of a watchlist.
type StatusGroup struct {
	Status  WatchStatus
	Entries []WatchlistEntry
}

// GroupByStatus splits entries into non-empty sections in StatusOrder.
// Entries with an unknown status are dropped.
func GroupByStatus(entries []WatchlistEntry) []StatusGroup {
	byStatus := make(map[WatchStatus][]WatchlistEntry)
	for _, e := range entries {
		byStatus[e.Status] = append(byStatus[e.Status], e)
	}

	var groups []StatusGroup
	for _, status := range StatusOrder {
		if items := byStatus[status]; len(items) > 0 {
			groups = append(groups, StatusGroup{Status: status, Entries: items})
		}
	}
	return groups
}

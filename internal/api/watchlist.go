package api

import (
	"context"
	"fmt"
	"net/http"

	"cinelume/internal/models"
)

func (c *Client) Watchlist(ctx context.Context) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	if _, err := c.do(ctx, http.MethodGet, "/watchlist", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpsertWatchlist adds an entry or replaces the status of an existing one.
func (c *Client) UpsertWatchlist(ctx context.Context, item models.WatchlistUpsert) error {
	_, err := c.do(ctx, http.MethodPost, "/watchlist", item, nil)
	return err
}

// UpdateWatchlistStatus changes the status of an existing entry in place.
func (c *Client) UpdateWatchlistStatus(ctx context.Context, mediaID int, status models.WatchStatus) error {
	body := struct {
		Status models.WatchStatus `json:"status"`
	}{Status: status}
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/watchlist/%d", mediaID), body, nil)
	return err
}

func (c *Client) RemoveFromWatchlist(ctx context.Context, mediaID int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/watchlist/%d", mediaID), nil, nil)
	return err
}

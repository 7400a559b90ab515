package forms

import (
	"context"
	"fmt"

	"cinelume/internal/apperr"
	"cinelume/internal/models"
	"cinelume/internal/notify"

	"github.com/sirupsen/logrus"
)

type WatchlistAPI interface {
	UpsertWatchlist(ctx context.Context, item models.WatchlistUpsert) error
	RemoveFromWatchlist(ctx context.Context, mediaID int) error
}

// WatchlistState is the loaded watchlist a form keeps in step with the
// backend. *pages.WatchlistPage implements it.
type WatchlistState interface {
	Entry(mediaID int) (models.WatchlistEntry, bool)
	Insert(entry models.WatchlistEntry)
	ReplaceStatus(mediaID int, status models.WatchStatus) bool
	RemoveEntry(mediaID int) bool
}

type WatchlistForm struct {
	base
	api   WatchlistAPI
	state WatchlistState
}

// NewWatchlistForm builds a form. state may be nil when there is no
// loaded listing to reconcile, as on a detail page.
func NewWatchlistForm(api WatchlistAPI, viewer Viewer, state WatchlistState, n notify.Notifier, logger *logrus.Logger) *WatchlistForm {
	return &WatchlistForm{
		base:  newBase(viewer, n, logger),
		api:   api,
		state: state,
	}
}

// Add puts item on the watchlist with status, or updates the status if
// it is already there.
func (f *WatchlistForm) Add(ctx context.Context, item models.WatchlistUpsert) error {
	const op = "add to watchlist"

	if _, err := f.identity(op); err != nil {
		return f.fail(err)
	}
	if item.MediaID <= 0 || item.Title == "" {
		return f.fail(apperr.Validation(op, "Pick a movie or show first."))
	}
	if !item.Status.Valid() {
		return f.fail(apperr.Validation(op, fmt.Sprintf("Unknown status %q.", item.Status)))
	}

	if err := f.api.UpsertWatchlist(ctx, item); err != nil {
		return f.fail(err)
	}

	if f.state != nil {
		f.state.Insert(models.WatchlistEntry{
			MediaID:    item.MediaID,
			MediaType:  item.MediaType,
			Title:      item.Title,
			PosterPath: item.PosterPath,
			Status:     item.Status,
		})
	}

	f.logger.WithFields(logrus.Fields{
		"media_id": item.MediaID,
		"status":   item.Status,
	}).Debug("Watchlist entry saved")
	f.ok(fmt.Sprintf("Added %s to your watchlist as %s.", item.Title, item.Status))
	return nil
}

// ChangeStatus moves an entry of the loaded watchlist to status. The
// local entry is moved only after the backend confirms.
func (f *WatchlistForm) ChangeStatus(ctx context.Context, mediaID int, status models.WatchStatus) error {
	const op = "change watchlist status"

	if _, err := f.identity(op); err != nil {
		return f.fail(err)
	}
	if !status.Valid() {
		return f.fail(apperr.Validation(op, fmt.Sprintf("Unknown status %q.", status)))
	}
	if f.state == nil {
		return f.fail(apperr.Validation(op, "Load the watchlist first."))
	}
	entry, ok := f.state.Entry(mediaID)
	if !ok {
		return f.fail(apperr.Validation(op, fmt.Sprintf("Item %d is not on your watchlist.", mediaID)))
	}
	if entry.Status == status {
		return nil
	}

	if err := f.api.UpsertWatchlist(ctx, entry.Upsert(status)); err != nil {
		return f.fail(err)
	}

	f.state.ReplaceStatus(mediaID, status)
	f.logger.WithFields(logrus.Fields{
		"media_id": mediaID,
		"from":     entry.Status,
		"to":       status,
	}).Debug("Watchlist status changed")
	f.ok(fmt.Sprintf("Moved %s to %s.", entry.Title, status))
	return nil
}

func (f *WatchlistForm) Remove(ctx context.Context, mediaID int) error {
	const op = "remove from watchlist"

	if _, err := f.identity(op); err != nil {
		return f.fail(err)
	}
	if mediaID <= 0 {
		return f.fail(apperr.Validation(op, fmt.Sprintf("invalid media id %d", mediaID)))
	}

	if err := f.api.RemoveFromWatchlist(ctx, mediaID); err != nil {
		return f.fail(err)
	}

	if f.state != nil {
		f.state.RemoveEntry(mediaID)
	}
	f.ok("Removed from your watchlist.")
	return nil
}

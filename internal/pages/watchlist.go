package pages

import (
	"context"

	"cinelume/internal/apperr"
	"cinelume/internal/models"
	"cinelume/internal/notify"
	"cinelume/internal/session"
)

type WatchlistSource interface {
	Watchlist(ctx context.Context) ([]models.WatchlistEntry, error)
}

// Viewer is the read side of the session service.
type Viewer interface {
	LoggedIn() bool
	Current() (session.Identity, bool)
}

type WatchlistPage struct {
	loader[[]models.WatchlistEntry]
	source WatchlistSource
	viewer Viewer
	nav    session.Navigator
}

func NewWatchlistPage(src WatchlistSource, viewer Viewer, nav session.Navigator, n notify.Notifier) *WatchlistPage {
	p := &WatchlistPage{source: src, viewer: viewer, nav: nav}
	p.notifier = n
	return p
}

// Load requires a session; without one it navigates to the login route.
func (p *WatchlistPage) Load(ctx context.Context) error {
	if !p.viewer.LoggedIn() {
		if p.nav != nil {
			p.nav.Navigate(session.RouteLogin)
		}
		return apperr.New(apperr.KindUnauthenticated, "watchlist", "Please log in to see your watchlist.")
	}

	gen := p.begin()
	entries, err := p.source.Watchlist(ctx)
	p.finish(gen, entries, err)
	return err
}

func (p *WatchlistPage) Entries() []models.WatchlistEntry {
	entries, _ := p.snapshot()
	return append([]models.WatchlistEntry(nil), entries...)
}

func (p *WatchlistPage) Empty() bool {
	entries, _ := p.snapshot()
	return len(entries) == 0
}

func (p *WatchlistPage) Entry(mediaID int) (models.WatchlistEntry, bool) {
	entries, _ := p.snapshot()
	for _, e := range entries {
		if e.MediaID == mediaID {
			return e, true
		}
	}
	return models.WatchlistEntry{}, false
}

// Groups returns non-empty status sections in display order.
func (p *WatchlistPage) Groups() []models.StatusGroup {
	entries, _ := p.snapshot()
	return models.GroupByStatus(entries)
}

// ReplaceStatus moves the entry for mediaID to status in local state.
func (p *WatchlistPage) ReplaceStatus(mediaID int, status models.WatchStatus) bool {
	found := false
	p.mutate(func(entries *[]models.WatchlistEntry) {
		next := append([]models.WatchlistEntry(nil), (*entries)...)
		for i := range next {
			if next[i].MediaID == mediaID {
				next[i].Status = status
				found = true
			}
		}
		*entries = next
	})
	return found
}

// Insert adds an entry locally, or replaces the status of an existing one.
func (p *WatchlistPage) Insert(entry models.WatchlistEntry) {
	if p.ReplaceStatus(entry.MediaID, entry.Status) {
		return
	}
	p.mutate(func(entries *[]models.WatchlistEntry) {
		*entries = append([]models.WatchlistEntry{entry}, (*entries)...)
	})
}

func (p *WatchlistPage) RemoveEntry(mediaID int) bool {
	found := false
	p.mutate(func(entries *[]models.WatchlistEntry) {
		next := make([]models.WatchlistEntry, 0, len(*entries))
		for _, e := range *entries {
			if e.MediaID == mediaID {
				found = true
				continue
			}
			next = append(next, e)
		}
		*entries = next
	})
	return found
}

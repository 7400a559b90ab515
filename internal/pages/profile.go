package pages

import (
	"context"
	"net/http"

	"cinelume/internal/apperr"
	"cinelume/internal/models"
	"cinelume/internal/notify"
)

type ProfileSource interface {
	UserStats(ctx context.Context, username string) (*models.UserStats, error)
	UserReviews(ctx context.Context, username string) ([]models.Review, error)
	Profile(ctx context.Context) (*models.Profile, error)
}

type profileData struct {
	username string
	owner    bool
	stats    *models.UserStats
	profile  *models.Profile
	reviews  []models.Review
	notFound bool
}

// ProfilePage shows a user's public stats and reviews, plus the private
// profile when the viewer owns it. The three calls are independent: one
// failing does not hide the others' data.
type ProfilePage struct {
	loader[profileData]
	source ProfileSource
	viewer Viewer
}

func NewProfilePage(src ProfileSource, viewer Viewer, n notify.Notifier) *ProfilePage {
	p := &ProfilePage{source: src, viewer: viewer}
	p.notifier = n
	return p
}

// Load returns the first error encountered; each error is also reported
// to the notifier once.
func (p *ProfilePage) Load(ctx context.Context, username string) error {
	gen := p.begin()

	data := profileData{username: username}
	if id, ok := p.viewer.Current(); ok && id.Username == username {
		data.owner = true
	}

	var errs []error

	stats, err := p.source.UserStats(ctx, username)
	switch {
	case err == nil:
		data.stats = stats
	case apperr.StatusOf(err) == http.StatusNotFound:
		data.notFound = true
	default:
		errs = append(errs, err)
	}

	if !data.notFound {
		if data.owner {
			profile, err := p.source.Profile(ctx)
			if err != nil {
				errs = append(errs, err)
			} else {
				data.profile = profile
			}
		}

		reviews, err := p.source.UserReviews(ctx, username)
		if err != nil {
			errs = append(errs, err)
		} else {
			data.reviews = reviews
		}
	}

	var first error
	if len(errs) > 0 {
		first = errs[0]
	}

	// finish notifies the first error; the rest are reported here so each
	// failed call surfaces exactly once.
	if p.finish(gen, data, first) && p.notifier != nil {
		for _, e := range errs[min(1, len(errs)):] {
			p.notifier.Failure(e)
		}
	}
	return first
}

func (p *ProfilePage) Username() string {
	d, _ := p.snapshot()
	return d.username
}

func (p *ProfilePage) IsOwner() bool {
	d, _ := p.snapshot()
	return d.owner
}

func (p *ProfilePage) NotFound() bool {
	d, _ := p.snapshot()
	return d.notFound
}

func (p *ProfilePage) Stats() *models.UserStats {
	d, _ := p.snapshot()
	return d.stats
}

func (p *ProfilePage) Profile() *models.Profile {
	d, _ := p.snapshot()
	return d.profile
}

func (p *ProfilePage) Reviews() []models.Review {
	d, _ := p.snapshot()
	return d.reviews
}

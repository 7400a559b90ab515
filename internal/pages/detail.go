package pages

import (
	"context"

	"cinelume/internal/api"
	"cinelume/internal/models"
	"cinelume/internal/notify"
)

type DetailPage struct {
	loader[*models.MediaDetails]
	catalog Catalog
	kind    api.MediaKind
}

func NewDetailPage(c Catalog, kind api.MediaKind, n notify.Notifier) *DetailPage {
	p := &DetailPage{catalog: c, kind: kind}
	p.notifier = n
	return p
}

// Load fetches id. Calling Load again with another id before the first
// resolves discards the first result.
func (p *DetailPage) Load(ctx context.Context, id int) error {
	gen := p.begin()
	details, err := p.catalog.Details(ctx, p.kind, id)
	p.finish(gen, details, err)
	return err
}

func (p *DetailPage) Details() *models.MediaDetails {
	d, _ := p.snapshot()
	return d
}

// NotFound is true once a load finished without a usable result.
func (p *DetailPage) NotFound() bool {
	if !p.Loaded() || p.Loading() {
		return false
	}
	return !p.Details().Found()
}

func (p *DetailPage) Trailer() (models.Video, bool) {
	return p.Details().Trailer()
}

package pages

import (
	"context"
	"strings"

	"cinelume/internal/models"
	"cinelume/internal/notify"
)

type searchResult struct {
	query string
	items []models.CatalogItem
}

type SearchPage struct {
	loader[searchResult]
	catalog Catalog
}

func NewSearchPage(c Catalog, n notify.Notifier) *SearchPage {
	p := &SearchPage{catalog: c}
	p.notifier = n
	return p
}

// Load runs query. A blank query clears the results without a request.
func (p *SearchPage) Load(ctx context.Context, query string) error {
	gen := p.begin()

	query = strings.TrimSpace(query)
	if query == "" {
		p.finish(gen, searchResult{}, nil)
		return nil
	}

	page, err := p.catalog.Search(ctx, query)
	res := searchResult{query: query}
	if err == nil {
		res.items = page.Results
	}
	p.finish(gen, res, err)
	return err
}

func (p *SearchPage) Query() string {
	r, _ := p.snapshot()
	return r.query
}

func (p *SearchPage) Results() []models.CatalogItem {
	r, _ := p.snapshot()
	return r.items
}

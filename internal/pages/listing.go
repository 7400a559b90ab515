package pages

import (
	"context"
	"fmt"

	"cinelume/internal/api"
	"cinelume/internal/models"
	"cinelume/internal/notify"

	"golang.org/x/sync/errgroup"
)

// Carousel is one titled row of catalog items.
type Carousel struct {
	Title string
	Items []models.CatalogItem
}

type section struct {
	title string
	fetch func(ctx context.Context) (*models.CatalogPage, error)
}

// ListingPage fetches several catalog lists in parallel and shows them
// only once all have arrived. One failed list fails the page.
type ListingPage struct {
	loader[[]Carousel]
	sections []section
}

func NewHomePage(c Catalog, n notify.Notifier) *ListingPage {
	return newListingPage(n,
		section{"Popular Movies", func(ctx context.Context) (*models.CatalogPage, error) { return c.Movies(ctx, api.MoviesPopular) }},
		section{"Top Rated TV Shows", func(ctx context.Context) (*models.CatalogPage, error) { return c.Shows(ctx, api.TVTopRated) }},
		section{"Trending Today", c.Trending},
	)
}

func NewMoviesPage(c Catalog, n notify.Notifier) *ListingPage {
	return newListingPage(n,
		section{"Popular", func(ctx context.Context) (*models.CatalogPage, error) { return c.Movies(ctx, api.MoviesPopular) }},
		section{"Top Rated", func(ctx context.Context) (*models.CatalogPage, error) { return c.Movies(ctx, api.MoviesTopRated) }},
		section{"Upcoming", func(ctx context.Context) (*models.CatalogPage, error) { return c.Movies(ctx, api.MoviesUpcoming) }},
	)
}

func NewTVPage(c Catalog, n notify.Notifier) *ListingPage {
	return newListingPage(n,
		section{"Popular", func(ctx context.Context) (*models.CatalogPage, error) { return c.Shows(ctx, api.TVPopular) }},
		section{"Top Rated", func(ctx context.Context) (*models.CatalogPage, error) { return c.Shows(ctx, api.TVTopRated) }},
	)
}

func newListingPage(n notify.Notifier, sections ...section) *ListingPage {
	p := &ListingPage{sections: sections}
	p.notifier = n
	return p
}

func (p *ListingPage) Load(ctx context.Context) error {
	gen := p.begin()

	results := make([]Carousel, len(p.sections))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range p.sections {
		i, s := i, s
		g.Go(func() error {
			page, err := s.fetch(gctx)
			if err != nil {
				return fmt.Errorf("loading %s: %w", s.title, err)
			}
			results[i] = Carousel{Title: s.title, Items: page.Results}
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		results = nil
	}
	p.finish(gen, results, err)
	return err
}

func (p *ListingPage) Carousels() []Carousel {
	data, _ := p.snapshot()
	return data
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"cinelume/internal/apperr"
	"cinelume/internal/models"
)

type MovieList string

const (
	MoviesPopular  MovieList = "popular"
	MoviesTopRated MovieList = "top_rated"
	MoviesUpcoming MovieList = "upcoming"
)

type TVList string

const (
	TVPopular  TVList = "popular"
	TVTopRated TVList = "top_rated"
)

type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
)

// ParseMediaKind accepts "movie", "movies", "tv", "show" and "series".
func ParseMediaKind(raw string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "movie", "movies":
		return KindMovie, nil
	case "tv", "show", "series":
		return KindTV, nil
	}
	return "", fmt.Errorf("unknown media type %q", raw)
}

func (c *Client) Movies(ctx context.Context, list MovieList) (*models.CatalogPage, error) {
	var page models.CatalogPage
	if _, err := c.do(ctx, http.MethodGet, "/movies/"+string(list), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Shows(ctx context.Context, list TVList) (*models.CatalogPage, error) {
	var page models.CatalogPage
	if _, err := c.do(ctx, http.MethodGet, "/tv/"+string(list), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Trending(ctx context.Context) (*models.CatalogPage, error) {
	var page models.CatalogPage
	if _, err := c.do(ctx, http.MethodGet, "/trending/all/day", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Genres(ctx context.Context, kind MediaKind) (*models.GenreList, error) {
	var list models.GenreList
	if _, err := c.do(ctx, http.MethodGet, "/genres/"+string(kind), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Details fetches the combined details/credits/videos/recommendations/
// reviews payload for one movie or show.
func (c *Client) Details(ctx context.Context, kind MediaKind, id int) (*models.MediaDetails, error) {
	if id <= 0 {
		return nil, apperr.Validation("details", fmt.Sprintf("invalid media id %d", id))
	}

	path := fmt.Sprintf("/movies/%d", id)
	if kind == KindTV {
		path = fmt.Sprintf("/tv/%d", id)
	}

	var details models.MediaDetails
	if _, err := c.do(ctx, http.MethodGet, path, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) Search(ctx context.Context, query string) (*models.CatalogPage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.Validation("search", "search query cannot be empty")
	}

	params := url.Values{}
	params.Set("query", query)

	var page models.CatalogPage
	if _, err := c.do(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Package pages holds the per-screen controllers: each one fetches its
// data, tracks a loading flag and a typed error, and drops responses that
// resolve after a newer load has started.
package pages

import (
	"context"
	"sync"

	"cinelume/internal/api"
	"cinelume/internal/models"
	"cinelume/internal/notify"
)

// Catalog is the read-only part of the API client the pages use.
type Catalog interface {
	Movies(ctx context.Context, list api.MovieList) (*models.CatalogPage, error)
	Shows(ctx context.Context, list api.TVList) (*models.CatalogPage, error)
	Trending(ctx context.Context) (*models.CatalogPage, error)
	Details(ctx context.Context, kind api.MediaKind, id int) (*models.MediaDetails, error)
	Search(ctx context.Context, query string) (*models.CatalogPage, error)
}

// loader guards one page's state with a generation counter. begin starts
// a new generation; finish applies a result only if no later begin
// happened in between.
type loader[T any] struct {
	mu       sync.Mutex
	gen      uint64
	loading  bool
	loaded   bool
	data     T
	err      error
	notifier notify.Notifier
}

func (l *loader[T]) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.loading = true
	return l.gen
}

func (l *loader[T]) finish(gen uint64, data T, err error) bool {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return false
	}
	l.loading = false
	l.loaded = true
	l.data = data
	l.err = err
	l.mu.Unlock()

	if err != nil && l.notifier != nil {
		l.notifier.Failure(err)
	}
	return true
}

func (l *loader[T]) snapshot() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data, l.err
}

// mutate edits the current data in place under the lock. It starts a new
// generation, so a load already in flight can no longer overwrite the edit.
func (l *loader[T]) mutate(fn func(*T)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.loading = false
	fn(&l.data)
}

func (l *loader[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Loaded reports whether any load has completed.
func (l *loader[T]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

func (l *loader[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

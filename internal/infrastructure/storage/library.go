package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"FilmCatalog/internal/domain"
	"FilmCatalog/internal/ports"
)

// Keys names the two durable entries holding the catalog.
type Keys struct {
	Categories string
	Films      string
}

// DefaultKeys returns the key names used by earlier versions of the catalog.
func DefaultKeys() Keys {
	return Keys{Categories: "rutube_categories", Films: "rutube_films"}
}

// Library persists categories and per-category film collections. It is the
// only writer of both keys; every mutation rewrites both of them in one
// SetMany call.
type Library struct {
	store  ports.KeyValueStore
	keys   Keys
	logger *slog.Logger

	mu          sync.RWMutex
	initialized bool
	categories  *categoryMap
	films       *collectionMap
	committed   snapshot
}

type snapshot struct {
	categories string
	films      string
}

var _ ports.FilmLibrary = (*Library)(nil)

// NewLibrary binds a key-value store; call Init before any other method.
func NewLibrary(store ports.KeyValueStore, keys Keys, log *slog.Logger) *Library {
	if keys.Categories == "" || keys.Films == "" {
		keys = DefaultKeys()
	}
	return &Library{
		store:      store,
		keys:       keys,
		logger:     log,
		categories: newCategoryMap(),
		films:      newCollectionMap(),
	}
}

// Init loads both mappings once. Absent keys yield empty mappings; a present
// but undecodable payload fails with *domain.StorageError and leaves the
// library empty and uninitialized.
func (l *Library) Init(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return nil
	}

	rawCategories, _, err := l.store.Get(ctx, l.keys.Categories)
	if err != nil {
		return &domain.StorageError{Key: l.keys.Categories, Err: err}
	}
	rawFilms, _, err := l.store.Get(ctx, l.keys.Films)
	if err != nil {
		return &domain.StorageError{Key: l.keys.Films, Err: err}
	}

	loaded := snapshot{categories: rawCategories, films: rawFilms}
	categories, films, err := l.decode(loaded)
	if err != nil {
		return err
	}

	l.categories = categories
	l.films = films
	l.committed = loaded
	l.initialized = true

	for _, name := range keysOf(films) {
		if _, ok := categories.Get(name); !ok {
			l.warn("film collection without category", "category", name)
		}
	}
	l.debug("library initialized", "categories", categories.Len(), "collections", films.Len())
	return nil
}

// AddCategory inserts or overwrites the category and ensures it has a film collection.
func (l *Library) AddCategory(ctx context.Context, name, url string, threshold float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return domain.ErrNotInitialized
	}

	l.categories.Set(name, domain.Category{Name: name, URL: url, Threshold: threshold})
	if coll, ok := l.films.Get(name); !ok || coll == nil {
		l.films.Set(name, newFilmMap())
	}

	if err := l.persist(ctx); err != nil {
		return fmt.Errorf("add category %s: %w", name, err)
	}
	return nil
}

// GetCategory returns the category registered under name.
func (l *Library) GetCategory(_ context.Context, name string) (domain.Category, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.initialized {
		return domain.Category{}, false, domain.ErrNotInitialized
	}
	cat, ok := l.categories.Get(name)
	return cat, ok, nil
}

// GetAllCategories lists categories in insertion order.
func (l *Library) GetAllCategories(_ context.Context) ([]domain.Category, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.initialized {
		return nil, domain.ErrNotInitialized
	}
	return valuesOf(l.categories), nil
}

// SaveFilms merges films into the category's collection by id: a known id is
// replaced in place, a new id is appended, everything else is left alone.
// Unregistered categories are rejected with *domain.NotFoundError.
func (l *Library) SaveFilms(ctx context.Context, category string, films []domain.Film) (domain.MergeResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result domain.MergeResult
	if !l.initialized {
		return result, domain.ErrNotInitialized
	}
	if _, ok := l.categories.Get(category); !ok {
		return result, domain.NewCategoryNotFound(category)
	}

	coll, ok := l.films.Get(category)
	if !ok || coll == nil {
		coll = newFilmMap()
		l.films.Set(category, coll)
	}
	for _, film := range films {
		if _, replaced := coll.Set(film.ID, film); replaced {
			result.Replaced++
		} else {
			result.Added++
		}
	}

	if err := l.persist(ctx); err != nil {
		return domain.MergeResult{}, fmt.Errorf("save films for %s: %w", category, err)
	}
	l.debug("films merged", "category", category, "added", result.Added, "replaced", result.Replaced)
	return result, nil
}

// GetFilmsByCategory returns the category's films in insertion order; unknown
// or empty categories yield an empty slice.
func (l *Library) GetFilmsByCategory(_ context.Context, category string) ([]domain.Film, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.initialized {
		return nil, domain.ErrNotInitialized
	}
	coll, ok := l.films.Get(category)
	if !ok || coll == nil {
		return []domain.Film{}, nil
	}
	return valuesOf(coll), nil
}

// UpdateCategoryThreshold changes the threshold of an existing category.
func (l *Library) UpdateCategoryThreshold(ctx context.Context, name string, threshold float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return domain.ErrNotInitialized
	}
	cat, ok := l.categories.Get(name)
	if !ok {
		return domain.NewCategoryNotFound(name)
	}
	cat.Threshold = threshold
	l.categories.Set(name, cat)

	if err := l.persist(ctx); err != nil {
		return fmt.Errorf("update threshold for %s: %w", name, err)
	}
	return nil
}

// persist writes both mappings. On failure the in-memory state is rolled back
// to the last committed payloads. Callers hold l.mu.
func (l *Library) persist(ctx context.Context) error {
	rawCategories, err := json.Marshal(l.categories)
	if err != nil {
		l.rollback()
		return &domain.StorageError{Key: l.keys.Categories, Err: err}
	}
	rawFilms, err := json.Marshal(l.films)
	if err != nil {
		l.rollback()
		return &domain.StorageError{Key: l.keys.Films, Err: err}
	}

	next := snapshot{categories: string(rawCategories), films: string(rawFilms)}
	if err := l.store.SetMany(ctx, map[string]string{
		l.keys.Categories: next.categories,
		l.keys.Films:      next.films,
	}); err != nil {
		l.rollback()
		return &domain.StorageError{Err: err}
	}

	l.committed = next
	return nil
}

func (l *Library) rollback() {
	categories, films, err := l.decode(l.committed)
	if err != nil {
		l.warn("rollback failed", "error", err)
		return
	}
	l.categories = categories
	l.films = films
}

func (l *Library) decode(raw snapshot) (*categoryMap, *collectionMap, error) {
	categories := newCategoryMap()
	if raw.categories != "" && raw.categories != "null" {
		if err := json.Unmarshal([]byte(raw.categories), categories); err != nil {
			return nil, nil, &domain.StorageError{Key: l.keys.Categories, Err: err}
		}
	}

	films := newCollectionMap()
	if raw.films != "" && raw.films != "null" {
		if err := json.Unmarshal([]byte(raw.films), films); err != nil {
			return nil, nil, &domain.StorageError{Key: l.keys.Films, Err: err}
		}
	}
	return categories, films, nil
}

func (l *Library) debug(msg string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *Library) warn(msg string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}

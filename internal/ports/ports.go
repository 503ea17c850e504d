package ports

import (
	"context"
	"time"

	"FilmCatalog/internal/domain"
)

// KeyValueStore is the durable string-keyed store behind the library and the menu.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany writes every entry as one unit where the backend supports it.
	SetMany(ctx context.Context, entries map[string]string) error
	Close() error
}

// PlaylistParser converts a source locator into its ordered film records.
type PlaylistParser interface {
	ParsePlaylist(ctx context.Context, url string, progress domain.ProgressFunc) ([]domain.Film, error)
}

// FilmLibrary persists categories and their film collections.
type FilmLibrary interface {
	Init(ctx context.Context) error
	AddCategory(ctx context.Context, name, url string, threshold float64) error
	GetCategory(ctx context.Context, name string) (domain.Category, bool, error)
	GetAllCategories(ctx context.Context) ([]domain.Category, error)
	SaveFilms(ctx context.Context, category string, films []domain.Film) (domain.MergeResult, error)
	GetFilmsByCategory(ctx context.Context, category string) ([]domain.Film, error)
	UpdateCategoryThreshold(ctx context.Context, name string, threshold float64) error
}

// Notifier publishes refresh digests to an outbound channel. Digests only
// cover categories that gained films.
type Notifier interface {
	PublishDigest(ctx context.Context, digests []domain.RefreshDigest) error
}

// Scheduler controls when periodic refreshes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

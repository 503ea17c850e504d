package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/moby/locker"

	"FilmCatalog/internal/domain"
	"FilmCatalog/internal/logging"
	"FilmCatalog/internal/ports"
)

// CatalogDeps wires the driven adapters into the catalog service.
type CatalogDeps struct {
	Library ports.FilmLibrary
	Parser  ports.PlaylistParser
	Logger  *slog.Logger
}

// Catalog is the entry point for category registration and refresh.
// It holds no catalog state of its own beyond the initialization flag.
type Catalog struct {
	library ports.FilmLibrary
	parser  ports.PlaylistParser
	logger  *slog.Logger
	locks   *locker.Locker

	initMu      sync.Mutex
	initialized bool
}

// NewCatalog constructs the service; Init must succeed before other calls.
func NewCatalog(deps CatalogDeps) *Catalog {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{
		library: deps.Library,
		parser:  deps.Parser,
		logger:  logger,
		locks:   locker.New(),
	}
}

// Init initializes the library once; repeated calls are no-ops.
func (c *Catalog) Init(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.initialized {
		return nil
	}
	if c.library == nil {
		return fmt.Errorf("catalog library is not configured")
	}
	if err := c.library.Init(ctx); err != nil {
		c.logger.Error("catalog init failed", "error", err)
		return fmt.Errorf("init library: %w", err)
	}
	c.initialized = true
	return nil
}

// AddCategory registers the category, parses its playlist and stores the films.
// When the parse fails the category stays registered with no films.
func (c *Catalog) AddCategory(ctx context.Context, name, url string, progress domain.ProgressFunc) (domain.MergeResult, error) {
	if err := c.ready(); err != nil {
		return domain.MergeResult{}, err
	}
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" || url == "" {
		return domain.MergeResult{}, fmt.Errorf("add category: name and url are required: %w", domain.ErrInvalidInput)
	}

	unlock := c.lockCategory(name)
	defer unlock()

	if err := c.library.AddCategory(ctx, name, url, 0); err != nil {
		c.logger.Error("add category failed", "category", name, "error", err)
		return domain.MergeResult{}, err
	}
	c.logger.Info("category registered", "category", name, "url", url)

	return c.parseFilms(ctx, name, url, progress)
}

// UpdateCategory re-parses the stored URL and merges the result into the
// existing films. Unknown names fail with *domain.NotFoundError before any write.
func (c *Catalog) UpdateCategory(ctx context.Context, name string, progress domain.ProgressFunc) (domain.MergeResult, error) {
	if err := c.ready(); err != nil {
		return domain.MergeResult{}, err
	}

	name = strings.TrimSpace(name)
	unlock := c.lockCategory(name)
	defer unlock()

	cat, ok, err := c.library.GetCategory(ctx, name)
	if err != nil {
		return domain.MergeResult{}, err
	}
	if !ok {
		err := domain.NewCategoryNotFound(name)
		c.logger.Warn("update category failed", "category", name, "error", err)
		return domain.MergeResult{}, err
	}

	return c.parseFilms(ctx, cat.Name, cat.URL, progress)
}

// UpdateThreshold changes the downstream filtering cutoff of a category.
func (c *Catalog) UpdateThreshold(ctx context.Context, name string, threshold float64) error {
	if err := c.ready(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if err := c.library.UpdateCategoryThreshold(ctx, name, threshold); err != nil {
		c.logger.Warn("update threshold failed", "category", name, "error", err)
		return err
	}
	return nil
}

// GetFilmsByCategory lists the films of a category; unknown names yield none.
func (c *Catalog) GetFilmsByCategory(ctx context.Context, name string) ([]domain.Film, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.library.GetFilmsByCategory(ctx, name)
}

// GetCategory looks a category up by name.
func (c *Catalog) GetCategory(ctx context.Context, name string) (domain.Category, bool, error) {
	if err := c.ready(); err != nil {
		return domain.Category{}, false, err
	}
	return c.library.GetCategory(ctx, name)
}

// GetAllCategories lists categories in registration order.
func (c *Catalog) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.library.GetAllCategories(ctx)
}

func (c *Catalog) parseFilms(ctx context.Context, name, url string, progress domain.ProgressFunc) (domain.MergeResult, error) {
	if c.parser == nil {
		return domain.MergeResult{}, &domain.ParseError{URL: url, Err: fmt.Errorf("playlist parser is not configured")}
	}

	films, err := c.parser.ParsePlaylist(ctx, url, c.observe(name, progress))
	if err != nil {
		c.logger.Error("parse playlist failed", "category", name, "url", url, "error", err)
		return domain.MergeResult{}, err
	}

	result, err := c.library.SaveFilms(ctx, name, films)
	if err != nil {
		c.logger.Error("save films failed", "category", name, "error", err)
		return domain.MergeResult{}, err
	}

	c.logger.Info("category refreshed",
		"category", name,
		"parsed", len(films),
		"added", result.Added,
		"replaced", result.Replaced)
	return result, nil
}

// observe forwards progress to the caller and logs it at bucket boundaries.
func (c *Catalog) observe(name string, progress domain.ProgressFunc) domain.ProgressFunc {
	sampler := logging.NewProgressSampler(25)
	return func(percent float64) {
		if sampler.ShouldLog(percent) {
			c.logger.Debug("parse progress", "category", name, "percent", percent)
		}
		if progress != nil {
			progress(percent)
		}
	}
}

// lockCategory serializes parse-then-merge runs of one category.
func (c *Catalog) lockCategory(name string) func() {
	c.locks.Lock(name)
	return func() {
		if err := c.locks.Unlock(name); err != nil {
			c.logger.Error("release category lock", "category", name, "error", err)
		}
	}
}

func (c *Catalog) ready() error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if !c.initialized {
		return domain.ErrNotInitialized
	}
	return nil
}

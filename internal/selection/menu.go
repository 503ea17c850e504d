// Package selection keeps the list of category names offered for browsing
// and remembers which one is active.
package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"FilmCatalog/internal/domain"
	"FilmCatalog/internal/ports"
)

const (
	DefaultCategoriesKey = "rutubeParserCategories"
	DefaultActiveKey     = "rutubeParserActive"
)

// Keys names the persisted entries of the menu.
type Keys struct {
	Categories string
	Active     string
}

// DefaultKeys returns the keys used by the command line tool.
func DefaultKeys() Keys {
	return Keys{Categories: DefaultCategoriesKey, Active: DefaultActiveKey}
}

// Menu is an ordered set of category names with one active entry.
type Menu struct {
	store  ports.KeyValueStore
	keys   Keys
	logger *slog.Logger

	mu     sync.RWMutex
	names  []string
	active string
}

// NewMenu builds an empty menu; call Load to restore persisted state.
func NewMenu(store ports.KeyValueStore, keys Keys, log *slog.Logger) *Menu {
	if keys.Categories == "" {
		keys.Categories = DefaultCategoriesKey
	}
	if keys.Active == "" {
		keys.Active = DefaultActiveKey
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Menu{store: store, keys: keys, logger: log}
}

// Load restores names and the active entry. A missing list means an empty menu.
func (m *Menu) Load(ctx context.Context) error {
	raw, ok, err := m.store.Get(ctx, m.keys.Categories)
	if err != nil {
		return &domain.StorageError{Key: m.keys.Categories, Err: err}
	}

	var names []string
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return &domain.StorageError{Key: m.keys.Categories, Err: fmt.Errorf("decode names: %w", err)}
		}
	}
	names = dedupe(names)

	active, _, err := m.store.Get(ctx, m.keys.Active)
	if err != nil {
		return &domain.StorageError{Key: m.keys.Active, Err: err}
	}
	if active != "" && !slices.Contains(names, active) {
		m.logger.Warn("stored active category is not in the menu", "active", active)
		active = ""
	}
	if active == "" && len(names) > 0 {
		active = names[0]
	}

	m.mu.Lock()
	m.names = names
	m.active = active
	m.mu.Unlock()
	return nil
}

// Categories returns a copy of the names in insertion order.
func (m *Menu) Categories() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.names)
}

// ActiveCategory returns the selected name, or "" when the menu is empty.
func (m *Menu) ActiveCategory() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// SetActiveCategory selects name. Unknown names are ignored.
func (m *Menu) SetActiveCategory(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(m.names, name) || m.active == name {
		return nil
	}
	prev := m.active
	m.active = name
	if err := m.persist(ctx); err != nil {
		m.active = prev
		return err
	}
	return nil
}

// AddCategory appends name; the first entry becomes active.
func (m *Menu) AddCategory(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("add menu entry: %w", domain.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.names, name) {
		return nil
	}
	prevNames, prevActive := m.names, m.active
	m.names = append(slices.Clone(m.names), name)
	if m.active == "" {
		m.active = name
	}
	if err := m.persist(ctx); err != nil {
		m.names, m.active = prevNames, prevActive
		return err
	}
	return nil
}

// RemoveCategory drops name. Removing the active entry selects the first
// remaining one, or none.
func (m *Menu) RemoveCategory(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.Index(m.names, name)
	if idx < 0 {
		return nil
	}
	prevNames, prevActive := m.names, m.active
	m.names = slices.Delete(slices.Clone(m.names), idx, idx+1)
	if m.active == name {
		m.active = ""
		if len(m.names) > 0 {
			m.active = m.names[0]
		}
	}
	if err := m.persist(ctx); err != nil {
		m.names, m.active = prevNames, prevActive
		return err
	}
	return nil
}

func (m *Menu) persist(ctx context.Context) error {
	names := m.names
	if names == nil {
		names = []string{}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return &domain.StorageError{Key: m.keys.Categories, Err: err}
	}
	err = m.store.SetMany(ctx, map[string]string{
		m.keys.Categories: string(raw),
		m.keys.Active:     m.active,
	})
	if err != nil {
		m.logger.Error("persist menu failed", "error", err)
		return &domain.StorageError{Key: m.keys.Categories, Err: err}
	}
	return nil
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

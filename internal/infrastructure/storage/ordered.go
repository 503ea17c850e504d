package storage

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"FilmCatalog/internal/domain"
)

type (
	categoryMap   = orderedmap.OrderedMap[string, domain.Category]
	filmMap       = orderedmap.OrderedMap[string, domain.Film]
	collectionMap = orderedmap.OrderedMap[string, *filmMap]
)

func newCategoryMap() *categoryMap     { return orderedmap.New[string, domain.Category]() }
func newFilmMap() *filmMap             { return orderedmap.New[string, domain.Film]() }
func newCollectionMap() *collectionMap { return orderedmap.New[string, *filmMap]() }

// valuesOf lists values oldest first.
func valuesOf[V any](m *orderedmap.OrderedMap[string, V]) []V {
	out := make([]V, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// keysOf lists keys oldest first.
func keysOf[V any](m *orderedmap.OrderedMap[string, V]) []string {
	out := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

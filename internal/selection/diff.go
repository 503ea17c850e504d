package selection

import "FilmCatalog/internal/domain"

// Divergence lists names known to only one side.
type Divergence struct {
	OnlyInMenu    []string
	OnlyInCatalog []string
}

// Empty reports whether menu and catalog agree.
func (d Divergence) Empty() bool {
	return len(d.OnlyInMenu) == 0 && len(d.OnlyInCatalog) == 0
}

// Diff compares menu names with catalog categories. Order follows each input.
func Diff(menuNames []string, categories []domain.Category) Divergence {
	inCatalog := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		inCatalog[c.Name] = struct{}{}
	}
	inMenu := make(map[string]struct{}, len(menuNames))
	for _, n := range menuNames {
		inMenu[n] = struct{}{}
	}

	var d Divergence
	for _, n := range menuNames {
		if _, ok := inCatalog[n]; !ok {
			d.OnlyInMenu = append(d.OnlyInMenu, n)
		}
	}
	for _, c := range categories {
		if _, ok := inMenu[c.Name]; !ok {
			d.OnlyInCatalog = append(d.OnlyInCatalog, c.Name)
		}
	}
	return d
}

package domain

// Category is a named playlist registered in the catalog.
type Category struct {
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	Threshold float64 `json:"threshold"`
}

// Film is a single playable entry extracted from a category's playlist.
// ID is unique within one category only.
type Film struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url"`
}

// MergeResult reports how a batch of films was folded into a collection.
type MergeResult struct {
	Added    int
	Replaced int
}

// Total is the number of films touched by the merge.
func (m MergeResult) Total() int {
	return m.Added + m.Replaced
}

// RefreshDigest lists the films a refresh added to one category.
type RefreshDigest struct {
	Category string
	NewFilms []Film
}

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FilmCatalog/internal/domain"
)

func TestDiff(t *testing.T) {
	cats := []domain.Category{{Name: "drama"}, {Name: "news"}}

	d := Diff([]string{"drama", "comedy"}, cats)
	assert.False(t, d.Empty())
	assert.Equal(t, []string{"comedy"}, d.OnlyInMenu)
	assert.Equal(t, []string{"news"}, d.OnlyInCatalog)

	assert.True(t, Diff([]string{"news", "drama"}, cats).Empty())
	assert.True(t, Diff(nil, nil).Empty())
}

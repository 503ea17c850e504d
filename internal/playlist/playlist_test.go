package playlist

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FilmCatalog/internal/domain"
)

type stubParser struct{ name string }

func (s stubParser) Name() string { return s.name }

func (s stubParser) Parse(context.Context, Request) ([]domain.Film, error) {
	return []domain.Film{{ID: s.name}}, nil
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	reg.Register(stubParser{name: "html"})
	reg.Register(stubParser{name: "json"})

	p, err := reg.Resolve("json")
	require.NoError(t, err)
	assert.Equal(t, "json", p.Name())

	_, err = reg.Resolve("rss")
	assert.EqualError(t, err, "parser rss is not registered")
	assert.Equal(t, []string{"html", "json"}, reg.Names())
}

func TestTrackerMonotonic(t *testing.T) {
	var got []float64
	tr := NewTracker(func(p float64) { got = append(got, p) })

	tr.Report(10)
	tr.Report(5)
	tr.Report(-3)
	tr.Step(1, 2)
	tr.Report(100)
	tr.Report(120)
	tr.Complete()
	tr.Complete()
	tr.Report(60)

	assert.Equal(t, []float64{10, 50, 100}, got)
	assert.Equal(t, float64(100), tr.Last())
}

func TestTrackerIgnoresNaN(t *testing.T) {
	var got []float64
	tr := NewTracker(func(p float64) { got = append(got, p) })

	tr.Report(math.NaN())
	tr.Report(20)
	tr.Report(math.NaN())
	tr.Complete()

	assert.Equal(t, []float64{20, 100}, got)
}

func TestTrackerNilCallback(t *testing.T) {
	tr := NewTracker(nil)
	tr.Step(1, 1)
	tr.Complete()
	assert.Zero(t, tr.Last())

	var nilTracker *Tracker
	nilTracker.Report(50)
	nilTracker.Complete()
}

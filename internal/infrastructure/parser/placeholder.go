package parser

import (
	"context"
	"fmt"
	"time"

	"FilmCatalog/internal/domain"
	"FilmCatalog/internal/playlist"
)

const defaultPlaceholderCount = 10

var placeholderTitles = []string{
	"Thriller with an Unexpected Ending",
	"Secret of the Dark Forest",
	"Last Day on Earth",
	"Mystery of the Old House",
	"Stranger on the Train",
	"The Vanished Girl",
	"Shadow of the Past",
	"Secret Agent",
	"Night of Fear",
	"The Last Witness",
}

// PlaceholderParser synthesizes a fixed sequence of films without any network access.
type PlaceholderParser struct {
	count int
	delay time.Duration
}

var _ playlist.Parser = (*PlaceholderParser)(nil)

// NewPlaceholderParser builds a parser yielding count films, pausing delay per item.
func NewPlaceholderParser(count int, delay time.Duration) *PlaceholderParser {
	if count <= 0 {
		count = defaultPlaceholderCount
	}
	return &PlaceholderParser{count: count, delay: delay}
}

// Name identifies the strategy inside the registry.
func (p *PlaceholderParser) Name() string {
	return "placeholder"
}

// Parse ignores the URL and reports progress after every synthesized item.
func (p *PlaceholderParser) Parse(ctx context.Context, req playlist.Request) ([]domain.Film, error) {
	films := make([]domain.Film, 0, p.count)
	for i := 0; i < p.count; i++ {
		if err := p.wait(ctx); err != nil {
			return nil, err
		}

		films = append(films, domain.Film{
			ID:          fmt.Sprintf("film-%d", i),
			Title:       placeholderTitles[i%len(placeholderTitles)],
			Description: fmt.Sprintf("Placeholder entry %d of %d.", i+1, p.count),
			Thumbnail:   fmt.Sprintf("https://via.placeholder.com/300x200?text=Film+%d", i+1),
			URL:         fmt.Sprintf("https://rutube.ru/video/mock-%d", i),
		})
		req.Progress.Step(i+1, p.count)
	}
	return films, nil
}

func (p *PlaceholderParser) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"FilmCatalog/internal/domain"
	"FilmCatalog/internal/playlist"
)

var errMissingItems = errors.New("unexpected document shape: items missing")

type playlistDocument struct {
	Title string          `json:"title"`
	Items *[]playlistItem `json:"items"`
}

type playlistItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url"`
}

// JSONParser decodes structured playlist documents of the form {"items": [...]}.
type JSONParser struct {
	client *http.Client
	logger *slog.Logger
}

var _ playlist.Parser = (*JSONParser)(nil)

// NewJSONParser wires an HTTP client; nil falls back to http.DefaultClient.
func NewJSONParser(client *http.Client, log *slog.Logger) *JSONParser {
	if client == nil {
		client = http.DefaultClient
	}
	return &JSONParser{client: client, logger: log}
}

// Name identifies the strategy inside the registry.
func (j *JSONParser) Name() string {
	return "json"
}

// Parse fetches the document and extracts one film per listed item.
func (j *JSONParser) Parse(ctx context.Context, req playlist.Request) ([]domain.Film, error) {
	base, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid playlist url: %w", err)
	}

	body, err := fetchBody(ctx, j.client, req.URL, "application/json")
	if err != nil {
		return nil, err
	}

	films, err := decodePlaylist(body, base, req.Progress)
	if err != nil {
		return nil, err
	}
	if j.logger != nil {
		j.logger.Debug("decoded playlist document", "url", req.URL, "films", len(films))
	}
	return films, nil
}

func decodePlaylist(body []byte, base *url.URL, progress *playlist.Tracker) ([]domain.Film, error) {
	var doc playlistDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Items == nil {
		return nil, errMissingItems
	}

	items := *doc.Items
	films := make([]domain.Film, 0, len(items))
	for i, item := range items {
		film, ok := normalizeFilm(domain.Film{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Thumbnail:   resolveURL(base, item.Thumbnail),
			URL:         resolveURL(base, item.URL),
		})
		if !ok {
			return nil, fmt.Errorf("unexpected document shape: item %d has neither id nor url", i)
		}
		films = append(films, film)
		progress.Step(i+1, len(items))
	}
	return films, nil
}

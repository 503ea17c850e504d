package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"FilmCatalog/internal/domain"
	"FilmCatalog/internal/playlist"
)

const itemSelector = ".video-item"

// HTMLParser scrapes playlist pages that list entries as .video-item blocks.
type HTMLParser struct {
	client *http.Client
	logger *slog.Logger
}

var _ playlist.Parser = (*HTMLParser)(nil)

// NewHTMLParser wires an HTTP client; nil falls back to http.DefaultClient.
func NewHTMLParser(client *http.Client, log *slog.Logger) *HTMLParser {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTMLParser{client: client, logger: log}
}

// Name identifies the strategy inside the registry.
func (h *HTMLParser) Name() string {
	return "html"
}

// Parse fetches the page and returns one film per listed entry, in page order.
func (h *HTMLParser) Parse(ctx context.Context, req playlist.Request) ([]domain.Film, error) {
	base, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid playlist url: %w", err)
	}

	body, err := fetchBody(ctx, h.client, req.URL, "text/html")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	items := doc.Find(itemSelector)
	total := items.Length()
	films := make([]domain.Film, 0, total)
	var shapeErr error
	items.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		film, ok := normalizeFilm(parseItem(sel, base))
		if !ok {
			shapeErr = fmt.Errorf("unexpected document shape: item %d has neither id nor url", i)
			return false
		}
		films = append(films, film)
		req.Progress.Step(i+1, total)
		return true
	})
	if shapeErr != nil {
		if h.logger != nil {
			h.logger.Debug("reject playlist", "url", req.URL, "error", shapeErr)
		}
		return nil, shapeErr
	}

	return films, nil
}

func parseItem(sel *goquery.Selection, base *url.URL) domain.Film {
	id, _ := sel.Attr("data-id")
	thumb, _ := sel.Find("img").First().Attr("src")
	href, _ := sel.Find("a[href]").First().Attr("href")

	return domain.Film{
		ID:          id,
		Title:       sel.Find(".video-title").First().Text(),
		Description: sel.Find(".video-description").First().Text(),
		Thumbnail:   resolveURL(base, thumb),
		URL:         resolveURL(base, href),
	}
}

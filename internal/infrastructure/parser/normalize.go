package parser

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"FilmCatalog/internal/domain"
)

func cleanText(value string) string {
	return norm.NFC.String(strings.Join(strings.Fields(value), " "))
}

// derivedID gives id-less entries a stable identity so refreshes merge instead of duplicating.
func derivedID(link string) string {
	if link == "" {
		return ""
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
}

func normalizeFilm(f domain.Film) (domain.Film, bool) {
	f.ID = strings.TrimSpace(f.ID)
	f.Title = cleanText(f.Title)
	f.Description = cleanText(f.Description)
	f.Thumbnail = strings.TrimSpace(f.Thumbnail)
	f.URL = strings.TrimSpace(f.URL)
	if f.ID == "" {
		f.ID = derivedID(f.URL)
	}
	return f, f.ID != ""
}

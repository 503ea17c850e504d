package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"FilmCatalog/internal/domain"
	"FilmCatalog/internal/playlist"
	"FilmCatalog/internal/ports"
)

// StrategySource implements ports.PlaylistParser via registered parser strategies.
type StrategySource struct {
	registry *playlist.Registry
	hosts    map[string]string
	fallback string
	logger   *slog.Logger
}

var _ ports.PlaylistParser = (*StrategySource)(nil)

// NewStrategySource binds hosts (lowercase host -> strategy) and a fallback strategy.
func NewStrategySource(reg *playlist.Registry, hosts map[string]string, fallback string, log *slog.Logger) *StrategySource {
	normalized := make(map[string]string, len(hosts))
	for host, strategy := range hosts {
		normalized[strings.ToLower(strings.TrimSpace(host))] = strategy
	}
	return &StrategySource{
		registry: reg,
		hosts:    normalized,
		fallback: fallback,
		logger:   log,
	}
}

// ParsePlaylist resolves the strategy for rawURL and runs it to completion.
// Any failure is reported as *domain.ParseError and no films are returned.
func (s *StrategySource) ParsePlaylist(ctx context.Context, rawURL string, progress domain.ProgressFunc) ([]domain.Film, error) {
	if s.registry == nil {
		return nil, &domain.ParseError{URL: rawURL, Err: errors.New("parser registry is not configured")}
	}

	name, err := s.strategyFor(rawURL)
	if err != nil {
		return nil, &domain.ParseError{URL: rawURL, Err: err}
	}

	strategy, err := s.registry.Resolve(name)
	if err != nil {
		return nil, &domain.ParseError{URL: rawURL, Err: err}
	}

	s.debug("parse playlist", "url", rawURL, "strategy", name)

	tracker := playlist.NewTracker(progress)
	films, err := strategy.Parse(ctx, playlist.Request{URL: rawURL, Progress: tracker})
	if err != nil {
		return nil, &domain.ParseError{URL: rawURL, Err: err}
	}
	tracker.Complete()

	s.debug("strategy produced films", "url", rawURL, "strategy", name, "count", len(films))
	return films, nil
}

func (s *StrategySource) strategyFor(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid playlist url: %w", err)
	}
	if strategy, ok := s.hosts[strings.ToLower(parsed.Hostname())]; ok {
		return strategy, nil
	}
	if s.fallback == "" {
		return "", fmt.Errorf("no parser configured for host %q", parsed.Hostname())
	}
	return s.fallback, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

package playlist

import (
	"context"
	"fmt"
	"sort"

	"FilmCatalog/internal/domain"
)

// Request carries all parameters required to parse one playlist.
type Request struct {
	URL      string
	Progress *Tracker
	Options  map[string]string
}

// Parser captures a single extraction strategy (HTML page, JSON document, placeholder).
type Parser interface {
	Name() string
	Parse(ctx context.Context, req Request) ([]domain.Film, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: map[string]Parser{}}
}

// Register adds or replaces a parser implementation.
func (r *Registry) Register(parser Parser) {
	if r.parsers == nil {
		r.parsers = map[string]Parser{}
	}
	r.parsers[parser.Name()] = parser
}

// Resolve returns a parser by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Parser, error) {
	if parser, ok := r.parsers[name]; ok {
		return parser, nil
	}
	return nil, fmt.Errorf("parser %s is not registered", name)
}

// Names lists registered strategies in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package kv

import (
	"context"
	"fmt"
	"strings"

	"FilmCatalog/internal/ports"
)

// Supported storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverBadger   = "badger"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and locates a backend.
type Options struct {
	Driver string
	Path   string
	DSN    string
}

// Open builds the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (ports.KeyValueStore, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile, "":
		return OpenFile(opts.Path)
	case DriverBadger:
		return OpenBadger(opts.Path)
	case DriverSQLite:
		return OpenSQLite(ctx, opts.Path)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

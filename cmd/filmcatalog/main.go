package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"FilmCatalog/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, closeApp := newRootCommand()
	err := root.ExecuteContext(ctx)
	if closeErr := closeApp(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
		return 2
	case errors.Is(err, domain.ErrParse):
		return 3
	default:
		return 1
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FilmCatalog/internal/domain"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := "storage:\n  driver: file\n  path: " + filepath.Join(dir, "catalog.json") + "\n" +
		"parser:\n  default: placeholder\n  placeholderCount: 2\n" +
		"logging:\n  level: error\n"
	path := filepath.Join(dir, "filmcatalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FILMCATALOG_CONFIG", "")
	root, closeApp := newRootCommand()
	defer func() { require.NoError(t, closeApp()) }()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddThenListCategories(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := run(t, cfg, "add", "drama", "https://rutube.ru/plst/1")
	require.NoError(t, err)
	assert.Contains(t, out, "drama: 2 added, 0 replaced")

	out, err = run(t, cfg, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "drama")
	assert.Contains(t, out, "https://rutube.ru/plst/1")

	out, err = run(t, cfg, "films", "drama")
	require.NoError(t, err)
	assert.Contains(t, out, "film-1")

	out, err = run(t, cfg, "menu", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "menu and catalog agree")
}

func TestThresholdAndMenu(t *testing.T) {
	cfg := writeTestConfig(t)
	_, err := run(t, cfg, "add", "drama", "https://rutube.ru/plst/1")
	require.NoError(t, err)

	_, err = run(t, cfg, "threshold", "drama", "7.5")
	require.NoError(t, err)
	out, err := run(t, cfg, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "7.5")

	_, err = run(t, cfg, "menu", "remove", "drama")
	require.NoError(t, err)
	out, err = run(t, cfg, "menu", "check")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "catalog only"))
}

func TestMissingCategoryExitCode(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := run(t, cfg, "update", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 2, exitCode(err))

	_, err = run(t, cfg, "threshold", "drama", "high")
	assert.Equal(t, 2, exitCode(err))
}

func TestRegistered(t *testing.T) {
	assert.True(t, registered(nil))
	assert.True(t, registered(fmt.Errorf("add: %w", &domain.ParseError{URL: "u", Err: errors.New("boom")})))
	assert.False(t, registered(&domain.StorageError{Err: errors.New("disk full")}))
	assert.False(t, registered(domain.ErrInvalidInput))
}

func TestAddKeepsMenuInStepWithCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := t.TempDir()
	body := "storage:\n  driver: file\n  path: " + filepath.Join(dir, "catalog.json") + "\n" +
		"parser:\n  default: json\n  retryMax: -1\n" +
		"logging:\n  level: error\n"
	cfg := filepath.Join(dir, "filmcatalog.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o600))

	_, err := run(t, cfg, "add", "broken", server.URL)
	assert.ErrorIs(t, err, domain.ErrParse)

	_, err = run(t, cfg, "add", "   ", server.URL)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := run(t, cfg, "menu", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "menu and catalog agree")

	out, err = run(t, cfg, "menu", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "broken")
}

package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FilmCatalog/internal/playlist"
)

func TestJSONParserParse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"title":"Thrillers","items":[
			{"id":"a","title":"Café","url":"/video/a"},
			{"title":"B","url":"https://example.org/video/b"}
		]}`))
	}))
	defer server.Close()

	p := NewJSONParser(server.Client(), nil)
	films, err := p.Parse(context.Background(), playlist.Request{URL: server.URL + "/list.json"})
	require.NoError(t, err)
	require.Len(t, films, 2)

	assert.Equal(t, "a", films[0].ID)
	assert.Equal(t, "Café", films[0].Title)
	assert.Equal(t, server.URL+"/video/a", films[0].URL)
	assert.Equal(t, derivedID("https://example.org/video/b"), films[1].ID)
}

func TestDecodePlaylistShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"items": [`},
		{name: "missing items", body: `{"title":"x"}`},
		{name: "anonymous item", body: `{"items":[{"title":"no id"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			films, err := decodePlaylist([]byte(tt.body), nil, nil)
			assert.Error(t, err)
			assert.Nil(t, films)
		})
	}
}

func TestDecodePlaylistEmpty(t *testing.T) {
	films, err := decodePlaylist([]byte(`{"items":[]}`), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, films)
}

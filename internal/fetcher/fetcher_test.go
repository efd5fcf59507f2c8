package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const blobJSON = `{
	"id": 12345,
	"title": "Test Title",
	"closed": false,
	"comments": [
		{
			"author": "alice",
			"created_at": "2025-01-01",
			"body_markdown": "Hello\nWorld",
			"pinned": true,
			"children": [
				{"author": "bob", "created_at": "2025-01-02", "body_markdown": "Nested"}
			]
		}
	]
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func TestFetch(t *testing.T) {
	var gotPath, gotCookie string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(blobJSON))
	})

	scrap, err := client.Fetch(context.Background(), "barbaz", "_zenn_session=tok")
	require.NoError(t, err)
	require.Equal(t, "/api/scraps/barbaz/blob.json", gotPath)
	require.Equal(t, "_zenn_session=tok", gotCookie)

	require.Equal(t, "Test Title", scrap.Title)
	require.Len(t, scrap.Comments, 1)
	require.Equal(t, "alice", scrap.Comments[0].Author)
	require.Equal(t, "Hello\nWorld", scrap.Comments[0].Body)
	require.Len(t, scrap.Comments[0].Children, 1)
	require.Equal(t, "bob", scrap.Comments[0].Children[0].Author)
	require.Empty(t, scrap.Comments[0].Children[0].Children, "absent children default to empty")
}

func TestFetchAnonymous(t *testing.T) {
	var sawCookie bool
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		sawCookie = r.Header.Get("Cookie") != ""
		w.Write([]byte(blobJSON))
	})

	_, err := client.Fetch(context.Background(), "barbaz", "")
	require.NoError(t, err)
	require.False(t, sawCookie, "anonymous requests must not carry a Cookie header")
}

func TestFetchNonSuccessStatus(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := client.Fetch(context.Background(), "missing", "")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.Status)
}

func TestFetchMalformedResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "<html>login</html>"},
		{"missing title", `{"comments": []}`},
		{"missing comments", `{"title": "T"}`},
		{"comment missing author", `{"title": "T", "comments": [{"created_at": "1", "body_markdown": "x"}]}`},
		{"nested comment missing body", `{"title": "T", "comments": [{"author": "a", "created_at": "1", "body_markdown": "x", "children": [{"author": "b", "created_at": "2"}]}]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(c.body))
			})
			_, err := client.Fetch(context.Background(), "barbaz", "")
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(server.URL)
	server.Close()

	_, err := client.Fetch(context.Background(), "barbaz", "")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrMalformedResponse))
}

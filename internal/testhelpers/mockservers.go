package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// MockUpstream provides a configurable mock of the upstream media API for
// testing, covering the temporary-auth and gif-search endpoints.
type MockUpstream struct {
	Server *httptest.Server

	Token      string // Token returned from the auth endpoint
	AuthStatus int    // HTTP status for auth requests (200 if not set)
	AuthCalls  int    // Number of auth requests received

	SearchBody     any   // Body returned from the search endpoint on 200
	SearchStatuses []int // Statuses consumed one per search call; empty means 200
	SearchCalls    int   // Number of search requests received

	LastAuthHeader   string     // Captured Authorization header from last search
	LastUserAgent    string     // Captured User-Agent from last request
	LastSearchParams url.Values // Captured query parameters from last search
}

// SetupMockUpstream creates a mock upstream API server with request tracking
// and scriptable response statuses.
func SetupMockUpstream(t *testing.T) *MockUpstream {
	t.Helper()

	mock := &MockUpstream{
		Token:      "test-upstream-token",
		AuthStatus: http.StatusOK,
		SearchBody: map[string]any{
			"gifs":  []any{},
			"page":  1,
			"pages": 1,
			"total": 0,
		},
	}

	router := http.NewServeMux()

	router.HandleFunc("/v2/auth/temporary", func(w http.ResponseWriter, r *http.Request) {
		mock.AuthCalls++
		mock.LastUserAgent = r.Header.Get("User-Agent")

		if mock.AuthStatus != http.StatusOK {
			w.WriteHeader(mock.AuthStatus)
			fmt.Fprint(w, `{"error":"auth unavailable"}`)
			return
		}

		WriteJSON(w, map[string]string{"token": mock.Token})
	})

	router.HandleFunc("/v2/gifs/search", func(w http.ResponseWriter, r *http.Request) {
		mock.SearchCalls++
		mock.LastAuthHeader = r.Header.Get("Authorization")
		mock.LastUserAgent = r.Header.Get("User-Agent")
		mock.LastSearchParams = r.URL.Query()

		status := http.StatusOK
		if len(mock.SearchStatuses) > 0 {
			status = mock.SearchStatuses[0]
			mock.SearchStatuses = mock.SearchStatuses[1:]
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"error":"upstream status %d"}`, status)
			return
		}

		WriteJSON(w, mock.SearchBody)
	})

	mock.Server = httptest.NewServer(router)
	return mock
}

// APIURL returns the mock's equivalent of the upstream API base URL.
func (m *MockUpstream) APIURL() string {
	return m.Server.URL + "/v2"
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.Server.Close()
}

// SearchPage builds a search endpoint body with the given gif IDs and
// pagination values.
func SearchPage(page, pages, total int, ids ...string) map[string]any {
	gifs := make([]any, 0, len(ids))
	for _, id := range ids {
		gifs = append(gifs, map[string]any{
			"id":   id,
			"tags": []string{"tag-a", "tag-b"},
			"urls": map[string]string{
				"thumbnail": "https://thumbs.example.com/" + id + ".jpg",
			},
		})
	}

	return map[string]any{
		"gifs":  gifs,
		"page":  page,
		"pages": pages,
		"total": total,
	}
}

// WriteJSON is a helper function that writes a JSON response.
// It sets the Content-Type header and marshals the payload to JSON.
func WriteJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(payload)
	if err != nil {
		// In test context, this should never happen with valid test data
		http.Error(w, fmt.Sprintf("failed to marshal JSON: %v", err), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(data)
}

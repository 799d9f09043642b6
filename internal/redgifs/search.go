package redgifs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// SearchResponse is the shape relied upon from the upstream search endpoint.
// Every field may be absent; consumers must default rather than fail.
type SearchResponse struct {
	Gifs  []SearchGif `json:"gifs"`
	Page  int         `json:"page"`
	Pages int         `json:"pages"`
	Total int         `json:"total"`
}

type SearchGif struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags"`
	URLs *GifURLs `json:"urls"`
}

type GifURLs struct {
	Thumbnail  string `json:"thumbnail"`
	Poster     string `json:"poster"`
	VThumbnail string `json:"vthumbnail"`
	SD         string `json:"sd"`
}

// Search queries the upstream gif search endpoint. A non-empty query
// searches by tag (lowercased); an empty query requests the global trending
// feed. Both are ordered by the upstream's trending ranking.
func (c *Client) Search(ctx context.Context, token, query string, page, count int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(count))
	params.Set("page", strconv.Itoa(page))
	if query != "" {
		params.Set("tags", strings.ToLower(query))
	} else {
		params.Set("search_text", "")
	}
	params.Set("order", "trending")

	endpoint := c.apiURL + "/gifs/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	c.newRequest(req)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching search results: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: res.StatusCode, Body: string(body)}
	}

	var parsed SearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	return &parsed, nil
}

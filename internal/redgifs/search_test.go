package redgifs

import (
	"context"
	"net/http"
	"testing"

	"github.com/littleslush/gifproxy/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_TagQuery(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "tok", "Sunset", 2, 20)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", mock.LastAuthHeader)
	assert.Equal(t, "sunset", mock.LastSearchParams.Get("tags"))
	assert.Equal(t, "trending", mock.LastSearchParams.Get("order"))
	assert.Equal(t, "2", mock.LastSearchParams.Get("page"))
	assert.Equal(t, "20", mock.LastSearchParams.Get("count"))
	assert.False(t, mock.LastSearchParams.Has("search_text"))
}

func TestSearch_TrendingQuery(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "tok", "", 1, 20)
	require.NoError(t, err)

	assert.True(t, mock.LastSearchParams.Has("search_text"))
	assert.Empty(t, mock.LastSearchParams.Get("search_text"))
	assert.Equal(t, "trending", mock.LastSearchParams.Get("order"))
	assert.False(t, mock.LastSearchParams.Has("tags"))
}

func TestSearch_ParsesResponse(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	mock.SearchBody = testhelpers.SearchPage(2, 5, 100, "abc123", "def456")

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)

	res, err := client.Search(context.Background(), "tok", "sunset", 2, 20)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 5, res.Pages)
	assert.Equal(t, 100, res.Total)
	require.Len(t, res.Gifs, 2)
	assert.Equal(t, "abc123", res.Gifs[0].ID)
	require.NotNil(t, res.Gifs[0].URLs)
	assert.Equal(t, "https://thumbs.example.com/abc123.jpg", res.Gifs[0].URLs.Thumbnail)
}

func TestSearch_PreservesUpstreamStatus(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	mock.SearchStatuses = []int{http.StatusServiceUnavailable}

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "tok", "sunset", 1, 20)
	require.Error(t, err)

	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
	assert.False(t, IsStatus(err, http.StatusTooManyRequests))

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	status, body := upstream.Status()
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "503")
}

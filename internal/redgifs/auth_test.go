package redgifs

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/littleslush/gifproxy/internal/config"
	"github.com/littleslush/gifproxy/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUpstreamConfig(apiURL string) config.UpstreamConfig {
	return config.UpstreamConfig{
		APIURL:          apiURL,
		SiteURL:         "https://media.example.com",
		UserAgent:       "test-browser-agent",
		TokenTTLMinutes: 50,
		PageSize:        20,
	}
}

func TestToken_ReusesCachedToken(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)
	tokens := NewTokenSource(client, 50*time.Minute)

	first, err := tokens.Token(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "test-upstream-token", first)
	assert.Equal(t, 1, mock.AuthCalls)

	// cached token with future expiry: no network call
	second, err := tokens.Token(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, mock.AuthCalls)
}

func TestToken_RefreshesExpiredToken(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)

	// zero TTL: every stored token is already expired
	tokens := NewTokenSource(client, 0)

	_, err = tokens.Token(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, mock.AuthCalls)

	_, err = tokens.Token(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.AuthCalls)
}

func TestToken_ForceRefreshBypassesCache(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)
	tokens := NewTokenSource(client, 50*time.Minute)

	_, err = tokens.Token(context.Background(), false)
	require.NoError(t, err)

	mock.Token = "rotated-token"
	refreshed, err := tokens.Token(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, "rotated-token", refreshed)
	assert.Equal(t, 2, mock.AuthCalls)
}

func TestToken_AuthFailureReturnsUpstreamError(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	mock.AuthStatus = http.StatusServiceUnavailable

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)
	tokens := NewTokenSource(client, 50*time.Minute)

	_, err = tokens.Token(context.Background(), false)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
}

func TestToken_FailureInvalidatesCachedToken(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)
	tokens := NewTokenSource(client, 50*time.Minute)

	_, err = tokens.Token(context.Background(), false)
	require.NoError(t, err)

	// a failed forced refresh clears the cache entirely
	mock.AuthStatus = http.StatusInternalServerError
	_, err = tokens.Token(context.Background(), true)
	require.Error(t, err)

	// next non-forced call must go back to the network
	mock.AuthStatus = http.StatusOK
	_, err = tokens.Token(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, mock.AuthCalls)
}

func TestToken_EmptyTokenIsFailure(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	mock.Token = ""

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)
	tokens := NewTokenSource(client, 50*time.Minute)

	_, err = tokens.Token(context.Background(), false)
	assert.ErrorContains(t, err, "no token")
}

func TestToken_SendsBrowserIdentity(t *testing.T) {
	mock := testhelpers.SetupMockUpstream(t)
	defer mock.Close()

	client, err := New(testUpstreamConfig(mock.APIURL()))
	require.NoError(t, err)
	tokens := NewTokenSource(client, 50*time.Minute)

	_, err = tokens.Token(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, "test-browser-agent", mock.LastUserAgent)
}

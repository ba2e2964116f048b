package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_APIKeyRequired(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestClient_PostJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/echo", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]string{"echo": in["value"]})
	}))
	defer server.Close()

	c, err := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, c.PostJSON(context.Background(), "/echo", map[string]string{"value": "cześć"}, &out))
	assert.Equal(t, "cześć", out["echo"])
}

func TestClient_PostRaw_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Invalid API Key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	c, _ := NewClient("bad-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	_, err := c.PostRaw(context.Background(), "/anything", map[string]string{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid API Key", apiErr.Message)
	assert.ErrorIs(t, err, ErrAPIRequestFailed)
}

func TestClient_PostRaw_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	c, _ := NewClient("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	_, err := c.PostRaw(context.Background(), "/x", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestClient_PostJSON_InvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c, _ := NewClient("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	var out map[string]any
	err := c.PostJSON(context.Background(), "/x", nil, &out)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_PostRaw_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c, _ := NewClient("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.PostRaw(ctx, "/slow", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_RateLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	c, _ := NewClient("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithRateLimit(20))
	require.NotNil(t, c.limiter)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.PostRaw(context.Background(), "/x", nil)
		require.NoError(t, err)
	}
	// バースト1、20rpsなので3回で少なくとも約100ms
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, 3, calls)
}

func TestWithRateLimit_Disabled(t *testing.T) {
	c, err := NewClient("key", WithRateLimit(0))
	require.NoError(t, err)
	assert.Nil(t, c.limiter)
}

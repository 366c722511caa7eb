package nager

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchYear_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2024/US", r.URL.Path)

		resp := []Holiday{
			{
				Date:        "2024-01-01",
				LocalName:   "New Year's Day",
				Name:        "New Year's Day",
				CountryCode: "US",
				Global:      true,
				Types:       []string{"Public"},
			},
			{
				Date:        "2024-07-04",
				LocalName:   "Independence Day",
				Name:        "Independence Day",
				CountryCode: "US",
				Global:      true,
				Types:       []string{"Public"},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	holidays, err := c.FetchYear(context.Background(), 2024, "US")
	require.NoError(t, err)

	require.Len(t, holidays, 2)
	assert.Equal(t, "2024-01-01", holidays[0].Date)
	assert.Equal(t, "New Year's Day", holidays[0].Name)
	assert.Equal(t, "US", holidays[0].CountryCode)
	assert.Equal(t, []string{"Public"}, holidays[0].Types)
}

func TestClient_FetchYears_Concatenates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp []Holiday
		switch r.URL.Path {
		case "/2023/US":
			resp = []Holiday{{Date: "2023-12-25", Name: "Christmas Day", CountryCode: "US"}}
		case "/2024/US":
			resp = []Holiday{{Date: "2024-01-01", Name: "New Year's Day", CountryCode: "US"}}
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	holidays, err := c.FetchYears(context.Background(), []int{2023, 2024}, "US")
	require.NoError(t, err)

	require.Len(t, holidays, 2)
	assert.Equal(t, "2023-12-25", holidays[0].Date)
	assert.Equal(t, "2024-01-01", holidays[1].Date)
}

func TestClient_FetchYear_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"title":"Not Found"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchYear(context.Background(), 2024, "XX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_FetchYears_StopsOnError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchYears(context.Background(), []int{2023, 2024}, "US")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2023")
	assert.Equal(t, 1, calls)
}

func TestClient_FetchYear_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := &Client{
		baseURL:    srv.URL,
		httpClient: &http.Client{Timeout: 50 * time.Millisecond},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	_, err := c.FetchYear(context.Background(), 2024, "US")
	require.Error(t, err)
}

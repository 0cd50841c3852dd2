package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valsync/valsync/pkg/notify"
)

func newTestExtractor(baseURL string) *Extractor {
	return NewExtractor(Config{
		BaseURL:             baseURL,
		Language:            "en-US",
		Timeout:             2 * time.Second,
		MaxAttempts:         3,
		InitialRetryBackoff: 5 * time.Millisecond,
	}, notify.New(nil, nil, 2, "extractor", "test"))
}

func TestNewExtractorDefaults(t *testing.T) {

	e := NewExtractor(Config{}, notify.New(nil, nil, 2, "extractor", "test"))
	assert.Equal(t, 1, e.cfg.MaxAttempts)
	assert.Equal(t, time.Second, e.cfg.InitialRetryBackoff)
}

func TestFetchEndpoint(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agents", r.URL.Path)
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		fmt.Fprint(w, `{"status": 200, "data": [{"displayName": "Jett"}, {"displayName": "Sova"}]}`)
	}))
	defer srv.Close()

	e := newTestExtractor(srv.URL)
	records := e.FetchEndpoint(context.Background(), "agents")
	require.Len(t, records, 2)
	assert.Equal(t, "Jett", records[0].Str("displayName", ""))
}

func TestFetchEndpointAPIError(t *testing.T) {

	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, `{"status": 404, "error": "Not found"}`)
	}))
	defer srv.Close()

	e := newTestExtractor(srv.URL)
	records := e.FetchEndpoint(context.Background(), "agents")
	assert.Empty(t, records)

	// Application-level errors are not retried
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestFetchEndpointRetriesServerErrors(t *testing.T) {

	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"status": 200, "data": [{"displayName": "Ascent"}]}`)
	}))
	defer srv.Close()

	e := newTestExtractor(srv.URL)
	records := e.FetchEndpoint(context.Background(), "maps")
	require.Len(t, records, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestFetchEndpointExhaustedRetries(t *testing.T) {

	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := newTestExtractor(srv.URL)
	records := e.FetchEndpoint(context.Background(), "maps")
	assert.Empty(t, records)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestExtractAllPopulatesEveryEndpoint(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/agents":
			fmt.Fprint(w, `{"status": 200, "data": [{"displayName": "Jett"}]}`)
		default:
			// API reports an error for every other endpoint
			fmt.Fprint(w, `{"status": 500}`)
		}
	}))
	defer srv.Close()

	e := newTestExtractor(srv.URL)
	raw := e.ExtractAll(context.Background(), []string{"agents", "weapons", "maps"})

	// Key present for every requested endpoint, empty on failure
	require.Len(t, raw, 3)
	assert.Len(t, raw["agents"], 1)
	assert.Empty(t, raw["weapons"])
	assert.Empty(t, raw["maps"])
}

func TestFetchEndpointCanceledContext(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestExtractor(srv.URL)
	records := e.FetchEndpoint(ctx, "agents")
	assert.Empty(t, records)
}

func TestMalformedEnvelope(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer srv.Close()

	e := newTestExtractor(srv.URL)
	records := e.FetchEndpoint(context.Background(), "agents")
	assert.Empty(t, records)
}

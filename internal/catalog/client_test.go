package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleCatalog = `[
	{
		"ProductId": "1",
		"ProductNameBold": "Falcon",
		"ProducerName": "Carlsberg",
		"Category": "Öl",
		"Assortment": "FS",
		"AlcoholPercentage": 5.2,
		"Volume": 500,
		"Price": 12.9,
		"RecycleFee": 1,
		"IsCompletelyOutOfStock": false
	},
	{
		"ProductId": "2",
		"ProductNameBold": "Broken",
		"Category": "Öl",
		"AlcoholPercentage": 5.0,
		"Volume": 330,
		"RecycleFee": 1
	}
]`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(ClientConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		Timeout:        2 * time.Second,
		MaxRetries:     2,
		BackoffInitial: time.Millisecond,
		BackoffMax:     5 * time.Millisecond,
	}, zap.NewNop())
	return client, srv
}

func TestClientFetchAll(t *testing.T) {
	t.Parallel()

	var gotKey atomic.Value
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get("Ocp-Apim-Subscription-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleCatalog))
	}))

	products, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, "test-key", gotKey.Load())

	// The product missing its Price is skipped, not fatal.
	require.Len(t, products, 1)
	require.Equal(t, "Falcon", products[0].Name)
	require.InDelta(t, 5.2, products[0].AlcoholPercentage, 1e-9)
	require.InDelta(t, 1, products[0].RecycleFee, 1e-9)
	require.False(t, products[0].IsCompletelyOutOfStock)
}

func TestClientFetchAllRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	products, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, products)
	require.Equal(t, int32(2), calls.Load())
}

func TestClientFetchAllExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.FetchAll(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
	// Initial attempt plus MaxRetries.
	require.Equal(t, int32(3), calls.Load())
}

func TestClientFetchAllMalformedBody(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))

	_, err := client.FetchAll(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode catalog")
}

func TestClientFetchAllContextCanceled(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchAll(ctx)
	require.Error(t, err)
}

package infrastructure

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
)

func TestHTTPPriceOracle_GetCurrentPrice(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Contains(t, r.URL.RawQuery, "contract_addresses=TokenAddr1")
		fmt.Fprint(w, `{"tokenaddr1":{"usd":2.53}}`)
	}))
	defer server.Close()

	oracle := NewHTTPPriceOracle(server.URL, 5*time.Second, nil, time.Second)

	price, err := oracle.GetCurrentPrice(context.Background(), "TokenAddr1")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 2.53, *price)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPPriceOracle_NoReadingForToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	oracle := NewHTTPPriceOracle(server.URL, 5*time.Second, nil, time.Second)

	price, err := oracle.GetCurrentPrice(context.Background(), "UnknownToken")
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestHTTPPriceOracle_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	oracle := NewHTTPPriceOracle(server.URL, 5*time.Second, nil, time.Second)

	_, err := oracle.GetCurrentPrice(context.Background(), "TokenAddr1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestHTTPPriceOracle_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"tokenaddr1":{"usd":2.53}}`)
	}))
	defer server.Close()

	oracle := NewHTTPPriceOracle(server.URL, 5*time.Second, nil, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := oracle.GetCurrentPrice(ctx, "TokenAddr1")
	assert.Error(t, err)
}

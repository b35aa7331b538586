package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDexSignalFeed_ListRecentSignals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/search", r.URL.Path)
		fmt.Fprint(w, `{"pairs":[
			{"baseToken":{"address":"Addr1","symbol":"WIF","name":"dogwifhat"},"priceUsd":"2.53","liquidity":{"usd":150000},"volume":{"h24":900000}},
			{"baseToken":{"address":"","symbol":"BAD","name":"no address"},"priceUsd":"1.0","liquidity":{"usd":1},"volume":{"h24":1}},
			{"baseToken":{"address":"Addr2","symbol":"BONK","name":"Bonk"},"priceUsd":"not-a-number","liquidity":{"usd":1},"volume":{"h24":1}},
			{"baseToken":{"address":"Addr3","symbol":"GOAT","name":"Goat AI"},"priceUsd":"0.55","liquidity":{"usd":80000},"volume":{"h24":120000}}
		]}`)
	}))
	defer server.Close()

	feed := NewDexSignalFeed(server.URL, 5*time.Second)

	signals, err := feed.ListRecentSignals(context.Background(), time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, signals, 2)

	assert.Equal(t, "Addr1", signals[0].TokenAddress)
	assert.Equal(t, "WIF", signals[0].Symbol)
	assert.Equal(t, 2.53, signals[0].Price)
	assert.Equal(t, 150000.0, signals[0].LiquidityUSD)
	assert.Equal(t, "GOAT", signals[1].Symbol)
}

func TestDexSignalFeed_HonorsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pairs":[
			{"baseToken":{"address":"Addr1","symbol":"A","name":"a"},"priceUsd":"1.0","liquidity":{"usd":1},"volume":{"h24":1}},
			{"baseToken":{"address":"Addr2","symbol":"B","name":"b"},"priceUsd":"1.0","liquidity":{"usd":1},"volume":{"h24":1}},
			{"baseToken":{"address":"Addr3","symbol":"C","name":"c"},"priceUsd":"1.0","liquidity":{"usd":1},"volume":{"h24":1}}
		]}`)
	}))
	defer server.Close()

	feed := NewDexSignalFeed(server.URL, 5*time.Second)

	signals, err := feed.ListRecentSignals(context.Background(), time.Now().Add(-time.Minute), 2)
	require.NoError(t, err)
	assert.Len(t, signals, 2)
}

func TestDexSignalFeed_FutureCutoffYieldsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pairs":[
			{"baseToken":{"address":"Addr1","symbol":"A","name":"a"},"priceUsd":"1.0","liquidity":{"usd":1},"volume":{"h24":1}}
		]}`)
	}))
	defer server.Close()

	feed := NewDexSignalFeed(server.URL, 5*time.Second)

	// All signals are stamped at fetch time, so a cutoff past now excludes
	// everything.
	signals, err := feed.ListRecentSignals(context.Background(), time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestDexSignalFeed_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	feed := NewDexSignalFeed(server.URL, 5*time.Second)

	_, err := feed.ListRecentSignals(context.Background(), time.Now().Add(-time.Minute), 10)
	assert.Error(t, err)
}

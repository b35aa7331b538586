package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"longshot/domain/interfaces"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// HTTPPriceOracle fetches current token prices over HTTP with a Redis
// read-through cache. The cache TTL bounds how stale a resolution price
// can be; all resolvers inside one TTL window see the same reading.
type HTTPPriceOracle struct {
	baseURL  string
	client   *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
}

var _ interfaces.PriceOracle = (*HTTPPriceOracle)(nil)

// NewHTTPPriceOracle creates a price oracle. cache may be nil, in which case
// every lookup hits the upstream API.
func NewHTTPPriceOracle(baseURL string, timeout time.Duration, cache *redis.Client, cacheTTL time.Duration) *HTTPPriceOracle {
	return &HTTPPriceOracle{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// GetCurrentPrice returns the token's current USD price, or nil when the
// upstream has no reading for the token
func (o *HTTPPriceOracle) GetCurrentPrice(ctx context.Context, tokenAddress string) (*float64, error) {
	key := "price:" + strings.ToLower(tokenAddress)

	if o.cache != nil {
		cached, err := o.cache.Get(ctx, key).Result()
		if err == nil {
			price, parseErr := strconv.ParseFloat(cached, 64)
			if parseErr == nil {
				return &price, nil
			}
		} else if err != redis.Nil {
			log.WithFields(log.Fields{
				"token": tokenAddress,
				"error": err,
			}).Warn("Price cache read failed, falling through to upstream")
		}
	}

	price, err := o.fetchPrice(ctx, tokenAddress)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, nil
	}

	if o.cache != nil {
		if err := o.cache.Set(ctx, key, strconv.FormatFloat(*price, 'f', -1, 64), o.cacheTTL).Err(); err != nil {
			log.WithFields(log.Fields{
				"token": tokenAddress,
				"error": err,
			}).Warn("Price cache write failed")
		}
	}

	return price, nil
}

// fetchPrice queries the upstream token price endpoint.
// Response shape: {"<address>": {"usd": 1.23}}
func (o *HTTPPriceOracle) fetchPrice(ctx context.Context, tokenAddress string) (*float64, error) {
	endpoint := fmt.Sprintf("%s/simple/token_price/solana?contract_addresses=%s&vs_currencies=usd",
		o.baseURL, url.QueryEscape(tokenAddress))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request failed for token %s: %w", tokenAddress, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("price API returned status %d for token %s: %s", resp.StatusCode, tokenAddress, string(body))
	}

	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	entry, ok := payload[strings.ToLower(tokenAddress)]
	if !ok {
		entry, ok = payload[tokenAddress]
	}
	if !ok {
		return nil, nil
	}

	usd, ok := entry["usd"]
	if !ok {
		return nil, nil
	}

	return &usd, nil
}

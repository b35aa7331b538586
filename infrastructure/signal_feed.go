package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"longshot/domain/entities"
	"longshot/domain/interfaces"
)

// DexSignalFeed pulls recent trending-pair activity from a DEX aggregator API
type DexSignalFeed struct {
	baseURL string
	client  *http.Client
}

var _ interfaces.SignalFeed = (*DexSignalFeed)(nil)

// NewDexSignalFeed creates a signal feed client
func NewDexSignalFeed(baseURL string, timeout time.Duration) *DexSignalFeed {
	return &DexSignalFeed{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type dexPairResponse struct {
	Pairs []struct {
		BaseToken struct {
			Address string `json:"address"`
			Symbol  string `json:"symbol"`
			Name    string `json:"name"`
		} `json:"baseToken"`
		PriceUSD  string `json:"priceUsd"`
		Liquidity struct {
			USD float64 `json:"usd"`
		} `json:"liquidity"`
		Volume struct {
			H24 float64 `json:"h24"`
		} `json:"volume"`
	} `json:"pairs"`
}

// ListRecentSignals fetches the most active pairs and maps them to token
// signals. Pairs with an unparseable price are skipped. The search endpoint
// reports live pairs only, so every signal carries the fetch time as its
// observation time and since acts as a staleness guard on that stamp.
func (f *DexSignalFeed) ListRecentSignals(ctx context.Context, since time.Time, limit int) ([]*entities.TokenSignal, error) {
	endpoint := f.baseURL + "/latest/dex/search?q=solana"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build signal request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signal request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("signal API returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload dexPairResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode signal response: %w", err)
	}

	now := time.Now().UTC()
	if now.Before(since) {
		return nil, nil
	}

	signals := make([]*entities.TokenSignal, 0, limit)
	for _, pair := range payload.Pairs {
		if len(signals) >= limit {
			break
		}
		if pair.BaseToken.Address == "" || pair.BaseToken.Symbol == "" {
			continue
		}

		price, err := strconv.ParseFloat(pair.PriceUSD, 64)
		if err != nil || price <= 0 {
			continue
		}

		signals = append(signals, &entities.TokenSignal{
			TokenAddress: pair.BaseToken.Address,
			Symbol:       pair.BaseToken.Symbol,
			Name:         pair.BaseToken.Name,
			Price:        price,
			LiquidityUSD: pair.Liquidity.USD,
			VolumeUSD:    pair.Volume.H24,
			ObservedAt:   now,
		})
	}

	return signals, nil
}

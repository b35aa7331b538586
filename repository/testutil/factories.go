package testutil

import (
	"fmt"
	"time"

	"longshot/domain/entities"
)

// CreateTestMarket creates an active market with sensible defaults
func CreateTestMarket(tokenAddress, symbol string) *entities.Market {
	return &entities.Market{
		Question:        fmt.Sprintf("Will %s trade above $1.10 in 24h?", symbol),
		TokenAddress:    tokenAddress,
		TokenSymbol:     symbol,
		TokenName:       symbol,
		MarketType:      entities.MarketTypePriceAbove,
		Status:          entities.MarketStatusActive,
		ThresholdPrice:  1.10,
		PriceAtCreation: 1.0,
		Fingerprint:     entities.MarketFingerprint(tokenAddress, entities.MarketTypePriceAbove),
		ResolveAt:       time.Now().UTC().Add(24 * time.Hour),
	}
}

// CreateTestMarketResolvingAt creates a market with a specific deadline
func CreateTestMarketResolvingAt(tokenAddress, symbol string, resolveAt time.Time) *entities.Market {
	market := CreateTestMarket(tokenAddress, symbol)
	market.ResolveAt = resolveAt
	return market
}

// CreateTestBet creates a bet with defaults
func CreateTestBet(marketID int64, userID string, position entities.BetPosition, amount int64) *entities.Bet {
	return &entities.Bet{
		MarketID: marketID,
		UserID:   userID,
		Position: position,
		Amount:   amount,
	}
}

// CreateTestBalanceHistory creates a consistent journal entry
func CreateTestBalanceHistory(userID string, transactionType entities.TransactionType) *entities.BalanceHistory {
	return &entities.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   500,
		BalanceAfter:    400,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

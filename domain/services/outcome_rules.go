package services

import (
	"fmt"

	"longshot/domain/entities"
)

// OutcomeRule decides a market's binary outcome from its resolution price
type OutcomeRule interface {
	Evaluate(market *entities.Market, price float64) bool
}

// priceAboveRule resolves yes iff the token trades at or above the threshold
type priceAboveRule struct{}

func (priceAboveRule) Evaluate(market *entities.Market, price float64) bool {
	return price >= market.ThresholdPrice
}

// priceChangeRule resolves yes iff the move since creation reaches the asked
// percentage. A zero snapshot price can only come from bad generation data
// and resolves no.
type priceChangeRule struct{}

func (priceChangeRule) Evaluate(market *entities.Market, price float64) bool {
	if market.PriceAtCreation <= 0 {
		return false
	}
	changePct := (price - market.PriceAtCreation) / market.PriceAtCreation * 100
	return changePct >= market.ChangePercent
}

// OutcomeRuleFor returns the rule for a market type
func OutcomeRuleFor(marketType entities.MarketType) (OutcomeRule, error) {
	switch marketType {
	case entities.MarketTypePriceAbove:
		return priceAboveRule{}, nil
	case entities.MarketTypePriceChange:
		return priceChangeRule{}, nil
	default:
		return nil, fmt.Errorf("no outcome rule for market type %s", marketType)
	}
}

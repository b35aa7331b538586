package entities

import "time"

// TokenSignal is one observation from the external signal feed:
// a token that recently showed notable market activity.
type TokenSignal struct {
	TokenAddress string
	Symbol       string
	Name         string
	Price        float64
	LiquidityUSD float64
	VolumeUSD    float64
	ObservedAt   time.Time
}

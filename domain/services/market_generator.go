package services

import (
	"context"
	"fmt"
	"time"

	"longshot/config"
	"longshot/domain/entities"
	"longshot/domain/events"
	"longshot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// MarketGeneratorService turns recent token activity into new markets
type MarketGeneratorService struct {
	uowFactory interfaces.UnitOfWorkFactory
	feed       interfaces.SignalFeed
	classifier *NarrativeClassifier
}

// NewMarketGeneratorService creates a new market generator
func NewMarketGeneratorService(uowFactory interfaces.UnitOfWorkFactory, feed interfaces.SignalFeed, classifier *NarrativeClassifier) *MarketGeneratorService {
	return &MarketGeneratorService{
		uowFactory: uowFactory,
		feed:       feed,
		classifier: classifier,
	}
}

// RetagMarkets reapplies the narrative classifier to untagged markets
func (s *MarketGeneratorService) RetagMarkets(ctx context.Context, limit int) (int, error) {
	return s.classifier.RetagMarkets(ctx, s.uowFactory, limit)
}

// RunGenerationCycle fetches recent signals and creates a market for each
// token that clears the activity floors and does not already have one.
// Per-signal failures count as errors and never abort the batch.
func (s *MarketGeneratorService) RunGenerationCycle(ctx context.Context) (*entities.GenerationSummary, error) {
	cfg := config.Get()
	summary := &entities.GenerationSummary{}

	since := time.Now().UTC().Add(-cfg.SignalMaxAge)
	signals, err := s.feed.ListRecentSignals(ctx, since, cfg.SignalFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signals: %w", err)
	}

	// Alternate between the two question shapes so the board stays mixed.
	marketTypes := []entities.MarketType{entities.MarketTypePriceAbove, entities.MarketTypePriceChange}

	for i, signal := range signals {
		if signal.LiquidityUSD < cfg.MinSignalLiquidity || signal.VolumeUSD < cfg.MinSignalVolume {
			summary.Skipped++
			continue
		}

		created, err := s.createMarketFromSignal(ctx, signal, marketTypes[i%len(marketTypes)])
		if err != nil {
			summary.Errors++
			log.WithFields(log.Fields{
				"token": signal.Symbol,
				"error": err,
			}).Error("Failed to create market from signal")
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Skipped++
		}
	}

	log.WithFields(log.Fields{
		"created": summary.Created,
		"skipped": summary.Skipped,
		"errors":  summary.Errors,
	}).Info("Generation cycle complete")

	return summary, nil
}

// createMarketFromSignal creates one market, or returns false when the
// fingerprint dedup window suppresses it
func (s *MarketGeneratorService) createMarketFromSignal(ctx context.Context, signal *entities.TokenSignal, marketType entities.MarketType) (bool, error) {
	now := time.Now().UTC()

	fingerprint := entities.MarketFingerprint(signal.TokenAddress, marketType)
	horizon := s.horizonFor(marketType)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// A market is "recent" for dedup purposes while a fresh one could still
	// be running, so the cutoff reaches one horizon back.
	exists, err := uow.MarketRepository().ActiveOrRecentFingerprintExists(ctx, fingerprint, now.Add(-horizon))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	market := s.buildMarket(signal, marketType, now)
	if narrative := s.classifier.Classify(signal.Symbol, signal.Name); narrative != "" {
		market.Narrative = &narrative
	}

	if err := uow.MarketRepository().Create(ctx, market); err != nil {
		return false, err
	}

	if err := uow.EventBus().Publish(events.MarketCreatedEvent{
		MarketID:    market.ID,
		Question:    market.Question,
		TokenSymbol: market.TokenSymbol,
		MarketType:  marketType,
		ResolveAt:   market.ResolveAt.Unix(),
	}); err != nil {
		return false, fmt.Errorf("failed to publish market created event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"marketID": market.ID,
		"token":    market.TokenSymbol,
		"type":     marketType,
	}).Info("Market created")

	return true, nil
}

func (s *MarketGeneratorService) horizonFor(marketType entities.MarketType) time.Duration {
	cfg := config.Get()
	if marketType == entities.MarketTypePriceChange {
		return cfg.PriceChangeHorizon
	}
	return cfg.PriceAboveHorizon
}

func (s *MarketGeneratorService) buildMarket(signal *entities.TokenSignal, marketType entities.MarketType, now time.Time) *entities.Market {
	cfg := config.Get()

	market := &entities.Market{
		TokenAddress:    signal.TokenAddress,
		TokenSymbol:     signal.Symbol,
		TokenName:       signal.Name,
		MarketType:      marketType,
		Status:          entities.MarketStatusActive,
		PriceAtCreation: signal.Price,
		Fingerprint:     entities.MarketFingerprint(signal.TokenAddress, marketType),
		ResolveAt:       now.Add(s.horizonFor(marketType)),
	}

	switch marketType {
	case entities.MarketTypePriceChange:
		market.ChangePercent = cfg.PriceChangePct
		market.Question = fmt.Sprintf("Will %s move %+.0f%% within %s?",
			signal.Symbol, cfg.PriceChangePct, formatHorizon(cfg.PriceChangeHorizon))
	default:
		market.ThresholdPrice = signal.Price * (1 + cfg.PriceAboveMovePct/100)
		market.Question = fmt.Sprintf("Will %s trade above $%s in %s?",
			signal.Symbol, formatPrice(market.ThresholdPrice), formatHorizon(cfg.PriceAboveHorizon))
	}

	return market
}

// formatPrice keeps small-cap token prices readable without trailing zeros
func formatPrice(price float64) string {
	switch {
	case price >= 1:
		return fmt.Sprintf("%.2f", price)
	case price >= 0.01:
		return fmt.Sprintf("%.4f", price)
	default:
		return fmt.Sprintf("%.8f", price)
	}
}

func formatHorizon(d time.Duration) string {
	hours := int(d.Hours())
	if hours >= 24 && hours%24 == 0 {
		days := hours / 24
		if days == 1 {
			return "24h"
		}
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", hours)
}

package services

import (
	"context"
	"fmt"

	"longshot/domain/entities"
	"longshot/domain/interfaces"
)

// MarketView is a market joined with the viewing user's own bet, if any
type MarketView struct {
	Market *entities.Market
	MyBet  *entities.Bet
}

// MarketCatalogService serves market listings and admin lookups
type MarketCatalogService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewMarketCatalogService creates a new market catalog service
func NewMarketCatalogService(uowFactory interfaces.UnitOfWorkFactory) *MarketCatalogService {
	return &MarketCatalogService{uowFactory: uowFactory}
}

// ListMarkets returns markets matching the filter, each annotated with the
// viewer's own bet when userID is set
func (s *MarketCatalogService) ListMarkets(ctx context.Context, userID string, filter entities.MarketFilter) ([]*MarketView, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	markets, err := uow.MarketRepository().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	myBets := map[int64]*entities.Bet{}
	if userID != "" && len(markets) > 0 {
		ids := make([]int64, len(markets))
		for i, m := range markets {
			ids[i] = m.ID
		}
		myBets, err = uow.BetRepository().GetForMarkets(ctx, userID, ids)
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	views := make([]*MarketView, len(markets))
	for i, m := range markets {
		views[i] = &MarketView{Market: m, MyBet: myBets[m.ID]}
	}

	return views, nil
}

// GetMarket returns a single market with the viewer's own bet
func (s *MarketCatalogService) GetMarket(ctx context.Context, userID string, marketID int64) (*MarketView, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	market, err := uow.MarketRepository().GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if market == nil {
		return nil, entities.ErrMarketNotFound
	}

	var myBet *entities.Bet
	if userID != "" {
		myBet, err = uow.BetRepository().GetByMarketAndUser(ctx, marketID, userID)
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &MarketView{Market: market, MyBet: myBet}, nil
}

// SearchMarkets matches question text or token symbol, for the admin surface
func (s *MarketCatalogService) SearchMarkets(ctx context.Context, query string, limit int) ([]*entities.Market, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	markets, err := uow.MarketRepository().Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return markets, nil
}

// ListMarketBets returns every bet on a market, for the admin surface
func (s *MarketCatalogService) ListMarketBets(ctx context.Context, marketID int64) ([]*entities.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	market, err := uow.MarketRepository().GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if market == nil {
		return nil, entities.ErrMarketNotFound
	}

	bets, err := uow.BetRepository().ListByMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bets, nil
}

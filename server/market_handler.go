package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"longshot/domain/entities"
	"longshot/domain/services"
)

// MarketCatalog is the slice of the catalog service the market handler uses
type MarketCatalog interface {
	ListMarkets(ctx context.Context, userID string, filter entities.MarketFilter) ([]*services.MarketView, error)
	GetMarket(ctx context.Context, userID string, marketID int64) (*services.MarketView, error)
}

// MarketHandler serves the public market catalog
type MarketHandler struct {
	catalog MarketCatalog
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(catalog MarketCatalog) *MarketHandler {
	return &MarketHandler{catalog: catalog}
}

// List handles GET /api/markets
func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := entities.MarketFilter{}
	filter.Limit, filter.Offset = parsePagination(r)

	if v := r.URL.Query().Get("status"); v != "" {
		status := entities.MarketStatus(v)
		switch status {
		case entities.MarketStatusActive, entities.MarketStatusResolved, entities.MarketStatusCancelled:
			filter.Status = &status
		default:
			writeError(w, http.StatusBadRequest, "invalid_input", "unknown market status "+strconv.Quote(v))
			return
		}
	}
	if v := r.URL.Query().Get("type"); v != "" {
		marketType := entities.MarketType(v)
		switch marketType {
		case entities.MarketTypePriceAbove, entities.MarketTypePriceChange:
			filter.MarketType = &marketType
		default:
			writeError(w, http.StatusBadRequest, "invalid_input", "unknown market type "+strconv.Quote(v))
			return
		}
	}

	views, err := h.catalog.ListMarkets(r.Context(), UserID(r.Context()), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := time.Now().UTC()
	markets := make([]*marketResponse, len(views))
	for i, v := range views {
		markets[i] = toMarketViewResponse(v, now)
	}

	writeJSON(w, http.StatusOK, map[string]any{"markets": markets})
}

// Get handles GET /api/markets/{id}
func (h *MarketHandler) Get(w http.ResponseWriter, r *http.Request) {
	marketID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "market id must be an integer")
		return
	}

	view, err := h.catalog.GetMarket(r.Context(), UserID(r.Context()), marketID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMarketViewResponse(view, time.Now().UTC()))
}

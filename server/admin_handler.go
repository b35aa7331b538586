package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"longshot/domain/entities"
)

// AdminCatalog is the slice of the catalog service the admin surface uses
type AdminCatalog interface {
	SearchMarkets(ctx context.Context, query string, limit int) ([]*entities.Market, error)
	ListMarketBets(ctx context.Context, marketID int64) ([]*entities.Bet, error)
}

// Generator runs one market generation pass on demand
type Generator interface {
	RunGenerationCycle(ctx context.Context) (*entities.GenerationSummary, error)
	RetagMarkets(ctx context.Context, limit int) (int, error)
}

// Resolver runs one market resolution pass on demand
type Resolver interface {
	RunResolutionCycle(ctx context.Context) (*entities.ResolutionSummary, error)
}

// AdminHandler serves the operator surface behind the service token
type AdminHandler struct {
	catalog   AdminCatalog
	generator Generator
	resolver  Resolver
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalog AdminCatalog, generator Generator, resolver Resolver) *AdminHandler {
	return &AdminHandler{catalog: catalog, generator: generator, resolver: resolver}
}

// SearchMarkets handles GET /api/admin/markets
func (h *AdminHandler) SearchMarkets(w http.ResponseWriter, r *http.Request) {
	limit, _ := parsePagination(r)

	markets, err := h.catalog.SearchMarkets(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := time.Now().UTC()
	out := make([]*marketResponse, len(markets))
	for i, m := range markets {
		out[i] = toMarketResponse(m, now)
	}

	writeJSON(w, http.StatusOK, map[string]any{"markets": out})
}

// ListMarketBets handles GET /api/admin/markets/{id}/bets
func (h *AdminHandler) ListMarketBets(w http.ResponseWriter, r *http.Request) {
	marketID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "market id must be an integer")
		return
	}

	bets, err := h.catalog.ListMarketBets(r.Context(), marketID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bets": toBetResponses(bets)})
}

// RunGeneration handles POST /api/admin/cycles/generation
func (h *AdminHandler) RunGeneration(w http.ResponseWriter, r *http.Request) {
	summary, err := h.generator.RunGenerationCycle(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"created": summary.Created,
		"skipped": summary.Skipped,
		"errors":  summary.Errors,
	})
}

// RunRetag handles POST /api/admin/cycles/retag
func (h *AdminHandler) RunRetag(w http.ResponseWriter, r *http.Request) {
	limit, _ := parsePagination(r)

	updated, err := h.generator.RetagMarkets(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"retagged": updated})
}

// RunResolution handles POST /api/admin/cycles/resolution
func (h *AdminHandler) RunResolution(w http.ResponseWriter, r *http.Request) {
	summary, err := h.resolver.RunResolutionCycle(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resolved":  summary.Resolved,
		"cancelled": summary.Cancelled,
		"errors":    summary.Errors,
	})
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"longshot/domain/entities"
)

// writeJSON marshals v as JSON and writes it with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// errorResponse is the shape of every error payload
type errorResponse struct {
	Error      string `json:"error"`
	Reason     string `json:"reason"`
	RetryAfter int64  `json:"retry_after,omitempty"`
}

// writeError sends a JSON error with a machine-readable reason code
func writeError(w http.ResponseWriter, status int, reason, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Reason: reason})
}

// writeDomainError maps domain conflicts onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body so internals never leak.
func writeDomainError(w http.ResponseWriter, err error) {
	var claimErr *entities.AlreadyClaimedError
	if errors.As(err, &claimErr) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:      claimErr.Error(),
			Reason:     "already_claimed",
			RetryAfter: int64(claimErr.RetryAfter.Seconds()),
		})
		return
	}

	switch {
	case errors.Is(err, entities.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, entities.ErrMarketNotFound):
		writeError(w, http.StatusNotFound, "market_not_found", err.Error())
	case errors.Is(err, entities.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error())
	case errors.Is(err, entities.ErrMarketClosed):
		writeError(w, http.StatusConflict, "market_closed", err.Error())
	case errors.Is(err, entities.ErrMarketExpired):
		writeError(w, http.StatusConflict, "market_expired", err.Error())
	case errors.Is(err, entities.ErrDuplicateBet):
		writeError(w, http.StatusConflict, "duplicate_bet", err.Error())
	case errors.Is(err, entities.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, "already_claimed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// parsePagination extracts limit/offset from the query string.
// Defaults: limit=50 (max 100), offset=0.
func parsePagination(r *http.Request) (int, int) {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Package listing provides HTTP handlers for on-demand listing searches.
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"car-scout/internal/domain/entity"
	"car-scout/internal/handler/http/respond"
)

// maxBodyBytes caps request bodies; filter sets are tiny.
const maxBodyBytes = 64 << 10

// SearchService runs one aggregated search across the configured marketplaces.
type SearchService interface {
	Search(ctx context.Context, params entity.SearchParams) ([]entity.Listing, error)
}

// SearchHandler serves POST /search. The request body is a JSON filter set;
// the response is a {"listings": [...]} envelope holding the matched listings
// from all marketplaces, deduplicated by URL.
type SearchHandler struct{ Svc SearchService }

// searchResponse is the wire envelope of a search result.
type searchResponse struct {
	Listings []entity.Listing `json:"listings"`
}

func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var params entity.SearchParams
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&params); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	results, err := h.Svc.Search(r.Context(), params)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidInput) {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	if results == nil {
		results = []entity.Listing{}
	}
	respond.JSON(w, http.StatusOK, searchResponse{Listings: results})
}

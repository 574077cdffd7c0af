package http

import (
	"context"
	"net/http"
	"time"

	"car-scout/internal/handler/http/respond"
)

// Pinger verifies that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of a single health check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler serves GET /healthz. It reports storage connectivity; with a
// nil Store (in-memory mode) the storage check is skipped.
type HealthHandler struct {
	Store   Pinger
	Version string
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]CheckStatus{},
		Version:   h.Version,
	}

	if h.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.Store.Ping(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Checks["storage"] = CheckStatus{
				Status:  "unhealthy",
				Message: "storage unreachable",
			}
		} else {
			resp.Checks["storage"] = CheckStatus{Status: "healthy"}
		}
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respond.JSON(w, code, resp)
}

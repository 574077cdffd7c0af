package listing

import "net/http"

// Register registers the listing search route with the given mux.
func Register(mux *http.ServeMux, svc SearchService) {
	mux.Handle("POST /search", SearchHandler{Svc: svc})
}

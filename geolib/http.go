package geolib

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HeaderGeoSource is a response header which carries a source of
// geolocation result.
const HeaderGeoSource = "X-Geo-Source"

type httpHandler struct {
	resolver *Resolver
}

// handleIPInfo always responds with 200: failures are encoded into
// accurate and error fields of the result.
func (h httpHandler) handleIPInfo(w http.ResponseWriter, req *http.Request) {
	result := h.resolver.ResolveRequest(req.Context(), req.Header)

	w.Header().Set("Cache-Control", h.resolver.cacheControl)
	w.Header().Set(HeaderGeoSource, result.Source)

	h.encodeJSON(w, result)
}

func (h httpHandler) handleStats(w http.ResponseWriter, req *http.Request) {
	response := struct {
		Results []*UsageStats `json:"results"`
	}{
		Results: h.resolver.UsageStats(),
	}

	w.Header().Set("Cache-Control", "no-store")

	h.encodeJSON(w, response)
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func newHTTPHandler(resolver *Resolver) http.Handler {
	handler := httpHandler{
		resolver: resolver,
	}
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.GetHead)

	router.Get("/api/ip-info", handler.handleIPInfo)
	router.Get("/api/stats", handler.handleStats)

	return router
}

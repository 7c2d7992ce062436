package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vilniuscoffee/coffee-finder/internal/enrich"
	"github.com/vilniuscoffee/coffee-finder/internal/store"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := errorBody{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listPlaces(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit", nil)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offset", nil)
		return
	}

	places, err := h.store.ListPlaces(r.Context(), store.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		zap.L().Error("api: list places", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	writeJSON(w, http.StatusOK, places)
}

// getPlace resolves {key} as a place id first, then as a slug.
func (h *handler) getPlace(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	p, err := h.store.GetPlace(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		p, err = h.store.GetPlaceBySlug(r.Context(), key)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Place not found", nil)
	case err != nil:
		zap.L().Error("api: get place", zap.String("key", key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err)
	default:
		writeJSON(w, http.StatusOK, p)
	}
}

func (h *handler) enrich(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaceID string `json:"placeId"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.PlaceID) == "" {
		writeError(w, http.StatusBadRequest, "Missing placeId", nil)
		return
	}
	if h.enricher == nil {
		writeError(w, http.StatusServiceUnavailable, "Enrichment is not configured", nil)
		return
	}

	summary, err := h.enricher.Enrich(r.Context(), strings.TrimSpace(req.PlaceID))
	switch {
	case errors.Is(err, enrich.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, "Place not found", nil)
	case err != nil:
		zap.L().Error("api: enrich place", zap.String("place_id", req.PlaceID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err)
	default:
		writeJSON(w, http.StatusOK, summary)
	}
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

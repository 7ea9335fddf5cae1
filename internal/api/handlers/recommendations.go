// Package handlers implements the HTTP API handlers.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jshaw/alphascan/internal/contracts"
	"github.com/jshaw/alphascan/internal/recommend"
	"github.com/jshaw/alphascan/pkg/logger"
)

const defaultLimit = 10

// RecommendationHandler serves persisted scan results
type RecommendationHandler struct {
	repo   *recommend.Repository
	logger *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(repo *recommend.Repository, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		repo:   repo,
		logger: log,
	}
}

// List returns recommendations for a date, optionally filtered by sector.
// GET /api/v1/recommendations?date=2025-09-01&sector=Energy&limit=10
//
// An empty result is not an error: before the first scan of a day there is
// simply nothing to show, and the client gets an empty array.
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var date time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		date = parsed
	} else {
		latest, err := h.repo.LatestDate(ctx)
		if err != nil {
			h.logger.WithError(err).Error("Failed to query latest date")
			respondError(w, http.StatusInternalServerError, "failed to query latest date")
			return
		}
		date = latest
	}
	if date.IsZero() {
		respondJSON(w, http.StatusOK, []contracts.Recommendation{})
		return
	}

	sector := r.URL.Query().Get("sector")
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var recs []contracts.Recommendation
	var err error
	if sector != "" {
		recs, err = h.repo.ListByDateSector(ctx, date, sector, limit)
	} else {
		recs, err = h.repo.ListByDate(ctx, date)
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to query recommendations")
		respondError(w, http.StatusInternalServerError, "failed to query recommendations")
		return
	}

	respondJSON(w, http.StatusOK, recs)
}

// Latest returns all recommendations for the most recent scan date.
// GET /api/v1/recommendations/latest
func (h *RecommendationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, err := h.repo.LatestDate(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query latest date")
		respondError(w, http.StatusInternalServerError, "failed to query latest date")
		return
	}
	if date.IsZero() {
		respondJSON(w, http.StatusOK, []contracts.Recommendation{})
		return
	}

	recs, err := h.repo.ListByDate(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query recommendations")
		respondError(w, http.StatusInternalServerError, "failed to query recommendations")
		return
	}

	respondJSON(w, http.StatusOK, recs)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

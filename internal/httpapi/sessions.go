package httpapi

import (
	"errors"
	"net/http"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/costing"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// POST /v1/sessions/{sessionId}/calculate
func (s *Server) CalculateSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	rec, err := s.Costs.CalculateSession(r.Context(), id)
	if err != nil {
		status := calculationStatus(err)
		if status >= http.StatusInternalServerError {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("session_id", id).Msg("session calculation failed")
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func calculationStatus(err error) int {
	var (
		insufficient *costing.InsufficientDataError
		notFound     *costing.RateNotFoundError
		billing      *costing.BillingError
	)
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &insufficient), errors.As(err, &notFound), errors.Is(err, costing.ErrInvalidTimezone):
		return http.StatusUnprocessableEntity
	case errors.As(err, &billing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) GetBilling(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	rec, err := s.Billing.GetBilling(r.Context(), id)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/costing"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/services"

	"github.com/go-chi/chi/v5"
)

func (s *Server) CreateRate(w http.ResponseWriter, r *http.Request) {
	raw, err := readAll(r, 1<<20)
	if err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	var rate models.Rate
	if err := json.Unmarshal(raw, &rate); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	created, err := s.Rates.CreateRate(r.Context(), rate)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) GetRate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "rateId")
	rate, err := s.Rates.GetRate(r.Context(), id)
	if err != nil {
		var notFound *costing.RateNotFoundError
		if errors.As(err, &notFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

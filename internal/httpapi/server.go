package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/config"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type SessionReader interface {
	GetByID(ctx context.Context, id string) (*models.Session, error)
	ListByCharger(ctx context.Context, cp string, limit int) ([]models.Session, error)
}

type EventIngester interface {
	Ingest(ctx context.Context, raw []byte) (string, error)
}

type CostCalculator interface {
	CalculateSession(ctx context.Context, sessionId string) (models.BillingRecord, error)
}

type BillingReader interface {
	GetBilling(ctx context.Context, sessionId string) (*models.BillingRecord, error)
}

type RateAdmin interface {
	CreateRate(ctx context.Context, rate models.Rate) (models.Rate, error)
	GetRate(ctx context.Context, rateId string) (models.Rate, error)
}

type Server struct {
	Cfg       config.Config
	Log       zerolog.Logger
	Sessions  SessionReader
	Processor EventIngester
	Costs     CostCalculator
	Billing   BillingReader
	Rates     RateAdmin
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.Log))
	r.Use(middleware.Recoverer)

	r.Route("/v1/gateway", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return RequireBearer(s.Cfg.GatewayAPIKey, next) })
		r.Post("/events", s.IngestEvent)
	})

	r.Get("/v1/chargers/{chargePointId}/sessions", s.ListSessionsByCharger)
	r.Get("/v1/sessions/{sessionId}", s.GetSession)
	r.Post("/v1/sessions/{sessionId}/calculate", s.CalculateSession)
	r.Get("/v1/sessions/{sessionId}/billing", s.GetBilling)

	r.Post("/v1/rates", s.CreateRate)
	r.Get("/v1/rates/{rateId}", s.GetRate)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

func (s *Server) IngestEvent(w http.ResponseWriter, r *http.Request) {
	raw, err := readAll(r, 2<<20)
	if err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	evtType, err := s.Processor.Ingest(r.Context(), raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true, "type": evtType})
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	sess, err := s.Sessions.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if sess == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) ListSessionsByCharger(w http.ResponseWriter, r *http.Request) {
	cp := chi.URLParam(r, "chargePointId")
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	items, err := s.Sessions.ListByCharger(r.Context(), cp, limit)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Session{}
	}
	writeJSON(w, http.StatusOK, items)
}

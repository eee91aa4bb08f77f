// Package api exposes the scheduling and billing engine over HTTP. The
// routes and JSON field names preserve the contract the existing client
// depends on.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lankawattwise/lankawattwise/core/logger"
	"github.com/lankawattwise/lankawattwise/core/model"
	"github.com/lankawattwise/lankawattwise/core/optimizer"
	"github.com/lankawattwise/lankawattwise/core/store"
)

// Engine is the application surface the handlers call into.
type Engine interface {
	OptimizePlan(ctx context.Context, userID, date string, alpha float64) (optimizer.Variants, []*optimizer.InfeasibleTaskError, error)
	CurrentPlan(ctx context.Context, userID, date string) ([]model.Recommendation, error)
	PreviewBill(ctx context.Context, userID string, monthlyKWh float64) (model.BillPreview, error)
	ProjectMonth(ctx context.Context, userID string, eomKWh float64) (model.MonthlyProjection, error)
	BlockWarning(ctx context.Context, userID string, taskKWh float64) (model.BlockWarning, error)
	TariffWindows(ctx context.Context, userID string) (model.Tariff, error)
}

// Server wires the engine and config store into an HTTP handler.
type Server struct {
	engine Engine
	store  store.Store
	log    logger.Logger
}

// NewServer builds a Server.
func NewServer(engine Engine, st store.Store, log logger.Logger) *Server {
	return &Server{engine: engine, store: st, log: log}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Post("/scheduler/optimize", s.handleOptimize)
	r.Get("/scheduler/plan", s.handlePlan)

	r.Get("/billing/preview", s.handleBillPreview)
	r.Get("/billing/projection", s.handleProjection)
	r.Get("/billing/blockwarning", s.handleBlockWarning)

	r.Get("/tariff/windows", s.handleTariffWindows)

	r.Route("/config", func(r chi.Router) {
		r.Get("/tariff", s.handleGetTariff)
		r.Post("/tariff", s.handlePutTariff)
		r.Get("/appliances", s.handleGetAppliances)
		r.Post("/appliances", s.handlePutAppliances)
		r.Get("/co2", s.handleGetCarbon)
		r.Post("/co2", s.handlePutCarbonConstant)
		r.Post("/co2model", s.handlePutCarbonModel)
		r.Get("/solar", s.handleGetSolar)
		r.Post("/solar", s.handlePutSolar)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type optimizeRequest struct {
	UserID string  `json:"userId"`
	Date   string  `json:"date"`
	Alpha  float64 `json:"alpha"`
}

type optimizeResponse struct {
	Plan       []model.Recommendation `json:"plan"`
	Balanced   []model.Recommendation `json:"balanced"`
	Cheapest   []model.Recommendation `json:"cheapest"`
	Greenest   []model.Recommendation `json:"greenest"`
	Infeasible []string               `json:"infeasible,omitempty"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, model.NewFieldError("userId", "required"))
		return
	}
	if req.Date == "" {
		req.Date = time.Now().In(model.Timezone).Format("2006-01-02")
	}
	variants, infeasible, err := s.engine.OptimizePlan(r.Context(), req.UserID, req.Date, req.Alpha)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	resp := optimizeResponse{
		Plan:     variants.Balanced,
		Balanced: variants.Balanced,
		Cheapest: variants.Cheapest,
		Greenest: variants.Greenest,
	}
	for _, inf := range infeasible {
		resp.Infeasible = append(resp.Infeasible, inf.Error())
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	date := r.URL.Query().Get("date")
	if userID == "" {
		respondError(w, http.StatusBadRequest, model.NewFieldError("userId", "required"))
		return
	}
	if date == "" {
		date = time.Now().In(model.Timezone).Format("2006-01-02")
	}
	plan, err := s.engine.CurrentPlan(r.Context(), userID, date)
	if errors.Is(err, store.ErrNotFound) {
		respondJSON(w, http.StatusOK, []model.Recommendation{})
		return
	}
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handleTariffWindows(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	t, err := s.engine.TariffWindows(r.Context(), userID)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

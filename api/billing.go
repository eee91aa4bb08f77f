package api

import (
	"net/http"
	"strconv"

	"github.com/lankawattwise/lankawattwise/core/model"
)

func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, model.NewFieldError(key, "not a number")
	}
	return v, nil
}

func (s *Server) handleBillPreview(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	kwh, err := queryFloat(r, "monthlyKWh", 200)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	preview, err := s.engine.PreviewBill(r.Context(), userID, kwh)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, preview)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	kwh, err := queryFloat(r, "eomKWh", 200)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	proj, err := s.engine.ProjectMonth(r.Context(), userID, kwh)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, proj)
}

func (s *Server) handleBlockWarning(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	taskKWh, err := queryFloat(r, "taskKWh", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	warning, err := s.engine.BlockWarning(r.Context(), userID, taskKWh)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, warning)
}

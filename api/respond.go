package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lankawattwise/lankawattwise/core/carbon"
	"github.com/lankawattwise/lankawattwise/core/model"
	"github.com/lankawattwise/lankawattwise/core/store"
	"github.com/lankawattwise/lankawattwise/core/tariff"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]any{"ok": false, "error": err.Error()})
}

// respondEngineError maps domain errors onto HTTP statuses: config-shape
// problems are the caller's to fix, anything else is a server fault.
func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	var fieldErr *model.FieldError
	switch {
	case errors.As(err, &fieldErr),
		errors.Is(err, tariff.ErrInvalidConfig),
		errors.Is(err, carbon.ErrInvalidProfile):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
	default:
		s.log.Errorf("request failed: %v", err)
		respondError(w, http.StatusInternalServerError, err)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lankawattwise/lankawattwise/config"
	"github.com/lankawattwise/lankawattwise/core/carbon"
	"github.com/lankawattwise/lankawattwise/core/model"
	"github.com/lankawattwise/lankawattwise/core/store"
	"github.com/lankawattwise/lankawattwise/core/tariff"
)

func userIDParam(r *http.Request) (string, error) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		return "", model.NewFieldError("userId", "required")
	}
	return userID, nil
}

func (s *Server) handleGetTariff(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	t, err := s.store.GetTariff(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		t = config.DefaultBlockTariff()
	} else if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handlePutTariff(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var t model.Tariff
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	// Validate eagerly so a bad partition never reaches the store.
	if _, err := tariff.New(t); err != nil {
		s.respondEngineError(w, err)
		return
	}
	if err := s.store.PutTariff(r.Context(), userID, t); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// applianceItem is the wizard's appliance payload shape.
type applianceItem struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	RatedPowerW   float64 `json:"ratedPowerW"`
	CycleMinutes  int     `json:"cycleMinutes"`
	EarliestStart string  `json:"earliestStart"`
	LatestFinish  string  `json:"latestFinish"`
	RunsPerWeek   int     `json:"runsPerWeek"`
}

func (s *Server) handleGetAppliances(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	tasks, err := s.store.GetTasks(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		tasks = nil
	} else if err != nil {
		s.respondEngineError(w, err)
		return
	}
	items := make([]applianceItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, applianceItem{
			ID:            t.ID,
			Name:          t.ApplianceID,
			RatedPowerW:   t.RatedPowerW,
			CycleMinutes:  t.DurationMinutes,
			EarliestStart: t.Earliest,
			LatestFinish:  t.Latest,
			RunsPerWeek:   t.RepeatsPerWeek,
		})
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handlePutAppliances(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var items []applianceItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	tasks := make([]model.Task, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			respondError(w, http.StatusUnprocessableEntity, model.NewFieldError("id", "required"))
			return
		}
		if it.CycleMinutes <= 0 {
			respondError(w, http.StatusUnprocessableEntity, model.NewFieldError("cycleMinutes", "must be positive"))
			return
		}
		earliest := it.EarliestStart
		if earliest == "" {
			earliest = "06:00"
		}
		latest := it.LatestFinish
		if latest == "" {
			latest = "22:00"
		}
		if _, err := model.ParseMinuteOfDay(earliest); err != nil {
			respondError(w, http.StatusUnprocessableEntity, model.NewFieldError("earliestStart", err.Error()))
			return
		}
		if _, err := model.ParseMinuteOfDay(latest); err != nil {
			respondError(w, http.StatusUnprocessableEntity, model.NewFieldError("latestFinish", err.Error()))
			return
		}
		name := it.Name
		if name == "" {
			name = it.ID
		}
		tasks = append(tasks, model.Task{
			ID:              it.ID,
			ApplianceID:     name,
			RatedPowerW:     it.RatedPowerW,
			DurationMinutes: it.CycleMinutes,
			Earliest:        earliest,
			Latest:          latest,
			RepeatsPerWeek:  it.RunsPerWeek,
		})
	}
	if err := s.store.PutTasks(r.Context(), userID, tasks); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGetCarbon(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := s.store.GetCarbon(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		p = config.DefaultCarbonProfile()
	} else if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutCarbonConstant(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		DefaultKgPerKWh float64 `json:"defaultKgPerKWh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p := model.CarbonProfile{ModelType: model.CarbonConstant, KgPerKWh: body.DefaultKgPerKWh}
	if _, err := carbon.New(p); err != nil {
		s.respondEngineError(w, err)
		return
	}
	if err := s.store.PutCarbon(r.Context(), userID, p); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handlePutCarbonModel(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var p model.CarbonProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := carbon.New(p); err != nil {
		s.respondEngineError(w, err)
		return
	}
	if err := s.store.PutCarbon(r.Context(), userID, p); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGetSolar(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	cfg, err := s.store.GetSolar(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		cfg = model.SolarConfig{}
	} else if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutSolar(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var cfg model.SolarConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if cfg.Scheme != "" || cfg.ExportPriceLKR != 0 || len(cfg.DailyProfile) > 0 {
		cfg.Enabled = true
	}
	switch cfg.Scheme {
	case "", model.NetMetering, model.NetAccounting, model.NetPlus:
	default:
		respondError(w, http.StatusUnprocessableEntity, model.NewFieldError("scheme", "unknown scheme"))
		return
	}
	if err := s.store.PutSolar(r.Context(), userID, cfg); err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

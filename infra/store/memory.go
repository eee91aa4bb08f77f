package store

import (
	"context"
	"sync"
	"time"

	"github.com/lankawattwise/lankawattwise/core/model"
	corestore "github.com/lankawattwise/lankawattwise/core/store"
)

// MemoryStore is an in-memory Store implementation used in tests and demos.
type MemoryStore struct {
	mu      sync.RWMutex
	tariffs map[string]model.Tariff
	tasks   map[string][]model.Task
	carbon  map[string]model.CarbonProfile
	solar   map[string]model.SolarConfig
	usage   map[string][]model.UsageRecord
	plans   map[string][]model.Recommendation
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tariffs: make(map[string]model.Tariff),
		tasks:   make(map[string][]model.Task),
		carbon:  make(map[string]model.CarbonProfile),
		solar:   make(map[string]model.SolarConfig),
		usage:   make(map[string][]model.UsageRecord),
		plans:   make(map[string][]model.Recommendation),
	}
}

func (m *MemoryStore) GetTariff(_ context.Context, userID string) (model.Tariff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tariffs[userID]
	if !ok {
		return model.Tariff{}, corestore.ErrNotFound
	}
	return t, nil
}

func (m *MemoryStore) PutTariff(_ context.Context, userID string, t model.Tariff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tariffs[userID] = t
	return nil
}

func (m *MemoryStore) GetTasks(_ context.Context, userID string) ([]model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tasks, ok := m.tasks[userID]
	if !ok {
		return nil, corestore.ErrNotFound
	}
	return tasks, nil
}

func (m *MemoryStore) PutTasks(_ context.Context, userID string, tasks []model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[userID] = tasks
	return nil
}

func (m *MemoryStore) GetCarbon(_ context.Context, userID string) (model.CarbonProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.carbon[userID]
	if !ok {
		return model.CarbonProfile{}, corestore.ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) PutCarbon(_ context.Context, userID string, p model.CarbonProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carbon[userID] = p
	return nil
}

func (m *MemoryStore) GetSolar(_ context.Context, userID string) (model.SolarConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.solar[userID]
	if !ok {
		return model.SolarConfig{}, corestore.ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) PutSolar(_ context.Context, userID string, s model.SolarConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solar[userID] = s
	return nil
}

func (m *MemoryStore) GetUsage(_ context.Context, userID string, from, to time.Time) ([]model.UsageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []model.UsageRecord
	for _, r := range m.usage[userID] {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

func (m *MemoryStore) PutUsage(_ context.Context, userID string, rec model.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage[userID] = append(m.usage[userID], rec)
	return nil
}

func (m *MemoryStore) GetPlan(_ context.Context, userID, date string) ([]model.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.plans[userID+"|"+date]
	if !ok {
		return nil, corestore.ErrNotFound
	}
	return plan, nil
}

func (m *MemoryStore) PutPlan(_ context.Context, userID, date string, plan []model.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[userID+"|"+date] = plan
	return nil
}

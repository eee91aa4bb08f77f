// Package store defines the consumed configuration and history interfaces.
// The engine reads these before optimizing; it performs no I/O itself.
// Adapters live in infra/store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/lankawattwise/lankawattwise/core/model"
)

// ErrNotFound is returned when a user has no stored value for a key.
var ErrNotFound = errors.New("not found")

// TariffStore holds the current tariff per user, replaced wholesale to
// preserve the partition/ordering invariants.
type TariffStore interface {
	GetTariff(ctx context.Context, userID string) (model.Tariff, error)
	PutTariff(ctx context.Context, userID string, t model.Tariff) error
}

// TaskStore holds the flexible task definitions per user.
type TaskStore interface {
	GetTasks(ctx context.Context, userID string) ([]model.Task, error)
	PutTasks(ctx context.Context, userID string, tasks []model.Task) error
}

// CarbonStore holds the carbon intensity model per user.
type CarbonStore interface {
	GetCarbon(ctx context.Context, userID string) (model.CarbonProfile, error)
	PutCarbon(ctx context.Context, userID string, p model.CarbonProfile) error
}

// SolarStore holds the rooftop solar configuration per user.
type SolarStore interface {
	GetSolar(ctx context.Context, userID string) (model.SolarConfig, error)
	PutSolar(ctx context.Context, userID string, s model.SolarConfig) error
}

// UsageStore exposes historical daily consumption, owned by the external
// reporting collaborator and read for month-to-date aggregation.
type UsageStore interface {
	GetUsage(ctx context.Context, userID string, from, to time.Time) ([]model.UsageRecord, error)
	PutUsage(ctx context.Context, userID string, rec model.UsageRecord) error
}

// PlanStore caches the latest plan per user and date so the client can read
// it back without re-optimizing.
type PlanStore interface {
	GetPlan(ctx context.Context, userID, date string) ([]model.Recommendation, error)
	PutPlan(ctx context.Context, userID, date string, plan []model.Recommendation) error
}

// Store aggregates all per-user stores.
type Store interface {
	TariffStore
	TaskStore
	CarbonStore
	SolarStore
	UsageStore
	PlanStore
}

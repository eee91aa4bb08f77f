// Package store provides persistence adapters for the consumed config and
// usage interfaces.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lankawattwise/lankawattwise/core/model"
	corestore "github.com/lankawattwise/lankawattwise/core/store"
)

// SQLiteStore persists per-user configuration, usage history and cached
// plans in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS user_config (
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, kind)
	);

	CREATE TABLE IF NOT EXISTS usage_records (
		user_id TEXT NOT NULL,
		day TEXT NOT NULL,
		kwh REAL NOT NULL,
		PRIMARY KEY (user_id, day)
	);

	CREATE TABLE IF NOT EXISTS plans (
		user_id TEXT NOT NULL,
		day TEXT NOT NULL,
		payload TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, day)
	);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

const (
	kindTariff = "tariff"
	kindTasks  = "tasks"
	kindCarbon = "carbon"
	kindSolar  = "solar"
)

func (s *SQLiteStore) putConfig(ctx context.Context, userID, kind string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_config (user_id, kind, payload, updated_at) VALUES (?, ?, ?, ?)`,
		userID, kind, string(b), time.Now().UTC())
	return err
}

func (s *SQLiteStore) getConfig(ctx context.Context, userID, kind string, v any) error {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM user_config WHERE user_id = ? AND kind = ?`, userID, kind).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return corestore.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(payload), v)
}

// GetTariff returns the stored tariff for a user.
func (s *SQLiteStore) GetTariff(ctx context.Context, userID string) (model.Tariff, error) {
	var t model.Tariff
	err := s.getConfig(ctx, userID, kindTariff, &t)
	return t, err
}

// PutTariff replaces the tariff wholesale.
func (s *SQLiteStore) PutTariff(ctx context.Context, userID string, t model.Tariff) error {
	return s.putConfig(ctx, userID, kindTariff, t)
}

// GetTasks returns the stored task definitions for a user.
func (s *SQLiteStore) GetTasks(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	err := s.getConfig(ctx, userID, kindTasks, &tasks)
	return tasks, err
}

// PutTasks replaces the task list.
func (s *SQLiteStore) PutTasks(ctx context.Context, userID string, tasks []model.Task) error {
	return s.putConfig(ctx, userID, kindTasks, tasks)
}

// GetCarbon returns the stored carbon model for a user.
func (s *SQLiteStore) GetCarbon(ctx context.Context, userID string) (model.CarbonProfile, error) {
	var p model.CarbonProfile
	err := s.getConfig(ctx, userID, kindCarbon, &p)
	return p, err
}

// PutCarbon replaces the carbon model.
func (s *SQLiteStore) PutCarbon(ctx context.Context, userID string, p model.CarbonProfile) error {
	return s.putConfig(ctx, userID, kindCarbon, p)
}

// GetSolar returns the stored solar configuration for a user.
func (s *SQLiteStore) GetSolar(ctx context.Context, userID string) (model.SolarConfig, error) {
	var cfg model.SolarConfig
	err := s.getConfig(ctx, userID, kindSolar, &cfg)
	return cfg, err
}

// PutSolar replaces the solar configuration.
func (s *SQLiteStore) PutSolar(ctx context.Context, userID string, cfg model.SolarConfig) error {
	return s.putConfig(ctx, userID, kindSolar, cfg)
}

// GetUsage returns daily usage records within [from, to].
func (s *SQLiteStore) GetUsage(ctx context.Context, userID string, from, to time.Time) ([]model.UsageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, kwh FROM usage_records WHERE user_id = ? AND day >= ? AND day <= ? ORDER BY day`,
		userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.UsageRecord
	for rows.Next() {
		var day string
		var kwh float64
		if err := rows.Scan(&day, &kwh); err != nil {
			return nil, err
		}
		d, err := time.ParseInLocation("2006-01-02", day, model.Timezone)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		res = append(res, model.UsageRecord{Date: d, KWh: kwh})
	}
	return res, rows.Err()
}

// PutUsage upserts one daily record.
func (s *SQLiteStore) PutUsage(ctx context.Context, userID string, rec model.UsageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO usage_records (user_id, day, kwh) VALUES (?, ?, ?)`,
		userID, rec.Date.In(model.Timezone).Format("2006-01-02"), rec.KWh)
	return err
}

// GetPlan returns the cached plan for a user and date.
func (s *SQLiteStore) GetPlan(ctx context.Context, userID, date string) ([]model.Recommendation, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM plans WHERE user_id = ? AND day = ?`, userID, date).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, corestore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var plan []model.Recommendation
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// PutPlan caches the latest plan for a user and date.
func (s *SQLiteStore) PutPlan(ctx context.Context, userID, date string, plan []model.Recommendation) error {
	b, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO plans (user_id, day, payload, updated_at) VALUES (?, ?, ?, ?)`,
		userID, date, string(b), time.Now().UTC())
	return err
}

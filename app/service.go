// Package app wires configuration, storage, metrics and the HTTP API into
// a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lankawattwise/lankawattwise/api"
	"github.com/lankawattwise/lankawattwise/config"
	"github.com/lankawattwise/lankawattwise/core/billing"
	"github.com/lankawattwise/lankawattwise/core/logger"
	coremetrics "github.com/lankawattwise/lankawattwise/core/metrics"
	"github.com/lankawattwise/lankawattwise/core/optimizer"
	corestore "github.com/lankawattwise/lankawattwise/core/store"
	inframetrics "github.com/lankawattwise/lankawattwise/infra/metrics"
	"github.com/lankawattwise/lankawattwise/infra/mqtt"
	"github.com/lankawattwise/lankawattwise/infra/store"
)

// Service holds the assembled components and their shutdown hooks.
type Service struct {
	cfg    *config.Config
	log    logger.Logger
	server *http.Server
	closer []func()
}

// New builds the full service from configuration.
func New(cfg *config.Config, log logger.Logger) (*Service, error) {
	svc := &Service{cfg: cfg, log: log}

	var st corestore.Store
	switch cfg.Store.Backend {
	case "memory":
		st = store.NewMemoryStore()
	default:
		s, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		svc.closer = append(svc.closer, func() { _ = s.Close() })
		st = s
	}

	sink, err := svc.buildSink()
	if err != nil {
		return nil, err
	}

	var pub PlanPublisher
	if cfg.MQTT.Enabled {
		p, err := mqtt.NewPlanPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("connect mqtt: %w", err)
		}
		svc.closer = append(svc.closer, p.Close)
		pub = p
	}

	opt, err := optimizer.New(cfg.Optimizer, log)
	if err != nil {
		return nil, err
	}
	engine := NewEngine(st, opt, billing.NewEngine(cfg.Billing), sink, pub, log)

	svc.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewServer(engine, st, log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return svc, nil
}

func (s *Service) buildSink() (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if s.cfg.Metrics.PrometheusEnabled {
		prom, err := inframetrics.NewPromSink(s.cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prometheus sink: %w", err)
		}
		sinks = append(sinks, prom)
	}
	if s.cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, inframetrics.NewInfluxSinkWithFallback(s.cfg.Metrics))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return coremetrics.NewMultiSink(sinks...), nil
	}
}

// Run serves HTTP until the context is cancelled, then shuts down cleanly.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			addr := ":" + s.cfg.Metrics.PrometheusPort
			if err := inframetrics.StartPromServer(ctx, addr, s.log); err != nil {
				s.log.Errorf("prometheus server: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.HTTP.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.log.Warnf("http shutdown: %v", err)
	}
	for _, closeFn := range s.closer {
		closeFn()
	}
	return nil
}

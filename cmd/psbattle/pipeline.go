package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/psbattle/engine/internal/battle"
	"github.com/psbattle/engine/internal/config"
	"github.com/psbattle/engine/internal/console"
	"github.com/psbattle/engine/internal/influx"
	"github.com/psbattle/engine/internal/monitor"
	"github.com/psbattle/engine/internal/otel"
	"github.com/psbattle/engine/internal/queue"
	"github.com/psbattle/engine/internal/storage"
)

// pipeline wires the action queue, the observer and every presenter for
// one battle room.
type pipeline struct {
	logger   zerolog.Logger
	queue    *queue.ActionQueue
	observer *battle.Observer
	recorder *storage.Recorder
	backend  storage.Backend
	influx   *influx.Manager
	metrics  *otel.Provider
	metricsW *os.File
	monitor  *monitor.Service
}

type pipelineOptions struct {
	Pacing   queue.Pacing
	Sender   battle.Sender // nil for replays
	Username string
	Out      io.Writer
	Console  console.Options
}

func newPipeline(ctx context.Context, log zerolog.Logger, opts pipelineOptions) (*pipeline, error) {
	p := &pipeline{logger: log}
	logsDir := config.GetString("logsDir")

	oc := config.GetOTelConfig()
	otelCfg := otel.Config{Enabled: oc.Enabled, ServiceName: "psbattle", ExportInterval: oc.Interval}
	if oc.Enabled {
		f, err := os.Create(filepath.Join(logsDir, fmt.Sprintf("psbattle.%s.metrics.json", sessionStart.Format("20060102_150405"))))
		if err != nil {
			return nil, fmt.Errorf("error creating metrics file: %w", err)
		}
		p.metricsW = f
		otelCfg.MetricWriter = f
	}
	metrics, err := otel.New(otelCfg)
	if err != nil {
		p.close()
		return nil, fmt.Errorf("error setting up metrics: %w", err)
	}
	p.metrics = metrics

	backend, err := storage.NewBackend(config.GetStorageConfig(), log)
	if err != nil {
		p.close()
		return nil, err
	}
	if err := backend.Init(); err != nil {
		p.close()
		return nil, fmt.Errorf("error initializing storage: %w", err)
	}
	p.backend = backend
	p.recorder = storage.NewRecorder(backend, log)

	presenters := battle.MultiPresenter{console.New(opts.Out, opts.Console), p.recorder}

	if ic := config.GetInfluxConfig(); ic.Enabled {
		m := influx.NewManager(ic, log, filepath.Join(logsDir, "influx_backup.lp.gz"))
		if err := m.Connect(ctx); err != nil && !errors.Is(err, influx.ErrDisabled) {
			log.Warn().Err(err).Msg("InfluxDB unavailable, points are dropped")
		} else {
			p.influx = m
			presenters = append(presenters, influx.NewWriter(m, log))
		}
	}

	q, err := queue.NewActionQueue(opts.Pacing, log)
	if err != nil {
		p.close()
		return nil, fmt.Errorf("error creating action queue: %w", err)
	}
	p.queue = q

	obs, err := battle.NewObserver(battle.Dependencies{
		Queue:     q,
		Presenter: presenters,
		Logger:    log,
		Username:  opts.Username,
		Sender:    opts.Sender,
		Journal:   p.recorder,
	})
	if err != nil {
		p.close()
		return nil, err
	}
	p.observer = obs

	q.Start(ctx)

	if mc := config.GetMonitorConfig(); mc.Enabled {
		deps := monitor.Dependencies{
			Queue:      q,
			Room:       func() string { room, _ := currentRoom.Load().(string); return room },
			StatusPath: filepath.Join(logsDir, "status.json"),
			Interval:   mc.Interval,
			Logger:     log,
		}
		if r, ok := backend.(monitor.QueueReporter); ok {
			deps.Storage = r
		}
		p.monitor = monitor.NewService(deps)
		p.monitor.Start()
	}
	return p, nil
}

// drain blocks until every batch handed to the observer so far has been
// parsed and every resulting unit has run.
func (p *pipeline) drain(ctx context.Context) error {
	parsed := make(chan struct{})
	p.queue.Post(func() { close(parsed) })

	select {
	case <-parsed:
	case <-ctx.Done():
		return ctx.Err()
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for !p.queue.Idle() {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// close stops the consumer before the backends so the recorder is never
// touched concurrently with its shutdown.
func (p *pipeline) close() {
	if p.monitor != nil {
		p.monitor.Stop()
	}
	if p.queue != nil {
		p.queue.Close()
	}
	if p.backend != nil {
		if err := p.backend.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close storage")
		}
		if e, ok := p.backend.(storage.Exportable); ok && e.ExportedFilePath() != "" {
			p.logger.Info().Str("path", e.ExportedFilePath()).Msg("Battle exported")
		}
	}
	if p.influx != nil {
		if err := p.influx.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close InfluxDB")
		}
	}
	if p.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.metrics.Shutdown(ctx); err != nil {
			p.logger.Error().Err(err).Msg("Failed to shut down metrics")
		}
		cancel()
	}
	if p.metricsW != nil {
		_ = p.metricsW.Close()
	}
}

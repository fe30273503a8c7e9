package main

import (
	"context"
	"log/slog"
	"time"

	"lumina/internal/backup"
	"lumina/internal/clients/gemini"
	"lumina/internal/config"
	"lumina/internal/services/ai"
	"lumina/internal/services/dictation"
	"lumina/internal/services/editor"
	"lumina/internal/services/notes"
	"lumina/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
)

// services holds everything the router wires into handlers.
type services struct {
	backend       storage.Backend
	hub           *notes.Hub
	notes         *notes.Service
	editor        *editor.Manager
	ai            *ai.Orchestrator
	dictation     dictation.Transport
	dictationRuns *dictation.Registry // runs behind open /ws/dictation sockets
	uploader      *backup.Uploader
	registry      *prometheus.Registry
}

// newServices loads the collection from backend and builds the services on
// top of it. reg receives the domain collectors.
func newServices(ctx context.Context, cfg config.Config, log *slog.Logger, backend storage.Backend, reg *prometheus.Registry) *services {
	hub := notes.NewHub(cfg.WSOutboxBuffer)
	notesSvc := notes.NewService(backend, hub, log)
	notesSvc.Open(ctx)

	mgr := editor.NewManager(notesSvc, log,
		editor.WithDebounce(time.Duration(cfg.AutosaveDebounceMs)*time.Millisecond),
		editor.WithFlushOnClose(cfg.AutosaveFlushOnClose),
	)

	key := gemini.EnvKey(cfg.GeminiAPIKey)
	gen := gemini.New(gemini.Config{BaseURL: cfg.AIBaseURL, APIVersion: "v1beta", Model: cfg.AIModel, Key: key})
	orch := ai.NewOrchestrator(gen, log, ai.NewMetrics(reg), time.Duration(cfg.AITimeoutSec)*time.Second)

	live := gemini.NewLiveDialer(gemini.LiveConfig{URL: cfg.AILiveURL, Model: cfg.AILiveModel, Key: key})
	runs := dictation.NewRegistry()

	uploader := backup.NewUploader(backup.S3Config{
		Bucket:    cfg.ExportS3Bucket,
		Prefix:    cfg.ExportS3Prefix,
		Region:    cfg.ExportS3Region,
		Endpoint:  cfg.ExportS3Endpoint,
		AccessKey: cfg.ExportS3AccessKey,
		SecretKey: cfg.ExportS3SecretKey,
	})

	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ws_subscribers",
			Help: "Open note stream connections",
		}, func() float64 {
			n, _ := hub.Stats()
			return float64(n)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "ws_events_dropped_total",
			Help: "Note events dropped because a subscriber was slow",
		}, func() float64 {
			_, dropped := hub.Stats()
			return float64(dropped)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dictation_sessions",
			Help: "Dictation runs in progress",
		}, func() float64 {
			return float64(runs.Len())
		}),
	)

	return &services{
		backend:       backend,
		hub:           hub,
		notes:         notesSvc,
		editor:        mgr,
		ai:            orch,
		dictation:     live,
		dictationRuns: runs,
		uploader:      uploader,
		registry:      reg,
	}
}

// shutdown stops dictation runs, closes the editor session and releases
// storage, in that order.
func (s *services) shutdown(ctx context.Context) error {
	s.dictationRuns.StopAll()
	s.editor.Shutdown()
	return s.backend.Close(ctx)
}

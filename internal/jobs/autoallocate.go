package jobs

import (
	"context"
	"time"

	allocsvc "goodplay-backend/internal/application/allocation"
	compliancesvc "goodplay-backend/internal/application/compliance"
	donsvc "goodplay-backend/internal/application/donations"
	poolsvc "goodplay-backend/internal/application/pools"
	"goodplay-backend/internal/audit"
	"goodplay-backend/internal/config"

	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const executeTimeout = 2 * time.Minute

// Manager owns the background scheduler. It runs only in the long-lived
// server process; the serverless entry never starts it.
type Manager struct {
	scheduler gocron.Scheduler
	engine    *allocsvc.Engine
	interval  time.Duration
}

// NewManager builds a manager with its own engine instance over the shared
// DB and Redis handles.
func NewManager(db *gorm.DB, rdb *redis.Client, cfg *config.Config) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	engine := allocsvc.NewEngine(
		db,
		&poolsvc.Service{DB: db},
		&compliancesvc.Provider{DB: db, Redis: rdb},
		&donsvc.Service{DB: db},
		audit.ZerologSink{},
		allocsvc.Config{
			ScoreThreshold:   cfg.ScoreThreshold,
			ExecutionEpsilon: cfg.ExecutionEpsilon,
			FeeRate:          cfg.FeeRate,
			BatchSize:        cfg.BatchSize,
			BatchWorkers:     cfg.BatchWorkers,
		},
	)

	interval := cfg.AutoAllocateInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &Manager{scheduler: s, engine: engine, interval: interval}, nil
}

// Start registers the auto-allocation job and starts the scheduler.
func Start(db *gorm.DB, rdb *redis.Client, cfg *config.Config) (*Manager, error) {
	m, err := NewManager(db, rdb, cfg)
	if err != nil {
		return nil, err
	}
	if err := m.RegisterJobs(); err != nil {
		return nil, err
	}
	m.scheduler.Start()
	log.Info().Dur("interval", m.interval).Msg("Auto-allocation scheduler started")
	return m, nil
}

// RegisterJobs registers all background jobs with the scheduler.
func (m *Manager) RegisterJobs() error {
	job := &AutoAllocateJob{Engine: m.engine}
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

// Stop shuts the scheduler down; running jobs finish first.
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown scheduler")
	}
}

// AutoAllocateJob runs a batch pass over pending allocation requests.
// Eligibility (active pools, auto_allocation_enabled) is enforced by the
// engine's pool selection, not here.
type AutoAllocateJob struct {
	Engine *allocsvc.Engine
}

func (j *AutoAllocateJob) Name() string {
	return "auto_allocate_pending"
}

// Execute runs one pass. Failures are logged and swallowed: a broken pass
// must not take the scheduler down.
func (j *AutoAllocateJob) Execute() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Auto-allocation pass panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
	defer cancel()

	report, err := j.Engine.ProcessBatch(ctx, 0, 0)
	if err != nil {
		log.Error().Err(err).Msg("Auto-allocation pass failed")
		return
	}
	log.Info().
		Int("processed", report.ProcessedCount).
		Int("succeeded", report.SucceededCount).
		Int("failed", report.FailedCount).
		Msg("Auto-allocation pass completed")
}

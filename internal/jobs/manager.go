package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

const (
	taskTypeSweep = "covers:sweep"

	maintenanceQueue = "maintenance"
)

// Manager はスイープジョブの定期実行と投入を担います。
type Manager struct {
	client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	sweeper   *Sweeper
	store     *ReportStore
	logger    *log.Logger
}

// NewManager は Manager を初期化します。
// interval ごとにスイープタスクをキューに投入するスケジューラーも登録します。
func NewManager(redisURL string, interval time.Duration, sweeper *Sweeper, store *ReportStore, logger *log.Logger) (*Manager, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				maintenanceQueue: 1,
			},
		},
	)
	scheduler := asynq.NewScheduler(opt, nil)

	mux := asynq.NewServeMux()
	manager := &Manager{
		client:    client,
		server:    server,
		scheduler: scheduler,
		mux:       mux,
		sweeper:   sweeper,
		store:     store,
		logger:    logger,
	}
	mux.HandleFunc(taskTypeSweep, manager.handleSweepTask)

	spec := fmt.Sprintf("@every %s", interval)
	if _, err := scheduler.Register(spec, asynq.NewTask(taskTypeSweep, nil, asynq.Queue(maintenanceQueue))); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to register sweep schedule: %w", err)
	}

	return manager, nil
}

// Start はワーカーとスケジューラーをバックグラウンドで起動します。
func (m *Manager) Start() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			m.logf("asynq server stopped with error: %v", err)
		}
	}()
	go func() {
		if err := m.scheduler.Run(); err != nil {
			m.logf("asynq scheduler stopped with error: %v", err)
		}
	}()
}

// Shutdown はスケジューラー・サーバー・クライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.scheduler.Shutdown()
	m.server.Shutdown()
	return m.client.Close()
}

// Enqueue はスイープタスクを即時投入します（手動トリガー用）。
func (m *Manager) Enqueue(ctx context.Context) error {
	task := asynq.NewTask(taskTypeSweep, nil, asynq.Queue(maintenanceQueue))
	_, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(1))
	return err
}

func (m *Manager) handleSweepTask(ctx context.Context, task *asynq.Task) error {
	report, err := m.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}

	if err := m.store.Save(ctx, report); err != nil {
		m.logf("failed to save sweep report job=%s: %v", report.JobID, err)
	}

	m.logf("cover sweep done job=%s scanned=%d removed=%d errors=%d",
		report.JobID, report.Scanned, report.Removed, len(report.Errors))
	return nil
}

func (m *Manager) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

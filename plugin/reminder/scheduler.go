package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs the dispatch loop on a fixed interval.
type Scheduler struct {
	service  *Service
	interval time.Duration
	metrics  *MetricsCollector
	logger   *slog.Logger

	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewScheduler creates a dispatch scheduler.
func NewScheduler(service *Service, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		service:  service,
		interval: interval,
		metrics:  NewMetricsCollector(),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the scheduler loop. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("reminder scheduler started", "interval", s.interval)
}

// Stop gracefully stops the scheduler and waits for the current cycle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("reminder scheduler stopped")
}

// IsRunning reports whether the scheduler loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Metrics returns the scheduler's metrics collector.
func (s *Scheduler) Metrics() *MetricsCollector {
	return s.metrics
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First cycle runs immediately so a restart catches overdue reminders
	// without waiting a full interval.
	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler context cancelled")
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	summary, err := s.service.ProcessDueReminders(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("reminder dispatch cycle failed", "error", err)
		return
	}

	s.metrics.Record(summary)
	if summary.Processed > 0 {
		s.logger.Info("reminder dispatch cycle finished",
			"processed", summary.Processed,
			"sent", summary.Sent,
			"skipped", summary.Skipped,
			"failed", summary.Failed)
	}
}

// RunOnce runs a single dispatch cycle, for manual triggering.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	summary, err := s.service.ProcessDueReminders(ctx, time.Now().UTC())
	if err == nil {
		s.metrics.Record(summary)
	}
	return summary, err
}

// Stats holds cumulative dispatch statistics.
type Stats struct {
	TotalProcessed int64     `json:"total_processed"`
	TotalSent      int64     `json:"total_sent"`
	TotalSkipped   int64     `json:"total_skipped"`
	TotalFailed    int64     `json:"total_failed"`
	LastRunAt      time.Time `json:"last_run_at"`
}

// MetricsCollector accumulates dispatch statistics across cycles.
type MetricsCollector struct {
	stats Stats
	mu    sync.RWMutex
}

// NewMetricsCollector creates a metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// Record adds one cycle summary to the totals.
func (m *MetricsCollector) Record(summary Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.TotalProcessed += int64(summary.Processed)
	m.stats.TotalSent += int64(summary.Sent)
	m.stats.TotalSkipped += int64(summary.Skipped)
	m.stats.TotalFailed += int64(summary.Failed)
	m.stats.LastRunAt = time.Now()
}

// GetStats returns the current totals.
func (m *MetricsCollector) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

package services

import (
	"context"
	"sync"
	"time"

	"devenv-keeper/internal/config"
	"devenv-keeper/internal/env"
	"devenv-keeper/internal/logger"
	"devenv-keeper/internal/models"
)

// Server state shared by the HTTP status API
type Server struct {
	cfg        *config.AppConfig
	health     *HealthService
	diagnostic *DiagnosticService
	backups    *BackupManager
	startTime  time.Time

	mu   sync.RWMutex
	last *models.AggregateReport
}

/**
 * Create server state over the three services
 * @param {AppConfig} cfg - Application configuration
 * @param {HealthService} health - Health aggregator
 * @param {DiagnosticService} diagnostic - Diagnostic runner
 * @param {BackupManager} backups - Backup orchestrator, read-only use
 * @returns {Server} Returns new server instance
 */
func NewServer(cfg *config.AppConfig, health *HealthService, diagnostic *DiagnosticService, backups *BackupManager) *Server {
	return &Server{
		cfg:        cfg,
		health:     health,
		diagnostic: diagnostic,
		backups:    backups,
		startTime:  time.Now(),
	}
}

func (s *Server) Health() *HealthService {
	return s.health
}

func (s *Server) Diagnostics() *DiagnosticService {
	return s.diagnostic
}

func (s *Server) Backups() *BackupManager {
	return s.backups
}

// LastGlobal report of the most recent background check, nil before the first one
func (s *Server) LastGlobal() *models.AggregateReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// CheckGlobal runs the global checks and remembers the result
func (s *Server) CheckGlobal(ctx context.Context) *models.AggregateReport {
	report := s.health.CheckGlobal(ctx)
	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
	return report
}

/**
 * Run global checks periodically until ctx is cancelled
 * @param {context.Context} ctx - Stops the loop when done
 * @description
 * - Interval is server.monitor_interval, 0 disables monitoring
 * - The first check runs immediately
 * - Each check updates the devenv_environment_healthy gauge
 * @example
 * go server.StartMonitoring(ctx)
 */
func (s *Server) StartMonitoring(ctx context.Context) {
	interval := s.cfg.MonitorInterval()
	if interval <= 0 {
		logger.Info("Environment monitoring is disabled (interval <= 0)")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.CheckGlobal(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckGlobal(ctx)
		}
	}
}

/**
 * Get liveness information of the status server
 * @returns {HealthResponse} Returns version, uptime and request counters
 */
func (s *Server) GetHealthz() models.HealthResponse {
	return models.HealthResponse{
		Version:   env.Version,
		StartTime: s.startTime.Format(time.RFC3339),
		Status:    "UP",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Metrics: models.Metrics{
			TotalRequests: GetTotalRequestCount(),
			ErrorRequests: GetTotalErrorCount(),
			ProbesRun:     GetTotalProbeCount(),
		},
	}
}

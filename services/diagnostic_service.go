package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"devenv-keeper/internal/config"
	"devenv-keeper/internal/env"
	"devenv-keeper/internal/logger"
	"devenv-keeper/internal/models"
	"devenv-keeper/internal/probe"
	"devenv-keeper/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

/**
 * Environment diagnostic: toolchain, runtime, global health, disk and ports
 * @property {Runner} runner - Executes the toolchain version commands
 * @property {HealthService} health - Global health check and probe settings
 */
type DiagnosticService struct {
	cfg      *config.AppConfig
	runner   utils.Runner
	health   *HealthService
	diskFree func(path string) (int64, error)
	home     string
	now      func() time.Time
}

type DiagnosticOption func(*DiagnosticService)

// WithDiskFree replaces the free space lookup
func WithDiskFree(f func(path string) (int64, error)) DiagnosticOption {
	return func(d *DiagnosticService) { d.diskFree = f }
}

// WithHomeDir sets the directory whose filesystem is measured
func WithHomeDir(dir string) DiagnosticOption {
	return func(d *DiagnosticService) { d.home = dir }
}

func NewDiagnosticService(cfg *config.AppConfig, runner utils.Runner, health *HealthService, opts ...DiagnosticOption) *DiagnosticService {
	d := &DiagnosticService{
		cfg:      cfg,
		runner:   runner,
		health:   health,
		diskFree: utils.DiskAvailableMB,
		home:     env.HomeDir(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var diagnosticService *DiagnosticService

func GetDiagnosticService() *DiagnosticService {
	if diagnosticService == nil {
		diagnosticService = NewDiagnosticService(&config.Config, utils.NewExecRunner(), GetHealthService())
	}
	return diagnosticService
}

/**
 * Run all diagnostic checks
 * @param {Context} ctx - Bounds every check
 * @returns {DiagnosticReport} Returns the report with recommendations
 * @description
 * - The five checks are independent and run concurrently, each fills its own fields
 */
func (d *DiagnosticService) Run(ctx context.Context) *models.DiagnosticReport {
	logger.Info("running environment diagnostic")
	report := &models.DiagnosticReport{ID: uuid.NewString(), Timestamp: d.now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Toolchain = d.CheckToolchain(gctx)
		return nil
	})
	g.Go(func() error {
		report.Runtime = d.CheckRuntime(gctx)
		return nil
	})
	g.Go(func() error {
		report.Global = d.health.CheckGlobal(gctx)
		return nil
	})
	g.Go(func() error {
		mb, err := d.diskFree(d.home)
		if err != nil {
			logger.Warnf("disk space check failed: %v", err)
			report.DiskError = err.Error()
			return nil
		}
		report.DiskAvailableMB = mb
		return nil
	})
	g.Go(func() error {
		report.Ports = d.ScanPorts(gctx)
		return nil
	})
	_ = g.Wait()

	report.Recommendations = Recommend(report)
	return report
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

// CheckToolchain runs the version command of every configured tool
func (d *DiagnosticService) CheckToolchain(ctx context.Context) []models.ToolStatus {
	tools := make([]models.ToolStatus, 0, len(d.cfg.Diagnostics.Tools))
	for _, t := range d.cfg.Diagnostics.Tools {
		out, err := d.runner.Run(ctx, utils.Command{Name: t.Command, Args: t.Args})
		st := models.ToolStatus{Name: t.Name, Available: err == nil}
		if err == nil {
			st.Version = firstLine(out)
		} else {
			logger.Debugf("tool %s unavailable: %v", t.Name, err)
		}
		tools = append(tools, st)
	}
	return tools
}

// CheckRuntime docker CLI version plus an Engine API round trip
func (d *DiagnosticService) CheckRuntime(ctx context.Context) models.RuntimeStatus {
	version, err := d.runner.Run(ctx, utils.Command{Name: "docker", Args: []string{"--version"}})
	if err != nil {
		return models.RuntimeStatus{Running: false, StatusText: "not running or not installed"}
	}
	n, err := d.health.Docker().CountContainers(ctx)
	if err != nil {
		logger.Warnf("docker engine not responding: %v", err)
		return models.RuntimeStatus{Running: false, StatusText: "not responding", Version: firstLine(version)}
	}
	return models.RuntimeStatus{Running: true, StatusText: "running", Version: firstLine(version), Containers: n}
}

// ScanPorts a port is available when nothing answers on it
func (d *DiagnosticService) ScanPorts(ctx context.Context) []models.PortStatus {
	probes := make([]probe.Probe, 0, len(d.cfg.Diagnostics.Ports))
	for _, port := range d.cfg.Diagnostics.Ports {
		probes = append(probes, d.health.portProbe("port "+strconv.Itoa(port), "localhost", port))
	}
	results := probe.RunAll(ctx, probes, RecordProbe)

	ports := make([]models.PortStatus, len(results))
	for i, res := range results {
		ports[i] = models.PortStatus{Port: d.cfg.Diagnostics.Ports[i], Available: !res.Healthy}
	}
	return ports
}

/**
 * Derive recommendations from a diagnostic report
 * @param {DiagnosticReport} r - Report to inspect
 * @returns {[]string} Returns recommendations in fixed precedence
 * @description
 * - One per missing tool, then runtime, then disk below config.MinDiskMB or unreadable, then occupied ports
 * - A single all-clear message when nothing applies
 */
func Recommend(r *models.DiagnosticReport) []string {
	var recs []string
	for _, t := range r.Toolchain {
		if !t.Available {
			recs = append(recs, fmt.Sprintf("Install %s to use the development environment", t.Name))
		}
	}
	if !r.Runtime.Running {
		recs = append(recs, "Start Docker to use the development environment")
	}
	if r.DiskError != "" {
		recs = append(recs, fmt.Sprintf("Free up disk space (available space unknown: %s)", r.DiskError))
	} else if r.DiskAvailableMB < config.MinDiskMB {
		recs = append(recs, fmt.Sprintf("Free up disk space (%d MB available, less than 1 GB)", r.DiskAvailableMB))
	}
	if occupied := r.OccupiedPorts(); len(occupied) > 0 {
		list := make([]string, len(occupied))
		for i, p := range occupied {
			list[i] = strconv.Itoa(p)
		}
		recs = append(recs, "Free the ports: "+strings.Join(list, ", "))
	}
	if len(recs) == 0 {
		recs = append(recs, "Everything is working correctly! 🎉")
	}
	return recs
}

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"devenv-keeper/internal/config"
	"devenv-keeper/internal/envfile"
	"devenv-keeper/internal/logger"
	"devenv-keeper/internal/models"
	"devenv-keeper/internal/probe"

	"golang.org/x/sync/errgroup"
)

// SiteURLKey key of the project URL in a project .env
const SiteURLKey = "SITE_URL"

/**
 * Health aggregation over the global environment and projects
 * @property {AppConfig} cfg - Names, endpoints and budgets
 * @property {DockerAPI} docker - Engine access for container and network probes
 */
type HealthService struct {
	cfg        *config.AppConfig
	docker     probe.DockerAPI
	clock      probe.Clock
	httpClient probe.HTTPDoer
	dialer     probe.Dialer
	now        func() time.Time
}

type HealthOption func(*HealthService)

// WithClock replaces the clock driving HTTP probe retries
func WithClock(c probe.Clock) HealthOption {
	return func(s *HealthService) { s.clock = c }
}

func WithHTTPClient(c probe.HTTPDoer) HealthOption {
	return func(s *HealthService) { s.httpClient = c }
}

func WithDialer(d probe.Dialer) HealthOption {
	return func(s *HealthService) { s.dialer = d }
}

func NewHealthService(cfg *config.AppConfig, docker probe.DockerAPI, opts ...HealthOption) *HealthService {
	s := &HealthService{
		cfg:    cfg,
		docker: docker,
		clock:  probe.RealClock,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var healthService *HealthService

/**
 * Get the process wide health service
 * @returns {HealthService} Returns the service built from config.Config
 * @description
 * - When no engine client can be created every container and network probe reports unavailable
 */
func GetHealthService() *HealthService {
	if healthService != nil {
		return healthService
	}
	var docker probe.DockerAPI
	cli, err := probe.NewEngineClient(config.Config.Probe.DockerHost)
	if err != nil {
		logger.Errorf("docker client unavailable: %v", err)
		docker = probe.UnavailableDocker{Err: err}
	} else {
		docker = cli
	}
	healthService = NewHealthService(&config.Config, docker)
	return healthService
}

func (s *HealthService) Docker() probe.DockerAPI {
	return s.docker
}

func (s *HealthService) httpProbe(name, url string) probe.Probe {
	p := probe.NewHTTPProbe(name, url, s.cfg.HTTPTimeout())
	p.Clock = s.clock
	if s.httpClient != nil {
		p.Client = s.httpClient
	}
	return p
}

func (s *HealthService) portProbe(name, host string, port int) *probe.PortProbe {
	p := probe.NewPortProbe(name, host, port, s.cfg.PortTimeout())
	if s.dialer != nil {
		p.Dialer = s.dialer
	}
	return p
}

func (s *HealthService) globalProbes() []probe.Probe {
	g := s.cfg.Global
	return []probe.Probe{
		probe.NewContainerProbe(s.docker, "reverse-proxy", g.ProxyContainer),
		probe.NewContainerProbe(s.docker, "database", g.DatabaseContainer),
		probe.NewContainerProbe(s.docker, "admin-ui", g.AdminContainer),
		probe.NewNetworkProbe(s.docker, "reverse-proxy", g.ProxyNetwork),
		probe.NewNetworkProbe(s.docker, "public", g.PublicNetwork),
		s.httpProbe("proxy-api", g.ProxyAPIURL),
		s.portProbe("database", g.DatabaseHost, g.DatabasePort),
		s.httpProbe("admin-ui", g.AdminURL),
	}
}

func (s *HealthService) run(ctx context.Context, report *models.AggregateReport, probes []probe.Probe) {
	for _, res := range probe.RunAll(ctx, probes, RecordProbe) {
		report.Add(res)
	}
}

func (s *HealthService) finish(report *models.AggregateReport) *models.AggregateReport {
	report.Finalize()
	RecordReport(report)
	if report.Overall {
		logger.Infof("%s environment is healthy", report.Scope)
	} else {
		logger.Warnf("problems detected in %s environment", report.Scope)
	}
	return report
}

/**
 * Check the global environment
 * @param {Context} ctx - Bounds all probes
 * @returns {AggregateReport} Returns containers, networks and services in check order
 */
func (s *HealthService) CheckGlobal(ctx context.Context) *models.AggregateReport {
	logger.Info("running global health check")
	report := models.NewAggregateReport(models.GlobalScope(), s.now())
	s.run(ctx, report, s.globalProbes())
	return s.finish(report)
}

// ResolveProject maps a project name or path to its directory
func (s *HealthService) ResolveProject(nameOrPath string) string {
	if filepath.IsAbs(nameOrPath) || strings.ContainsRune(nameOrPath, filepath.Separator) || nameOrPath == "." {
		if abs, err := filepath.Abs(nameOrPath); err == nil {
			return abs
		}
		return nameOrPath
	}
	return filepath.Join(s.cfg.Paths.SitesDir, nameOrPath)
}

// SiteURL reads SITE_URL from the project .env and prefixes the scheme when missing
func (s *HealthService) SiteURL(projectDir string) (string, error) {
	raw, err := envfile.New(filepath.Join(projectDir, s.cfg.Project.EnvFile)).Get(SiteURLKey)
	if err != nil {
		return "", err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%s is empty: %w", SiteURLKey, models.ErrNotFound)
	}
	if strings.Contains(raw, "://") {
		return raw, nil
	}
	return s.cfg.Project.URLScheme + "://" + raw, nil
}

func (s *HealthService) hasSiteMarker(projectDir string) bool {
	data, err := os.ReadFile(filepath.Join(projectDir, s.cfg.Project.ComposeFile))
	if err != nil {
		return false
	}
	return bytes.Contains(data, []byte(s.cfg.Project.SiteMarker))
}

/**
 * Check one project
 * @param {Context} ctx - Bounds all probes
 * @param {string} projectDir - Project directory
 * @returns {AggregateReport} Returns the project report
 * @description
 * - Web and app containers are probed only when the compose file carries the site marker,
 *   otherwise they are listed as skipped and do not affect Overall
 * - A missing SITE_URL is recorded as an unhealthy result
 */
func (s *HealthService) CheckProject(ctx context.Context, projectDir string) *models.AggregateReport {
	name := filepath.Base(projectDir)
	logger.Infof("running health check for project %s", name)
	report := models.NewAggregateReport(models.ProjectScope(name), s.now())

	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		report.Fail("project", projectDir, models.KindContainer, "project directory not found: "+projectDir)
		return s.finish(report)
	}

	var probes []probe.Probe
	containers := []struct{ role, name string }{
		{"web", name + s.cfg.Project.WebSuffix},
		{"app", name + s.cfg.Project.AppSuffix},
	}
	if s.hasSiteMarker(projectDir) {
		for _, c := range containers {
			probes = append(probes, probe.NewContainerProbe(s.docker, c.role, c.name))
		}
	} else {
		for _, c := range containers {
			report.Skip(c.name)
		}
		logger.Debugf("project %s: no %s in compose file, container checks skipped", name, s.cfg.Project.SiteMarker)
	}

	url, err := s.SiteURL(projectDir)
	if err == nil {
		probes = append(probes, s.httpProbe("website", url))
	}

	s.run(ctx, report, probes)
	if err != nil {
		report.Fail("website", SiteURLKey, models.KindHTTP, "SITE_URL not found in project .env")
	}
	return s.finish(report)
}

/**
 * List projects under the sites directory
 * @returns {[]string} Returns sorted project directories that contain a compose file
 */
func (s *HealthService) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.Paths.SitesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("sites directory %s: %w", s.cfg.Paths.SitesDir, models.ErrNotFound)
		}
		return nil, fmt.Errorf("read sites directory: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(s.cfg.Paths.SitesDir, e.Name())
		if _, err := os.Stat(filepath.Join(dir, s.cfg.Project.ComposeFile)); err == nil {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

/**
 * Check the global environment and every project
 * @param {Context} ctx - Bounds all probes
 * @returns {FullStatus} Returns the global report, one report per project with a SITE_URL and the healthy count
 */
func (s *HealthService) CheckAll(ctx context.Context) *models.FullStatus {
	status := &models.FullStatus{Timestamp: s.now()}
	status.Global = s.CheckGlobal(ctx)

	dirs, err := s.ListProjects()
	if err != nil {
		logger.Warnf("listing projects failed: %v", err)
	}

	var projects []models.ProjectStatus
	for _, dir := range dirs {
		url, err := s.SiteURL(dir)
		if err != nil {
			status.SkippedProjects = append(status.SkippedProjects, filepath.Base(dir))
			continue
		}
		projects = append(projects, models.ProjectStatus{Name: filepath.Base(dir), Dir: dir, URL: url})
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range projects {
		g.Go(func() error {
			projects[i].Report = s.CheckProject(gctx, projects[i].Dir)
			return nil
		})
	}
	_ = g.Wait()

	status.Projects = projects
	if status.Projects == nil {
		status.Projects = []models.ProjectStatus{}
	}
	status.TotalProjects = len(projects)
	for _, p := range projects {
		if p.Report.Overall {
			status.HealthyProjects++
		}
	}
	return status
}

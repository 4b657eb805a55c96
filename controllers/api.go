package controllers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"devenv-keeper/internal/catalog"
	"devenv-keeper/internal/models"
	"devenv-keeper/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIController struct {
	server *services.Server
}

/**
 * Create new API controller instance
 * @param {*services.Server} server - Server state holding the health, diagnostic and backup services
 * @returns {*APIController} New API controller instance
 * @example
 * server := services.NewServer(&config.Config, services.GetHealthService(), services.GetDiagnosticService(), services.GetBackupManager())
 * controller := controllers.NewAPIController(server)
 */
func NewAPIController(server *services.Server) *APIController {
	return &APIController{
		server: server,
	}
}

/**
 * Register all API routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - Read-only routes: health reports, diagnostics and the backup catalog
 * - Destructive backup operations are only available from the CLI
 */
func (a *APIController) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", a.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.GET("/health/global", a.GlobalHealth)
	api.GET("/health/projects/:name", a.ProjectHealth)
	api.GET("/health/full", a.FullHealth)
	api.GET("/diagnostics", a.Diagnostics)
	api.GET("/backups", a.Backups)
}

func errorJSON(c *gin.Context, status int, code string, err error) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": err.Error(),
	})
}

// @Summary Liveness probe
// @Description Version, start time, uptime and request counters of the status server
// @Tags System
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func (a *APIController) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, a.server.GetHealthz())
}

// @Summary Global environment health
// @Description Runs the container, network and service checks of the shared environment.
// @Description With cached=true the report of the last background check is returned when there is one.
// @Tags Health
// @Produce json
// @Param cached query bool false "return the last background report"
// @Success 200 {object} models.AggregateReport
// @Router /api/v1/health/global [get]
func (a *APIController) GlobalHealth(c *gin.Context) {
	if c.Query("cached") == "true" {
		if last := a.server.LastGlobal(); last != nil {
			c.JSON(http.StatusOK, last)
			return
		}
	}
	c.JSON(http.StatusOK, a.server.CheckGlobal(c.Request.Context()))
}

// @Summary Project health
// @Description Runs the checks of one project under the sites directory
// @Tags Health
// @Produce json
// @Param name path string true "project directory name"
// @Success 200 {object} models.AggregateReport
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/health/projects/{name} [get]
func (a *APIController) ProjectHealth(c *gin.Context) {
	name := c.Param("name")
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		errorJSON(c, http.StatusBadRequest, "project.invalid_name", errors.New("invalid project name: "+name))
		return
	}
	health := a.server.Health()
	dir := health.ResolveProject(name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		errorJSON(c, http.StatusNotFound, "project.not_found", errors.New("project not found: "+name))
		return
	}
	c.JSON(http.StatusOK, health.CheckProject(c.Request.Context(), dir))
}

// @Summary Full status
// @Description Global report plus one report per project with a SITE_URL
// @Tags Health
// @Produce json
// @Success 200 {object} models.FullStatus
// @Router /api/v1/health/full [get]
func (a *APIController) FullHealth(c *gin.Context) {
	c.JSON(http.StatusOK, a.server.Health().CheckAll(c.Request.Context()))
}

// @Summary Environment diagnostic
// @Description Toolchain, docker runtime, global health, disk space, ports and recommendations
// @Tags Health
// @Produce json
// @Success 200 {object} models.DiagnosticReport
// @Router /api/v1/diagnostics [get]
func (a *APIController) Diagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, a.server.Diagnostics().Run(c.Request.Context()))
}

// @Summary Backup catalog
// @Description Backup files grouped by database, newest first, with totals
// @Tags Backup
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/backups [get]
func (a *APIController) Backups(c *gin.Context) {
	cat, err := a.server.Backups().List()
	if err != nil {
		if errors.Is(err, catalog.ErrBackupDirNotFound) {
			errorJSON(c, http.StatusNotFound, "backup.dir_not_found", err)
			return
		}
		errorJSON(c, http.StatusInternalServerError, "backup.list_failed", err)
		return
	}
	groups := cat.Groups()
	if groups == nil {
		groups = []models.BackupGroup{}
	}
	c.JSON(http.StatusOK, gin.H{
		"groups":  groups,
		"summary": cat.Summary(),
	})
}

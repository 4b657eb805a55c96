package services

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"devenv-keeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *models.AggregateReport {
	r := models.NewAggregateReport(models.GlobalScope(), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	r.Add(models.ProbeResult{Target: "global-traefik", Kind: models.KindContainer, Healthy: true, State: "running", Health: "healthy"})
	r.Add(models.ProbeResult{Target: "global-mariadb", Kind: models.KindContainer, State: "not-found", Health: "unknown", Detail: "not-found"})
	r.Add(models.ProbeResult{Target: "sr-reverse-proxy", Kind: models.KindNetwork, Healthy: true, Detail: "exists"})
	r.Add(models.ProbeResult{Target: "sr-public_network", Kind: models.KindNetwork, Detail: "not-found"})
	r.Add(models.ProbeResult{Name: "proxy-api", Target: "http://localhost:8080/api/http/services", Kind: models.KindHTTP, Healthy: true, StatusCode: 200})
	r.Add(models.ProbeResult{Name: "database", Target: "localhost:3306", Kind: models.KindPort, Healthy: true, Detail: "open"})
	r.Add(models.ProbeResult{Name: "admin-ui", Target: "http://localhost:8092", Kind: models.KindHTTP, Detail: "connection_refused"})
	r.Skip("shop-nginx")
	r.Finalize()
	return r
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(sampleReport())

	assert.Contains(t, out, "2024-01-02T03:04:05Z")
	assert.Contains(t, out, "✅ global-traefik: running (healthy)")
	assert.Contains(t, out, "❌ global-mariadb: not-found (unknown)")
	assert.Contains(t, out, "✅ sr-reverse-proxy: exists")
	assert.Contains(t, out, "❌ sr-public_network: missing")
	assert.Contains(t, out, "✅ proxy-api: HTTP 200")
	assert.Contains(t, out, "✅ database: port open")
	assert.Contains(t, out, "❌ admin-ui: unavailable (connection_refused)")
	assert.Contains(t, out, "SKIPPED: shop-nginx")
	assert.Contains(t, out, "PROBLEMS DETECTED")

	containers := strings.Index(out, "CONTAINERS")
	networks := strings.Index(out, "NETWORKS")
	services := strings.Index(out, "SERVICES")
	assert.True(t, containers < networks && networks < services)

	for _, target := range []string{"global-traefik", "global-mariadb", "sr-reverse-proxy", "sr-public_network", "proxy-api", "database:", "admin-ui"} {
		assert.Equal(t, 1, strings.Count(out, target), target)
	}
	assert.Equal(t, out, RenderReport(sampleReport()), "deterministic apart from id")
}

func TestEncodeFormats(t *testing.T) {
	r := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, r, FormatJSON, nil))
	var decoded models.AggregateReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.ID, decoded.ID)
	assert.Len(t, decoded.Results, 7)
	assert.False(t, decoded.Overall)

	buf.Reset()
	require.NoError(t, Encode(&buf, r, FormatYAML, nil))
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, false, m["overall"])

	buf.Reset()
	require.NoError(t, Encode(&buf, r, FormatText, func() string { return "plain" }))
	assert.Equal(t, "plain", buf.String())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRenderDiagnostic(t *testing.T) {
	d := &models.DiagnosticReport{
		Timestamp:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Toolchain:       []models.ToolStatus{{Name: "Docker", Available: true, Version: "Docker version 27"}, {Name: "mkcert"}},
		Runtime:         models.RuntimeStatus{Running: true, StatusText: "running", Version: "Docker version 27"},
		Global:          sampleReport(),
		DiskAvailableMB: 2048,
		Ports:           []models.PortStatus{{Port: 80, Available: false}, {Port: 443, Available: true}},
		Recommendations: []string{"Install mkcert to use the development environment"},
	}
	out := RenderDiagnostic(d)

	assert.Contains(t, out, "❌ mkcert: not installed")
	assert.Contains(t, out, "2048 MB available")
	assert.Contains(t, out, "port 80: in use")
	assert.Contains(t, out, "port 443: available")
	assert.Contains(t, out, "• Install mkcert")
}

func TestRenderFullStatus(t *testing.T) {
	global := sampleReport()
	proj := models.NewAggregateReport(models.ProjectScope("shop"), time.Now())
	proj.Add(models.ProbeResult{Target: "https://shop.localhost", Kind: models.KindHTTP, Healthy: true, StatusCode: 200})
	proj.Finalize()
	out := RenderFullStatus(&models.FullStatus{
		Global:          global,
		Projects:        []models.ProjectStatus{{Name: "shop", URL: "https://shop.localhost", Report: proj}},
		SkippedProjects: []string{"draft"},
		HealthyProjects: 1,
		TotalProjects:   1,
	})

	assert.Contains(t, out, "✅ shop: https://shop.localhost")
	assert.Contains(t, out, "skipped (no SITE_URL): draft")
	assert.Contains(t, out, "1/1 projects healthy")
}

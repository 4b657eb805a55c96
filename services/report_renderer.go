package services

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"devenv-keeper/internal/config"
	"devenv-keeper/internal/models"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format '%s': %w", s, models.ErrInvalidInput)
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func icon(healthy bool) string {
	if healthy {
		return "✅"
	}
	return "❌"
}

/**
 * Write v in the requested format
 * @param {Writer} w - Destination
 * @param {any} v - Value to encode for json and yaml
 * @param {Format} format - Output format
 * @param {func} text - Text renderer used for FormatText
 */
func Encode(w io.Writer, v any, format Format, text func() string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, text())
		return err
	}
}

func serviceLine(res models.ProbeResult) string {
	switch {
	case res.StatusCode > 0:
		return fmt.Sprintf("HTTP %d", res.StatusCode)
	case res.Kind == models.KindPort && res.Healthy:
		return "port " + models.DetailOpen
	case res.Detail != "":
		return "unavailable (" + res.Detail + ")"
	default:
		return "unavailable"
	}
}

/**
 * Render an aggregate report as text
 * @param {AggregateReport} report - Finalized report
 * @returns {string} Returns the report, every result exactly once
 * @description
 * - Sections: containers, networks, services (http and port), then skipped checks and the overall line
 * - Empty sections are omitted
 */
func RenderReport(report *models.AggregateReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n📊 HEALTH CHECK REPORT (%s)\n", report.Scope)
	fmt.Fprintf(&b, "⏰ %s\n\n", report.Timestamp.Format(time.RFC3339))

	if rs := report.ByKind(models.KindContainer); len(rs) > 0 {
		b.WriteString("🐳 CONTAINERS:\n")
		for _, r := range rs {
			state := r.State
			if state == "" {
				state = r.Detail
			}
			if r.Health != "" {
				fmt.Fprintf(&b, "  %s %s: %s (%s)\n", icon(r.Healthy), r.Target, state, r.Health)
			} else {
				fmt.Fprintf(&b, "  %s %s: %s\n", icon(r.Healthy), r.Target, state)
			}
		}
		b.WriteString("\n")
	}

	if rs := report.ByKind(models.KindNetwork); len(rs) > 0 {
		b.WriteString("🌐 NETWORKS:\n")
		for _, r := range rs {
			word := "missing"
			if r.Healthy {
				word = "exists"
			} else if r.Detail != models.DetailNotFound {
				word = r.Detail
			}
			fmt.Fprintf(&b, "  %s %s: %s\n", icon(r.Healthy), r.Target, word)
		}
		b.WriteString("\n")
	}

	if rs := report.ByKind(models.KindHTTP, models.KindPort); len(rs) > 0 {
		b.WriteString("🔧 SERVICES:\n")
		for _, r := range rs {
			fmt.Fprintf(&b, "  %s %s: %s\n", icon(r.Healthy), r.Label(), serviceLine(r))
		}
		b.WriteString("\n")
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(&b, "⏭️  SKIPPED: %s\n\n", strings.Join(report.Skipped, ", "))
	}

	if report.Overall {
		fmt.Fprintf(&b, "🎯 OVERALL: %s\n", okStyle.Render("✅ HEALTHY"))
	} else {
		fmt.Fprintf(&b, "🎯 OVERALL: %s\n", failStyle.Render("❌ PROBLEMS DETECTED"))
	}
	if report.Error != "" {
		fmt.Fprintf(&b, "   reason: %s\n", report.Error)
	}
	return b.String()
}

// RenderFullStatus global report followed by one line per project
func RenderFullStatus(status *models.FullStatus) string {
	var b strings.Builder
	b.WriteString(RenderReport(status.Global))
	b.WriteString("\n📁 PROJECTS:\n")
	if len(status.Projects) == 0 {
		b.WriteString("  no projects with a SITE_URL found\n")
	}
	for _, p := range status.Projects {
		fmt.Fprintf(&b, "  %s %s: %s\n", icon(p.Report.Overall), p.Name, p.URL)
		if p.Report.Error != "" {
			fmt.Fprintf(&b, "     %s\n", p.Report.Error)
		}
	}
	if len(status.SkippedProjects) > 0 {
		fmt.Fprintf(&b, "  skipped (no SITE_URL): %s\n", strings.Join(status.SkippedProjects, ", "))
	}
	fmt.Fprintf(&b, "\n📈 SUMMARY: %d/%d projects healthy, global %s\n",
		status.HealthyProjects, status.TotalProjects, icon(status.Global.Overall))
	return b.String()
}

// RenderDiagnostic text form of a diagnostic report
func RenderDiagnostic(d *models.DiagnosticReport) string {
	var b strings.Builder
	b.WriteString("\n🩺 ENVIRONMENT DIAGNOSTIC\n")
	fmt.Fprintf(&b, "⏰ %s\n\n", d.Timestamp.Format(time.RFC3339))

	b.WriteString("🧰 TOOLCHAIN:\n")
	for _, t := range d.Toolchain {
		if t.Available {
			fmt.Fprintf(&b, "  ✅ %s: %s\n", t.Name, t.Version)
		} else {
			fmt.Fprintf(&b, "  ❌ %s: not installed\n", t.Name)
		}
	}

	b.WriteString("\n🐳 DOCKER:\n")
	fmt.Fprintf(&b, "  %s %s", icon(d.Runtime.Running), d.Runtime.StatusText)
	if d.Runtime.Version != "" {
		fmt.Fprintf(&b, " (%s)", d.Runtime.Version)
	}
	b.WriteString("\n")

	if d.Global != nil {
		b.WriteString(RenderReport(d.Global))
	}

	b.WriteString("\n💾 DISK:\n")
	if d.DiskError != "" {
		fmt.Fprintf(&b, "  ❌ unknown (%s)\n", d.DiskError)
	} else {
		fmt.Fprintf(&b, "  %s %d MB available\n", icon(d.DiskAvailableMB >= config.MinDiskMB), d.DiskAvailableMB)
	}

	b.WriteString("\n🔌 PORTS:\n")
	for _, p := range d.Ports {
		word := "in use"
		if p.Available {
			word = "available"
		}
		fmt.Fprintf(&b, "  %s port %d: %s\n", icon(p.Available), p.Port, word)
	}

	b.WriteString("\n💡 RECOMMENDATIONS:\n")
	for _, r := range d.Recommendations {
		fmt.Fprintf(&b, "  • %s\n", r)
	}
	return b.String()
}

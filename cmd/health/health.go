package health

import (
	"context"
	"fmt"
	"os"

	"devenv-keeper/cmd/root"
	"devenv-keeper/internal/models"
	"devenv-keeper/services"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the global environment and projects",
	Long:  "Check containers, networks and service endpoints of the global environment (global), one project (project) or both (full).",
}

const healthExample = `  # check the shared containers, networks and services
  devenv-keeper health global
  # check the project in the current directory
  devenv-keeper health project
  # global plus every project under the sites directory, as JSON
  devenv-keeper health full --format json`

var globalCmd = &cobra.Command{
	Use:   "global",
	Short: "Check the global environment",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		report := services.GetHealthService().CheckGlobal(context.Background())
		printReport(report)
	},
}

var projectCmd = &cobra.Command{
	Use:   "project [name|path]",
	Short: "Check one project, the current directory by default",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := services.GetHealthService()
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		report := svc.CheckProject(context.Background(), svc.ResolveProject(dir))
		printReport(report)
	},
}

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Check the global environment and every project",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		status := services.GetHealthService().CheckAll(context.Background())
		output(status, func() string { return services.RenderFullStatus(status) })
	},
}

func printReport(report *models.AggregateReport) {
	output(report, func() string { return services.RenderReport(report) })
}

func output(v any, text func() string) {
	format, err := services.ParseFormat(root.Format)
	if err != nil {
		root.ReportError("health", err)
		return
	}
	if err := services.Encode(os.Stdout, v, format, text); err != nil {
		root.ReportError("health", fmt.Errorf("write report: %w", err))
	}
}

func init() {
	healthCmd.AddCommand(globalCmd, projectCmd, fullCmd)
	root.RootCmd.AddCommand(healthCmd)

	healthCmd.Example = healthExample
}

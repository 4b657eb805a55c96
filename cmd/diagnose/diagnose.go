package diagnose

import (
	"context"
	"fmt"
	"os"

	"devenv-keeper/cmd/root"
	"devenv-keeper/services"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnose the development environment",
	Long:  "Check the toolchain, the docker runtime, the global environment, free disk space and the well-known ports, then print recommendations.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		format, err := services.ParseFormat(root.Format)
		if err != nil {
			root.ReportError("diagnose", err)
			return
		}
		report := services.GetDiagnosticService().Run(context.Background())
		if err := services.Encode(os.Stdout, report, format, func() string {
			return services.RenderDiagnostic(report)
		}); err != nil {
			root.ReportError("diagnose", fmt.Errorf("write report: %w", err))
		}
	},
}

func init() {
	root.RootCmd.AddCommand(Cmd)

	Cmd.Example = `  devenv-keeper diagnose
  devenv-keeper diagnose --format yaml`
}

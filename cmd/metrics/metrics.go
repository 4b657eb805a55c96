package metrics

import (
	"context"
	"fmt"
	"os"
	"time"

	"devenv-keeper/cmd/root"
	"devenv-keeper/internal/config"
	"devenv-keeper/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	pushGatewayAddr string
	timeout         time.Duration
)

func init() {
	root.RootCmd.AddCommand(Cmd)
	Cmd.Flags().SortFlags = false
	Cmd.Flags().StringVarP(&pushGatewayAddr, "addr", "a", "", "Pushgateway address, metrics are printed when empty")
	Cmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Timeout of the check and the push")
}

var Cmd = &cobra.Command{
	Use:   "metrics",
	Short: "Check the global environment and publish the probe metrics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		services.GetHealthService().CheckGlobal(ctx)

		if pushGatewayAddr == "" {
			pushGatewayAddr = config.Config.Metrics.Pushgateway
		}
		if pushGatewayAddr == "" {
			if err := services.WriteMetrics(os.Stdout, prometheus.DefaultGatherer); err != nil {
				root.ReportError("metrics", err)
			}
			return
		}
		if err := services.PushMetrics(ctx, pushGatewayAddr, config.Config.Metrics.Job); err != nil {
			root.ReportError("metrics", err)
			return
		}
		fmt.Printf("Metrics pushed to %s\n", pushGatewayAddr)
	},
}

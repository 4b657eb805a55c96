package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"devenv-keeper/cmd/root"
	"devenv-keeper/controllers"
	"devenv-keeper/internal/config"
	"devenv-keeper/internal/logger"
	"devenv-keeper/internal/middleware"
	"devenv-keeper/internal/utils"
	"devenv-keeper/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	listenAddr string
	socketPath string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP status API",
	Long:  "Serve health reports, diagnostics, the backup catalog and prometheus metrics over HTTP, and check the global environment periodically.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := startServer(ctx, &config.Config); err != nil {
			logger.Fatal(err)
		}
	},
}

// listenAddrs TCP address plus the optional unix socket
func listenAddrs(cfg *config.AppConfig) []ListenAddr {
	addrs := []ListenAddr{{Network: "tcp", Address: cfg.Server.Address}}
	if cfg.Server.Socket != "" && IsUnixSocketSupported() {
		addrs = append(addrs, ListenAddr{Network: "unix", Address: cfg.Server.Socket})
	}
	return addrs
}

// checkPort fails early with a readable message when the TCP port is taken
func checkPort(address string) error {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("invalid server address '%s': %w", address, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port == 0 {
		return nil
	}
	if (host == "" || host == "127.0.0.1" || host == "localhost" || host == "0.0.0.0") && !utils.PortListenable(port) {
		return fmt.Errorf("port %d is already in use", port)
	}
	return nil
}

func newRouter(server *services.Server, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.MetricsMiddleware())
	controllers.NewAPIController(server).RegisterRoutes(router)
	return router
}

/**
 * Serve the status API until ctx is cancelled
 * @param {context.Context} ctx - Cancelled on SIGINT/SIGTERM
 * @param {AppConfig} cfg - Server and service configuration
 * @returns {error} Returns error when no listener could be created
 */
func startServer(ctx context.Context, cfg *config.AppConfig) error {
	if err := checkPort(cfg.Server.Address); err != nil {
		return err
	}

	server := services.NewServer(cfg, services.GetHealthService(), services.GetDiagnosticService(), services.GetBackupManager())
	router := newRouter(server, cfg.Server.Mode)

	listeners, err := CreateListeners(listenAddrs(cfg))
	if len(listeners) == 0 {
		return fmt.Errorf("no listener available: %w", err)
	}

	go server.StartMonitoring(ctx)

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, len(listeners))
	for _, l := range listeners {
		logger.Infof("Status API listening on %s://%s", l.Addr().Network(), l.Addr().String())
		go func(l net.Listener) {
			if err := httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(l)
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down status API")
	case err = <-errCh:
		logger.Errorf("Status API stopped: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Errorf("Shutdown error: %v", shutdownErr)
	}
	if cfg.Server.Socket != "" {
		os.Remove(cfg.Server.Socket)
	}
	return err
}

func init() {
	serverCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address, overrides server.address")
	serverCmd.Flags().StringVarP(&socketPath, "socket", "s", "", "Unix socket path, overrides server.socket")
	serverCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if listenAddr != "" {
			config.Config.Server.Address = listenAddr
		}
		if socketPath != "" {
			config.Config.Server.Socket = socketPath
		}
	}
	root.RootCmd.AddCommand(serverCmd)
}

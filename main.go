package main

import (
	"os"

	_ "devenv-keeper/cmd"
	"devenv-keeper/cmd/root"
	"devenv-keeper/internal/config"
	"devenv-keeper/internal/env"
	"devenv-keeper/internal/logger"
)

func main() {
	// 检查是否是服务器模式
	isServerMode := len(os.Args) > 1 && os.Args[1] == "server"
	env.Server = isServerMode

	logger.InitLoggerWithMode(&config.Config.Log, isServerMode)
	if n, err := logger.CleanOldLogs(config.Config.Log.Path, config.Config.Log.KeepDays); err != nil {
		logger.Warnf("clean old logs: %v", err)
	} else if n > 0 {
		logger.Debugf("removed %d old log files", n)
	}

	if err := root.RootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
	os.Exit(0)
}

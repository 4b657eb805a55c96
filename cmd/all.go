package cmd

import (
	_ "devenv-keeper/cmd/backup"
	_ "devenv-keeper/cmd/diagnose"
	_ "devenv-keeper/cmd/health"
	_ "devenv-keeper/cmd/logs"
	_ "devenv-keeper/cmd/metrics"
	_ "devenv-keeper/cmd/root"
	_ "devenv-keeper/cmd/server"
)

package env

import (
	"os"
	"path/filepath"
)

// Version build version, set by cmd at startup
var Version string = "dev"

// Server is set when the process runs the HTTP status server
var Server bool = false

// (default: %USERPROFILE%/.devenv-keeper on Windows, $HOME/.devenv-keeper on Linux)
var KeeperDir string = GetKeeperDir()

/**
 * Get keeper directory path
 * @returns {string} Returns keeper directory path
 */
func GetKeeperDir() string {
	return filepath.Join(HomeDir(), ".devenv-keeper")
}

// HomeDir user home directory, "." when it cannot be determined
func HomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "."
	}
	return homeDir
}

// ExpandHome replaces a leading ~ with the user home directory
func ExpandHome(path string) string {
	if path == "~" {
		return HomeDir()
	}
	if len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == '\\') {
		return filepath.Join(HomeDir(), path[2:])
	}
	return path
}

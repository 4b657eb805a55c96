package server

import (
	"net"
	"os"
	"path/filepath"
	"runtime"

	"devenv-keeper/internal/logger"
)

type ListenAddr struct {
	Network string
	Address string
}

/**
 * Test if the system supports Unix socket network type
 * @returns {bool} Returns true if Unix socket is supported, false otherwise
 * @description
 * - Always true outside Windows
 * - On Windows a temporary socket is created and removed again
 */
func IsUnixSocketSupported() bool {
	if runtime.GOOS != "windows" {
		return true
	}
	testSocketPath := filepath.Join(os.TempDir(), "devenv_test_unix_socket.sock")
	os.Remove(testSocketPath)

	listener, err := net.Listen("unix", testSocketPath)
	if err != nil {
		return false
	}
	listener.Close()
	os.Remove(testSocketPath)
	return true
}

/**
 * Create TCP and Unix socket listeners
 * @param {[]ListenAddr} addrs - Listener addresses
 * @returns {[]net.Listener} Listeners that could be created
 * @returns {error} Last creation error, listeners may still be non-empty
 * @description
 * - Stale unix socket files are removed first and their directory created
 * - A failing address is logged and skipped
 */
func CreateListeners(addrs []ListenAddr) ([]net.Listener, error) {
	var listeners []net.Listener
	var lastErr error
	for _, addr := range addrs {
		if addr.Network == "unix" {
			if err := os.MkdirAll(filepath.Dir(addr.Address), 0755); err != nil {
				logger.Errorf("Failed to create socket directory: %v", err)
				lastErr = err
				continue
			}
			if err := os.Remove(addr.Address); err != nil && !os.IsNotExist(err) {
				logger.Errorf("Failed to remove existing socket file: %v", err)
				lastErr = err
				continue
			}
		}
		l, err := net.Listen(addr.Network, addr.Address)
		if err != nil {
			logger.Errorf("Failed to create listener on %s://%s: %v", addr.Network, addr.Address, err)
			lastErr = err
			continue
		}
		listeners = append(listeners, l)
	}
	return listeners, lastErr
}

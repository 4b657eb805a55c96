//go:build !windows

package utils

import (
	"context"
	"net"
	"strconv"
	"syscall"
)

// PortListenable checks if a port can be bound on all interfaces (POSIX implementation)
func PortListenable(port int) bool {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				// Disable SO_REUSEADDR to prevent address reuse
				syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 0)
			})
		},
	}

	l, err := lc.Listen(context.Background(), "tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	defer l.Close()
	return true
}

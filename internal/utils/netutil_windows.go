//go:build windows

package utils

import (
	"context"
	"net"
	"strconv"
	"syscall"
)

// PortListenable checks if a port is listenable on localhost (Windows implementation)
func PortListenable(port int) bool {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				// Disable SO_REUSEADDR to prevent address reuse
				syscall.SetsockoptInt(syscall.Handle(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 0)
			})
		},
	}

	l, err := lc.Listen(context.Background(), "tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	defer l.Close()
	return true
}

//go:build !windows

package utils

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DiskAvailableMB free space available to unprivileged users at path
func DiskAvailableMB(path string) (int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return int64(st.Bavail) * int64(st.Bsize) / (1024 * 1024), nil
}

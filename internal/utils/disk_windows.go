//go:build windows

package utils

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// DiskAvailableMB free space available to the caller at path
func DiskAvailableMB(path string) (int64, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	var free, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(p, &free, &total, &totalFree); err != nil {
		return 0, fmt.Errorf("GetDiskFreeSpaceEx %s: %w", path, err)
	}
	return int64(free / (1024 * 1024)), nil
}

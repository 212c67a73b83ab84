//go:build !windows

package vhlib

import (
	"fmt"
	"syscall"
)

// checkDiskSpace implements the unix half of pkg/warplib/diskspace_unix.go,
// preflighting that destDir has room for an item of requiredBytes before the
// Downloader starts writing (§4.10.1).
func checkDiskSpace(destDir string, requiredBytes int64) error {
	if requiredBytes <= 0 {
		return nil
	}
	var stat syscall.Statfs_t
	if err := syscall.Statfs(destDir, &stat); err != nil {
		// can't check -> don't block the download on it.
		return nil
	}
	available := int64(stat.Bavail) * int64(stat.Bsize)
	if available < requiredBytes {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientDiskSpace, requiredBytes, available)
	}
	return nil
}

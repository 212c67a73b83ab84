//go:build windows

package vhlib

// checkDiskSpace is a no-op on Windows, mirroring pkg/warplib/diskspace_windows.go.
func checkDiskSpace(destDir string, requiredBytes int64) error {
	return nil
}

package infrastructure

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/disk"
)

// CheckFreeSpace verifies dir's filesystem has at least minFree bytes
// available before a download starts. A zero minFree disables the check. An
// unreadable usage figure is not a failure; a download should not be blocked
// because statfs is unsupported.
func CheckFreeSpace(dir string, minFree int64) error {
	if minFree <= 0 {
		return nil
	}

	// The directory may not exist yet; statfs needs a path that does.
	probe := dir
	if _, err := os.Stat(probe); err != nil {
		probe = "/"
	}

	usage, err := disk.Usage(probe)
	if err != nil {
		return nil
	}

	if usage.Free < uint64(minFree) {
		return fmt.Errorf("not enough free disk space: %d bytes available, %d required", usage.Free, minFree)
	}
	return nil
}

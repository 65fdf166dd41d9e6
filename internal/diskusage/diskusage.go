package diskusage

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// Probe reports space on the filesystem containing a path.
type Probe struct{}

// FreeBytes returns the bytes available to unprivileged users (Bavail * Bsize)
// on the filesystem holding path. It queries the filesystem on every call.
func (Probe) FreeBytes(path string) (int64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("failed to get filesystem stats for %s: %w", path, err)
	}
	return int64(usage.Free), nil
}

// Usage returns the full usage record of the filesystem holding path.
func (Probe) Usage(path string) (*disk.UsageStat, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get filesystem stats for %s: %w", path, err)
	}
	return usage, nil
}

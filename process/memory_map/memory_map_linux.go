//go:build linux

package memory_map

import (
	"fmt"
	"os"
)

// ReadProcMaps parses /proc/<pid>/maps.
func ReadProcMaps(pid int) ([]MemoryMapItem, error) {
	file, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseMaps(file)
}

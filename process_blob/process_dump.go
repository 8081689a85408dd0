package process_blob

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gofreeze/process"
	"gofreeze/process/memory_map"
)

// ProcessDump is an Image loaded from a directory written by
// process_linux.LinuxProcess.Save. Regions whose blob was not saved are
// mapped without read permission, so the map stays complete while reads
// into them fail like an unreadable page would.
type ProcessDump struct {
	*Image
	Name string
}

// LoadDump reads metadata.json, process_memory_map.json, and every
// blob_0x<addr>_<size>.bin file in dirname.
func LoadDump(dirname string) (*ProcessDump, error) {
	metadataBytes, err := os.ReadFile(filepath.Join(dirname, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata struct {
		PID  process.ProcessID `json:"pid"`
		Name string            `json:"name"`
	}
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	mmBytes, err := os.ReadFile(filepath.Join(dirname, "process_memory_map.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read memory map: %w", err)
	}

	var mm []memory_map.MemoryMapItem
	if err := json.Unmarshal(mmBytes, &mm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memory map: %w", err)
	}

	dump := &ProcessDump{
		Image: NewImage(metadata.PID),
		Name:  metadata.Name,
	}

	for _, item := range mm {
		filename := filepath.Join(dirname, fmt.Sprintf("blob_0x%x_%d.bin", item.Address, item.Size))

		data, err := os.ReadFile(filename)
		if os.IsNotExist(err) {
			// Blob not saved (too large or not readable)
			dump.mapHole(item.Path, process.ProcessMemoryAddress(item.Address), process.ProcessMemorySize(item.Size))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read blob %s: %w", filename, err)
		}

		if len(data) != int(item.Size) {
			return nil, fmt.Errorf("blob %s holds %d bytes, map says %d", filename, len(data), item.Size)
		}

		dump.MapData(item.Path, process.ProcessMemoryAddress(item.Address), data, item.Perms)
	}

	return dump, nil
}

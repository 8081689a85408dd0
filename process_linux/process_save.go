//go:build linux

package process_linux

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gofreeze/process"
	"gofreeze/process/memory_map"
)

// maxSavedRegion bounds the size of a single region written by Save.
const maxSavedRegion = 100 * 1024 * 1024

// SaveStats summarizes a Save run.
type SaveStats struct {
	Saved       int
	NotReadable int
	TooLarge    int
	ReadErrors  int
	WriteErrors int
}

// Save writes the process memory map, metadata, and every readable region
// to dirname. The layout is the one process_blob.ProcessDump loads.
func (p *LinuxProcess) Save(ctx context.Context, dirname string) (SaveStats, error) {
	var stats SaveStats

	if err := os.MkdirAll(dirname, 0755); err != nil {
		return stats, fmt.Errorf("failed to create directory: %w", err)
	}

	p.mu.Lock()
	pid := p.pid
	p.mu.Unlock()

	if pid == 0 {
		return stats, process.ErrProcessNotOpen
	}

	p.log.Infoln("Saving process", pid, "to directory:", dirname)

	metadata := struct {
		PID  process.ProcessID `json:"pid"`
		Name string            `json:"name"`
	}{
		PID:  pid,
		Name: process.ProcessName(pid),
	}

	if err := writeJSON(filepath.Join(dirname, "metadata.json"), metadata); err != nil {
		return stats, err
	}

	if err := p.UpdateMemoryMap(); err != nil {
		return stats, fmt.Errorf("failed to update memory map: %w", err)
	}

	mm, err := p.GetMemoryMap()
	if err != nil {
		return stats, err
	}

	if err := writeJSON(filepath.Join(dirname, "process_memory_map.json"), mm); err != nil {
		return stats, err
	}

	for _, region := range mm {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("save interrupted: %w", err)
		}

		if !region.IsReadable() {
			stats.NotReadable++
			continue
		}

		if region.Size > maxSavedRegion {
			p.log.Debugln("Skipping large region at", fmt.Sprintf("0x%x", region.Address),
				"(size:", region.Size/1024/1024, "MB)")
			stats.TooLarge++
			continue
		}

		data, err := p.ReadMemory(process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size))
		if err != nil {
			p.log.Debugln("Failed to read memory region at", fmt.Sprintf("0x%x", region.Address), ":", err)
			stats.ReadErrors++
			continue
		}

		filename := filepath.Join(dirname, blobFilename(region))
		if err := os.WriteFile(filename, data, 0644); err != nil {
			p.log.Warn("Failed to write memory file for region at ", fmt.Sprintf("0x%x", region.Address), ": ", err)
			stats.WriteErrors++
			continue
		}

		stats.Saved++
	}

	p.log.Infoln("Process dump saved:", stats.Saved, "regions saved,",
		stats.ReadErrors+stats.WriteErrors, "errors,",
		stats.NotReadable, "not readable,", stats.TooLarge, "too large")

	return stats, nil
}

func blobFilename(region memory_map.MemoryMapItem) string {
	return fmt.Sprintf("blob_0x%x_%d.bin", region.Address, region.Size)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	return nil
}

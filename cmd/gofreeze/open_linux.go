//go:build linux

package main

import (
	"context"
	"fmt"

	"gofreeze/config"
	"gofreeze/process"
	"gofreeze/process_linux"
)

func openProcess(t config.Target) (process.Process, error) {
	if t.PID > 0 {
		return process_linux.NewWithPID(process.ProcessID(t.PID))
	}
	if t.Process == "" {
		return nil, fmt.Errorf("no target: set target.pid or target.process")
	}
	return process_linux.OpenByName(t.Process)
}

func saveDump(ctx context.Context, pid process.ProcessID, dir string) error {
	p, err := process_linux.NewWithPID(pid)
	if err != nil {
		return err
	}
	defer p.Close()

	stats, err := p.Save(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Printf("Saved %d regions (%d unreadable, %d too large, %d read errors, %d write errors)\n",
		stats.Saved, stats.NotReadable, stats.TooLarge, stats.ReadErrors, stats.WriteErrors)
	return nil
}

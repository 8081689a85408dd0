//go:build windows

package main

import (
	"context"
	"errors"
	"fmt"

	"gofreeze/config"
	"gofreeze/process"
	"gofreeze/process_windows"
)

func openProcess(t config.Target) (process.Process, error) {
	if t.PID > 0 {
		return process_windows.NewWithPID(process.ProcessID(t.PID))
	}
	if t.Process == "" {
		return nil, fmt.Errorf("no target: set target.pid or target.process")
	}
	return process_windows.OpenByName(t.Process)
}

func saveDump(context.Context, process.ProcessID, string) error {
	return errors.New("dump is only supported on linux")
}

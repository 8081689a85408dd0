//go:build linux

package process_linux

import (
	"gofreeze/process"
)

// OpenByName opens the lowest-PID process whose name matches.
func OpenByName(name string) (*LinuxProcess, error) {
	pid, err := process.PickPID(name)
	if err != nil {
		return nil, err
	}

	return NewWithPID(pid)
}

package process

import (
	"fmt"
	"os"
	"path/filepath"

	psprocess "github.com/shirou/gopsutil/process"
)

// FindProcessByName returns every process whose name or executable base name
// equals name, skipping the calling process.
func FindProcessByName(name string) ([]ProcessInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("empty process name")
	}

	procs, err := psprocess.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	self := int32(os.Getpid())
	var out []ProcessInfo

	for _, proc := range procs {
		if proc.Pid == self {
			continue
		}

		// Processes may exit while we iterate; errors just mean "no match"
		procName, _ := proc.Name()
		exe, _ := proc.Exe()

		if procName == name || (exe != "" && filepath.Base(exe) == name) {
			out = append(out, ProcessInfo{
				PID:  ProcessID(proc.Pid),
				Name: procName,
				Exe:  exe,
			})
		}
	}

	return out, nil
}

// PickPID returns the lowest PID among the processes matching name.
func PickPID(name string) (ProcessID, error) {
	matches, err := FindProcessByName(name)
	if err != nil {
		return 0, err
	}

	if len(matches) == 0 {
		return 0, fmt.Errorf("no process found with name '%s'", name)
	}

	pick := matches[0].PID
	for _, m := range matches[1:] {
		if m.PID < pick {
			pick = m.PID
		}
	}

	return pick, nil
}

// ProcessName returns the name of the process with the given PID, or
// "unknown" when it cannot be read.
func ProcessName(pid ProcessID) string {
	proc, err := psprocess.NewProcess(int32(pid))
	if err != nil {
		return "unknown"
	}

	name, err := proc.Name()
	if err != nil || name == "" {
		return "unknown"
	}

	return name
}

//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"sync"

	"gofreeze/process"
	"gofreeze/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// LinuxProcess implements the process.Process interface for Linux systems
type LinuxProcess struct {
	pid process.ProcessID
	log *logger.Logger
	mm  []memory_map.MemoryMapItem
	mu  sync.Mutex
}

var _ process.Process = (*LinuxProcess)(nil)

// New creates a new LinuxProcess instance
func New() *LinuxProcess {
	return &LinuxProcess{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
}

// NewWithPID creates a new LinuxProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (*LinuxProcess, error) {
	p := New()
	if err := p.Open(pid); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LinuxProcess) Open(pid process.ProcessID) error {
	procPath := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return fmt.Errorf("process with PID %d does not exist", pid)
	}

	p.mu.Lock()
	p.pid = pid
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	// Initialize memory map - call without holding the lock to avoid deadlock
	if err := p.UpdateMemoryMap(); err != nil {
		return fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened")

	return nil
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pid = 0
	p.mm = nil

	p.log.Infoln("Process closed")
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *LinuxProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pid == 0 {
		return process.ErrProcessNotOpen
	}

	mm, err := memory_map.ReadProcMaps(int(p.pid))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	// lookups binary-search the map
	memory_map.Sort(mm)

	p.mm = mm
	return nil
}

func (p *LinuxProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.regionInternal(addr, 1, false) == nil
}

// regionInternal checks that [addr, addr+size) is mapped with the required
// permissions. The caller holds p.mu.
func (p *LinuxProcess) regionInternal(addr process.ProcessMemoryAddress, size process.ProcessMemorySize, write bool) error {
	if addr <= 0x10000 {
		return process.ErrAddressNotMapped
	}

	item := memory_map.Contains(uint64(addr), uint(size), p.mm)
	if item == nil || !item.IsReadable() {
		return process.ErrAddressNotMapped
	}

	if write && !item.IsWritable() {
		return fmt.Errorf("%w: %s", process.ErrNotWritable, addr)
	}

	return nil
}

func (p *LinuxProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	// Make a copy of the memory map to prevent external modification
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)

	return result, nil
}

// ModuleBaseAddress returns the lowest mapping of the shared object or
// executable whose file name is name. The map is refreshed once on a miss,
// since libraries may be loaded after the process was opened.
func (p *LinuxProcess) ModuleBaseAddress(name string) (process.ProcessMemoryAddress, error) {
	p.mu.Lock()
	base, ok := memory_map.ModuleBase(name, p.mm)
	p.mu.Unlock()
	if ok {
		return process.ProcessMemoryAddress(base), nil
	}

	if err := p.UpdateMemoryMap(); err != nil {
		return 0, err
	}

	p.mu.Lock()
	base, ok = memory_map.ModuleBase(name, p.mm)
	p.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", process.ErrModuleNotFound, name)
	}

	p.log.Debugln("Module", name, "mapped at", process.ProcessMemoryAddress(base).ToString())

	return process.ProcessMemoryAddress(base), nil
}

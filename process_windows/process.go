//go:build windows

package process_windows

import (
	"fmt"
	"sync"
	"unsafe"

	"gofreeze/process"
	"gofreeze/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

const desiredAccess = windows.PROCESS_VM_READ |
	windows.PROCESS_VM_WRITE |
	windows.PROCESS_VM_OPERATION |
	windows.PROCESS_QUERY_INFORMATION

// WindowsProcess implements the process.Process interface for Windows systems
type WindowsProcess struct {
	pid    process.ProcessID
	handle windows.Handle
	log    *logger.Logger
	mm     []memory_map.MemoryMapItem
	mu     sync.Mutex
}

var _ process.Process = (*WindowsProcess)(nil)

// New creates a new WindowsProcess instance
func New() *WindowsProcess {
	return &WindowsProcess{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
}

// NewWithPID creates a new WindowsProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (*WindowsProcess, error) {
	p := New()
	if err := p.Open(pid); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenByName opens the lowest-PID process whose name matches.
func OpenByName(name string) (*WindowsProcess, error) {
	pid, err := process.PickPID(name)
	if err != nil {
		return nil, err
	}

	return NewWithPID(pid)
}

func (p *WindowsProcess) Open(pid process.ProcessID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	handle, err := windows.OpenProcess(desiredAccess, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("OpenProcess failed: %w", err)
	}

	p.pid = pid
	p.handle = handle
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))

	if err := p.updateMemoryMapInternal(); err != nil {
		p.log.Warn("Failed to initialize memory map: ", err)
	}

	p.log.Infoln("Process opened")
	return nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		if err := windows.CloseHandle(p.handle); err != nil {
			return fmt.Errorf("CloseHandle failed: %w", err)
		}
		p.handle = 0
	}

	p.pid = 0
	p.mm = nil
	p.log.Infoln("Process closed")
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

func (p *WindowsProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *WindowsProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updateMemoryMapInternal()
}

// updateMemoryMapInternal walks the address space with VirtualQueryEx and
// records every committed region. The caller holds p.mu.
func (p *WindowsProcess) updateMemoryMapInternal() error {
	if p.handle == 0 {
		return process.ErrProcessNotOpen
	}

	modules, err := p.modulesInternal()
	if err != nil {
		p.log.Debugln("Module snapshot failed:", err)
	}

	var mm []memory_map.MemoryMapItem
	var mbi windows.MemoryBasicInformation
	addr := uintptr(0)

	for {
		err := windows.VirtualQueryEx(p.handle, addr, &mbi, unsafe.Sizeof(mbi))
		if err != nil {
			// end of the user address space
			break
		}

		if mbi.State == windows.MEM_COMMIT {
			item := memory_map.MemoryMapItem{
				Address: uint64(mbi.BaseAddress),
				Size:    uint(mbi.RegionSize),
				Perms:   protectToPerms(mbi.Protect),
			}
			if m, ok := modules[mbi.AllocationBase]; ok {
				item.Path = m
			}
			mm = append(mm, item)
		}

		next := mbi.BaseAddress + mbi.RegionSize
		if next <= addr {
			break
		}
		addr = next
	}

	memory_map.Sort(mm)
	p.mm = mm
	return nil
}

// modulesInternal maps each loaded module's base address to its file name.
func (p *WindowsProcess) modulesInternal() (map[uintptr]string, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(p.pid))
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	modules := make(map[uintptr]string)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	err = windows.Module32First(snapshot, &entry)
	for err == nil {
		modules[entry.ModBaseAddr] = windows.UTF16ToString(entry.ExePath[:])
		err = windows.Module32Next(snapshot, &entry)
	}

	return modules, nil
}

// protectToPerms renders a page protection as a /proc/pid/maps style
// permission string so the shared memory_map helpers apply.
func protectToPerms(protect uint32) string {
	if protect&(windows.PAGE_GUARD|windows.PAGE_NOACCESS) != 0 {
		return "---p"
	}

	switch protect &^ 0xF00 {
	case windows.PAGE_READONLY:
		return "r--p"
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		return "rw-p"
	case windows.PAGE_EXECUTE:
		return "--xp"
	case windows.PAGE_EXECUTE_READ:
		return "r-xp"
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		return "rwxp"
	}

	return "---p"
}

func (p *WindowsProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.regionInternal(addr, 1, false) == nil
}

// regionInternal checks that [addr, addr+size) is committed with the
// required protection. The caller holds p.mu.
func (p *WindowsProcess) regionInternal(addr process.ProcessMemoryAddress, size process.ProcessMemorySize, write bool) error {
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

func (p *WindowsProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)
	return result, nil
}

// ModuleBaseAddress returns the base of the named module, refreshing the
// map once on a miss.
func (p *WindowsProcess) ModuleBaseAddress(name string) (process.ProcessMemoryAddress, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if base, ok := memory_map.ModuleBase(name, p.mm); ok {
		return process.ProcessMemoryAddress(base), nil
	}

	if err := p.updateMemoryMapInternal(); err != nil {
		return 0, err
	}

	base, ok := memory_map.ModuleBase(name, p.mm)
	if !ok {
		return 0, fmt.Errorf("%w: %s", process.ErrModuleNotFound, name)
	}

	return process.ProcessMemoryAddress(base), nil
}

func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	handle := p.handle
	err := p.regionInternal(addr, size, false)
	p.mu.Unlock()

	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	if err := windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead); err != nil {
		return nil, fmt.Errorf("ReadProcessMemory failed at %s: %w", addr, err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("read incomplete: expected %d, got %d", size, bytesRead)
	}

	return buf, nil
}

func (p *WindowsProcess) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	p.mu.Lock()
	handle := p.handle
	err := p.regionInternal(addr, process.ProcessMemorySize(len(data)), true)
	p.mu.Unlock()

	if handle == 0 {
		return process.ErrProcessNotOpen
	}
	if err != nil {
		return err
	}

	var written uintptr
	if err := windows.WriteProcessMemory(handle, uintptr(addr), &data[0], uintptr(len(data)), &written); err != nil {
		return fmt.Errorf("WriteProcessMemory failed at %s: %w", addr, err)
	}

	if written != uintptr(len(data)) {
		return fmt.Errorf("only wrote %d of %d bytes at %s", written, len(data), addr)
	}

	return nil
}

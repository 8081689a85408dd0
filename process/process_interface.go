package process

import (
	"gofreeze/process/memory_map"
)

// RawMemory is the byte-level access every backend provides.
type RawMemory interface {
	// ReadMemory reads memory from the process at the specified address
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)

	// WriteMemory writes data to the process memory at the specified address
	WriteMemory(addr ProcessMemoryAddress, data []byte) error
}

// MemoryAccess is the typed access the pointer-chain engine and features use.
// Every operation is synchronous and may fail; none is atomic with respect to
// the target's own writes.
type MemoryAccess interface {
	// ReadPOINTER reads a pointer value from the specified address
	ReadPOINTER(addr ProcessMemoryAddress) (ProcessMemoryAddress, error)

	// ReadINT32 reads a signed 32-bit integer from the specified address
	ReadINT32(addr ProcessMemoryAddress) (int32, error)

	// ReadFLOAT32 reads a 32-bit floating point number from the specified address
	ReadFLOAT32(addr ProcessMemoryAddress) (float32, error)

	// WriteINT32 writes a signed 32-bit integer to the specified address
	WriteINT32(addr ProcessMemoryAddress, value int32) error

	// WriteFLOAT32 writes a 32-bit floating point number to the specified address
	WriteFLOAT32(addr ProcessMemoryAddress, value float32) error
}

// ModuleLocator finds where a loaded module is mapped.
type ModuleLocator interface {
	// ModuleBaseAddress returns the lowest mapped address of the named module
	ModuleBaseAddress(name string) (ProcessMemoryAddress, error)
}

// Process is the interface that defines operations for interacting with a system process
type Process interface {
	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// UpdateMemoryMap refreshes the memory map for the process
	UpdateMemoryMap() error

	// IsValidAddress checks if the given memory address is valid and readable
	IsValidAddress(addr ProcessMemoryAddress) bool

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	RawMemory
	MemoryAccess
	ModuleLocator
}

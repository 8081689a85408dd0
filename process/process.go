// Package process provides the types and interfaces shared by every
// process-memory backend.
package process

import "errors"

// Backends live in their own packages:
// - process_linux: process_vm_readv / process_vm_writev
// - process_windows: ReadProcessMemory / WriteProcessMemory
// - process_blob: in-memory images and loaded dumps

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	ErrInvalidPointer = errors.New("invalid pointer read")

	// ErrNotWritable is returned when a write targets a region without write permission.
	ErrNotWritable = errors.New("address not writable")

	// ErrModuleNotFound is returned when no mapped module matches the requested name.
	ErrModuleNotFound = errors.New("module not found")
)

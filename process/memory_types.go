package process

import (
	"fmt"
)

// PointerSize is the width of a pointer in the target process.
const PointerSize = ProcessMemorySize(8)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

func (pma ProcessMemoryAddress) String() string {
	return pma.ToString()
}

// Add applies a signed byte offset with unsigned wrap-around, like pointer
// arithmetic in the target.
func (pma ProcessMemoryAddress) Add(offset int64) ProcessMemoryAddress {
	return ProcessMemoryAddress(uint64(pma) + uint64(offset))
}

// IsNull reports whether the address is zero.
func (pma ProcessMemoryAddress) IsNull() bool {
	return pma == 0
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// MarshalText renders the address in hex, so JSON shows "0x7F10A000".
func (pma ProcessMemoryAddress) MarshalText() ([]byte, error) {
	return []byte(pma.ToString()), nil
}

package process

import (
	"fmt"
	"unsafe"
)

// Read is a helper to read a single value of type T from memory.
// T must be a fixed-size POD type; bytes are copied in the host's layout,
// which matches the little-endian targets this package supports.
func Read[T any](mem RawMemory, addr ProcessMemoryAddress) (T, error) {
	var t T
	size := ProcessMemorySize(unsafe.Sizeof(t))
	if size == 0 {
		return t, nil
	}

	data, err := mem.ReadMemory(addr, size)
	if err != nil {
		return t, err
	}
	if len(data) < int(size) {
		return t, fmt.Errorf("short read at %s: %d of %d bytes", addr, len(data), size)
	}

	copyTo(&t, data)
	return t, nil
}

// Write is the counterpart of Read: it serializes v and writes it at addr.
func Write[T any](mem RawMemory, addr ProcessMemoryAddress, v T) error {
	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return nil
	}

	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	out := make([]byte, size)
	copy(out, src)

	return mem.WriteMemory(addr, out)
}

// ReadPointer reads a pointer-sized value and returns it as an address.
func ReadPointer(mem RawMemory, addr ProcessMemoryAddress) (ProcessMemoryAddress, error) {
	if addr == 0 {
		return 0, fmt.Errorf("%w: 0x0", ErrInvalidPointer)
	}

	ptr, err := Read[uint64](mem, addr)
	if err != nil {
		return 0, err
	}
	return ProcessMemoryAddress(ptr), nil
}

// copyTo copies bytes to *T
func copyTo[T any](dst *T, src []byte) {
	size := int(unsafe.Sizeof(*dst))
	if len(src) < size {
		return
	}

	dstBytes := unsafe.Slice((*byte)(unsafe.Pointer(dst)), size)
	copy(dstBytes, src)
}

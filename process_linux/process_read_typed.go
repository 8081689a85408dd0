//go:build linux

package process_linux

import (
	"gofreeze/process"
)

// ReadPOINTER reads a pointer value from the specified address
func (p *LinuxProcess) ReadPOINTER(addr process.ProcessMemoryAddress) (process.ProcessMemoryAddress, error) {
	return process.ReadPointer(p, addr)
}

// ReadINT32 reads a signed 32-bit integer from the specified address
func (p *LinuxProcess) ReadINT32(addr process.ProcessMemoryAddress) (int32, error) {
	return process.Read[int32](p, addr)
}

// ReadFLOAT32 reads a 32-bit floating point number from the specified address
func (p *LinuxProcess) ReadFLOAT32(addr process.ProcessMemoryAddress) (float32, error) {
	return process.Read[float32](p, addr)
}

// WriteINT32 writes a signed 32-bit integer to the specified address
func (p *LinuxProcess) WriteINT32(addr process.ProcessMemoryAddress, value int32) error {
	return process.Write(p, addr, value)
}

// WriteFLOAT32 writes a 32-bit floating point number to the specified address
func (p *LinuxProcess) WriteFLOAT32(addr process.ProcessMemoryAddress, value float32) error {
	return process.Write(p, addr, value)
}

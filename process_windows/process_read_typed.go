//go:build windows

package process_windows

import (
	"encoding/binary"
	"math"

	"gofreeze/process"
)

// ReadPOINTER reads a pointer value from the specified address
func (p *WindowsProcess) ReadPOINTER(addr process.ProcessMemoryAddress) (process.ProcessMemoryAddress, error) {
	data, err := p.ReadMemory(addr, process.PointerSize)
	if err != nil {
		return 0, err
	}
	return process.ProcessMemoryAddress(binary.LittleEndian.Uint64(data)), nil
}

// ReadINT32 reads a signed 32-bit integer from the specified address
func (p *WindowsProcess) ReadINT32(addr process.ProcessMemoryAddress) (int32, error) {
	data, err := p.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(data)), nil
}

// ReadFLOAT32 reads a 32-bit floating point number from the specified address
func (p *WindowsProcess) ReadFLOAT32(addr process.ProcessMemoryAddress) (float32, error) {
	data, err := p.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(data)), nil
}

// WriteINT32 writes a signed 32-bit integer to the specified address
func (p *WindowsProcess) WriteINT32(addr process.ProcessMemoryAddress, value int32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(value))
	return p.WriteMemory(addr, buf)
}

// WriteFLOAT32 writes a 32-bit floating point number to the specified address
func (p *WindowsProcess) WriteFLOAT32(addr process.ProcessMemoryAddress, value float32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(value))
	return p.WriteMemory(addr, buf)
}

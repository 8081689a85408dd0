package process_blob

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"gofreeze/process"
	"gofreeze/process/memory_map"
)

type region struct {
	item memory_map.MemoryMapItem
	data []byte
}

// Image is an in-memory address space. It backs loaded dumps and stands in
// for a live process in tests.
type Image struct {
	pid     process.ProcessID
	regions []region
	writes  int
	mu      sync.Mutex
}

var _ process.Process = (*Image)(nil)

// NewImage returns an empty image reporting pid.
func NewImage(pid process.ProcessID) *Image {
	return &Image{pid: pid}
}

// Map adds a zero-filled region. Perms use the /proc/pid/maps form, e.g. "rw-p".
func (p *Image) Map(addr process.ProcessMemoryAddress, size process.ProcessMemorySize, perms string) {
	p.MapModule("", addr, size, perms)
}

// MapModule adds a zero-filled region backed by the named module.
func (p *Image) MapModule(path string, addr process.ProcessMemoryAddress, size process.ProcessMemorySize, perms string) {
	p.MapData(path, addr, make([]byte, size), perms)
}

// MapData adds a region holding data. The image owns data afterwards.
func (p *Image) MapData(path string, addr process.ProcessMemoryAddress, data []byte, perms string) {
	p.mapInternal(memory_map.MemoryMapItem{
		Address: uint64(addr),
		Size:    uint(len(data)),
		Perms:   perms,
		Path:    path,
	}, data)
}

// mapHole adds an inaccessible region without backing storage.
func (p *Image) mapHole(path string, addr process.ProcessMemoryAddress, size process.ProcessMemorySize) {
	p.mapInternal(memory_map.MemoryMapItem{
		Address: uint64(addr),
		Size:    uint(size),
		Perms:   "---p",
		Path:    path,
	}, nil)
}

func (p *Image) mapInternal(item memory_map.MemoryMapItem, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.regions = append(p.regions, region{item: item, data: data})

	// keep regions sorted for lookup
	for i := len(p.regions) - 1; i > 0 && p.regions[i].item.Address < p.regions[i-1].item.Address; i-- {
		p.regions[i], p.regions[i-1] = p.regions[i-1], p.regions[i]
	}
}

// Store copies data into the image ignoring permissions. It is meant for
// setting up fixtures, and does not count as a write.
func (p *Image) Store(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf, err := p.sliceInternal(addr, process.ProcessMemorySize(len(data)))
	if err != nil {
		return err
	}
	copy(buf, data)
	return nil
}

// StorePointer is Store for a pointer value.
func (p *Image) StorePointer(addr, value process.ProcessMemoryAddress) error {
	buf := make([]byte, process.PointerSize)
	binary.LittleEndian.PutUint64(buf, uint64(value))
	return p.Store(addr, buf)
}

// StoreINT32 is Store for a signed 32-bit integer.
func (p *Image) StoreINT32(addr process.ProcessMemoryAddress, value int32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(value))
	return p.Store(addr, buf)
}

// StoreFLOAT32 is Store for a 32-bit float.
func (p *Image) StoreFLOAT32(addr process.ProcessMemoryAddress, value float32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(value))
	return p.Store(addr, buf)
}

// Writes returns how many successful WriteMemory calls the image has served.
func (p *Image) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

// regionInternal returns the region holding [addr, addr+size). The caller holds p.mu.
func (p *Image) regionInternal(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) *region {
	for i := range p.regions {
		r := &p.regions[i]
		if uint64(addr) < r.item.Address {
			return nil
		}
		if uint64(addr) >= r.item.Address && uint64(addr)+uint64(size) <= r.item.End() {
			return r
		}
	}
	return nil
}

func (p *Image) sliceInternal(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	r := p.regionInternal(addr, size)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", process.ErrAddressNotMapped, addr)
	}
	offset := uint64(addr) - r.item.Address
	if offset+uint64(size) > uint64(len(r.data)) {
		return nil, fmt.Errorf("%w: %s has no backing data", process.ErrAddressNotMapped, addr)
	}
	return r.data[offset : offset+uint64(size)], nil
}

func (p *Image) Open(pid process.ProcessID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pid = pid
	return nil
}

func (p *Image) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regions = nil
	return nil
}

func (p *Image) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// UpdateMemoryMap is a no-op; the map of an image only changes through Map.
func (p *Image) UpdateMemoryMap() error {
	return nil
}

func (p *Image) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.regionInternal(addr, 1)
	return r != nil && r.item.IsReadable()
}

func (p *Image) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([]memory_map.MemoryMapItem, len(p.regions))
	for i, r := range p.regions {
		result[i] = r.item
	}
	return result, nil
}

func (p *Image) ModuleBaseAddress(name string) (process.ProcessMemoryAddress, error) {
	mm, _ := p.GetMemoryMap()
	base, ok := memory_map.ModuleBase(name, mm)
	if !ok {
		return 0, fmt.Errorf("%w: %s", process.ErrModuleNotFound, name)
	}
	return process.ProcessMemoryAddress(base), nil
}

func (p *Image) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.regionInternal(addr, size)
	if r == nil || !r.item.IsReadable() {
		return nil, fmt.Errorf("%w: %s", process.ErrAddressNotMapped, addr)
	}

	offset := uint64(addr) - r.item.Address
	result := make([]byte, size)
	copy(result, r.data[offset:])
	return result, nil
}

func (p *Image) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.regionInternal(addr, process.ProcessMemorySize(len(data)))
	if r == nil || !r.item.IsReadable() {
		return fmt.Errorf("%w: %s", process.ErrAddressNotMapped, addr)
	}
	if !r.item.IsWritable() {
		return fmt.Errorf("%w: %s", process.ErrNotWritable, addr)
	}

	offset := uint64(addr) - r.item.Address
	copy(r.data[offset:], data)
	p.writes++
	return nil
}

// ReadPOINTER reads a pointer value from the specified address
func (p *Image) ReadPOINTER(addr process.ProcessMemoryAddress) (process.ProcessMemoryAddress, error) {
	return process.ReadPointer(p, addr)
}

// ReadINT32 reads a signed 32-bit integer from the specified address
func (p *Image) ReadINT32(addr process.ProcessMemoryAddress) (int32, error) {
	data, err := p.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(data)), nil
}

// ReadFLOAT32 reads a 32-bit floating point number from the specified address
func (p *Image) ReadFLOAT32(addr process.ProcessMemoryAddress) (float32, error) {
	data, err := p.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(data)), nil
}

// WriteINT32 writes a signed 32-bit integer to the specified address
func (p *Image) WriteINT32(addr process.ProcessMemoryAddress, value int32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(value))
	return p.WriteMemory(addr, buf)
}

// WriteFLOAT32 writes a 32-bit floating point number to the specified address
func (p *Image) WriteFLOAT32(addr process.ProcessMemoryAddress, value float32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(value))
	return p.WriteMemory(addr, buf)
}

// Package search finds offset chains from a base address to fields holding a
// wanted value, for use as feature candidates.
package search

import (
	"encoding/binary"
	"errors"
	"math"

	"gofreeze/chain"
	"gofreeze/process"
)

// Memory is what the search needs from a target.
type Memory interface {
	ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error)
	IsValidAddress(addr process.ProcessMemoryAddress) bool
}

// Searcher holds configuration for the search
type Searcher struct {
	MaxStructSize uint
	MaxDepth      int
	MinAlignment  uint
	MaxResults    int
	SearchFor     func([]byte) bool
}

// Option is a function that configures a Searcher
type Option func(*Searcher)

func WithMaxStructSize(size uint) Option {
	return func(s *Searcher) {
		s.MaxStructSize = size
	}
}

// WithMaxDepth bounds the number of dereferences in a result chain.
func WithMaxDepth(depth int) Option {
	return func(s *Searcher) {
		s.MaxDepth = depth
	}
}

func WithMinAlignment(align uint) Option {
	return func(s *Searcher) {
		s.MinAlignment = align
	}
}

// WithMaxResults stops the search after n chains; 0 means no limit.
func WithMaxResults(n int) Option {
	return func(s *Searcher) {
		s.MaxResults = n
	}
}

// WithInt32 matches little-endian int32 fields equal to v.
func WithInt32(v int32) Option {
	return func(s *Searcher) {
		s.SearchFor = func(data []byte) bool {
			return len(data) >= 4 && int32(binary.LittleEndian.Uint32(data)) == v
		}
	}
}

// WithFloat32 matches float32 fields within tolerance of v.
func WithFloat32(v, tolerance float64) Option {
	return func(s *Searcher) {
		s.SearchFor = func(data []byte) bool {
			if len(data) < 4 {
				return false
			}
			f := float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))
			return math.Abs(f-v) <= tolerance
		}
	}
}

// Chains walks the structure at base: every aligned field that matches ends a
// chain, and every 8-byte aligned field that points at a valid address is
// followed, up to MaxDepth dereferences. Each struct is visited once, so only
// the first path found to it is reported. Results are in discovery order and
// resolve with chain.Resolve from base.
func Chains(mem Memory, base process.ProcessMemoryAddress, options ...Option) ([]chain.OffsetChain, error) {
	s := &Searcher{
		MaxStructSize: 256,
		MaxDepth:      3,
		MinAlignment:  4,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.SearchFor == nil {
		return nil, errors.New("no search target specified")
	}
	if s.MinAlignment == 0 || s.MaxStructSize == 0 {
		return nil, errors.New("struct size and alignment must be positive")
	}

	var results []chain.OffsetChain
	visited := make(map[process.ProcessMemoryAddress]bool)

	full := func() bool {
		return s.MaxResults > 0 && len(results) >= s.MaxResults
	}

	var walk func(addr process.ProcessMemoryAddress, depth int, path chain.OffsetChain)
	walk = func(addr process.ProcessMemoryAddress, depth int, path chain.OffsetChain) {
		if depth > s.MaxDepth || visited[addr] || full() {
			return
		}
		visited[addr] = true

		data, err := mem.ReadMemory(addr, process.ProcessMemorySize(s.MaxStructSize))
		if err != nil {
			return
		}

		for offset := uint(0); offset+s.MinAlignment <= uint(len(data)); offset += s.MinAlignment {
			if s.SearchFor(data[offset:]) {
				found := make(chain.OffsetChain, len(path), len(path)+1)
				copy(found, path)
				results = append(results, append(found, int64(offset)))
				if full() {
					return
				}
			}

			if offset%8 != 0 || depth == s.MaxDepth || offset+8 > uint(len(data)) {
				continue
			}

			ptr := process.ProcessMemoryAddress(binary.LittleEndian.Uint64(data[offset:]))
			if ptr.IsNull() || !mem.IsValidAddress(ptr) {
				continue
			}

			next := make(chain.OffsetChain, len(path), len(path)+1)
			copy(next, path)
			walk(ptr, depth+1, append(next, int64(offset)))
		}
	}

	walk(base, 0, nil)

	return results, nil
}

package feature

import (
	"fmt"

	"gofreeze/process"
)

// ValueType selects how a feature's values are written.
type ValueType string

const (
	Int32   ValueType = "int32"
	Float32 ValueType = "float32"
)

// ParseValueType accepts "int32", "float32", or "" for the int32 default.
func ParseValueType(s string) (ValueType, error) {
	switch ValueType(s) {
	case "", Int32:
		return Int32, nil
	case Float32:
		return Float32, nil
	}
	return "", fmt.Errorf("unknown value type %q", s)
}

// write stores v at addr as t. Int32 truncates toward zero.
func (t ValueType) write(mem process.MemoryAccess, addr process.ProcessMemoryAddress, v float64) error {
	switch t {
	case Float32:
		return mem.WriteFLOAT32(addr, float32(v))
	default:
		return mem.WriteINT32(addr, int32(v))
	}
}

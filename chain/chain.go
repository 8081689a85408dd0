// Package chain walks pointer chains from a base address to a target field
// and picks the first candidate chain that lands on a readable address.
package chain

import (
	"errors"
	"fmt"
	"strings"

	"gofreeze/process"
)

var (
	// ErrEmptyChain is returned for a chain without offsets.
	ErrEmptyChain = errors.New("empty offset chain")

	// ErrChainBroken is returned when a dereference before the last offset
	// fails or yields a null pointer.
	ErrChainBroken = errors.New("pointer chain broken")

	// ErrInvalidAddress is returned when an address fails validation.
	ErrInvalidAddress = errors.New("address not readable")

	// ErrNoValidCandidate is returned when no chain of a candidate set
	// resolves to a valid address.
	ErrNoValidCandidate = errors.New("no candidate chain valid")
)

// OffsetChain is one hypothesis about where a field lives: every offset but
// the last is followed by a dereference.
type OffsetChain []int64

func (c OffsetChain) String() string {
	parts := make([]string, len(c))
	for i, off := range c {
		if off < 0 {
			parts[i] = fmt.Sprintf("-0x%X", -off)
		} else {
			parts[i] = fmt.Sprintf("0x%X", off)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// CandidateSet lists alternative chains for the same field, highest priority first.
type CandidateSet []OffsetChain

// BrokenError reports the step at which a chain could not be followed.
// Err is nil when the pointer read at that step was null.
type BrokenError struct {
	Step int
	At   process.ProcessMemoryAddress
	Err  error
}

func (e *BrokenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: null pointer at step %d (%s)", ErrChainBroken, e.Step, e.At)
	}
	return fmt.Sprintf("%s: read failed at step %d (%s): %v", ErrChainBroken, e.Step, e.At, e.Err)
}

func (e *BrokenError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrChainBroken}
	}
	return []error{ErrChainBroken, e.Err}
}

// Hop is one dereference performed while walking a chain.
type Hop struct {
	Step  int
	At    process.ProcessMemoryAddress
	Value process.ProcessMemoryAddress
}

// Resolve walks chain from base. Each offset except the last is added and
// the pointer at the result is read; the last offset is only added.
// A null pointer stops the walk so no arithmetic happens on a null base.
func Resolve(mem process.MemoryAccess, base process.ProcessMemoryAddress, chain OffsetChain) (process.ProcessMemoryAddress, error) {
	addr, _, err := walk(mem, base, chain, false)
	return addr, err
}

// Trace is Resolve that also returns every dereference it performed.
func Trace(mem process.MemoryAccess, base process.ProcessMemoryAddress, chain OffsetChain) (process.ProcessMemoryAddress, []Hop, error) {
	return walk(mem, base, chain, true)
}

func walk(mem process.MemoryAccess, base process.ProcessMemoryAddress, chain OffsetChain, trace bool) (process.ProcessMemoryAddress, []Hop, error) {
	if len(chain) == 0 {
		return 0, nil, ErrEmptyChain
	}

	var hops []Hop
	addr := base
	last := len(chain) - 1

	for step, off := range chain[:last] {
		at := addr.Add(off)

		next, err := mem.ReadPOINTER(at)
		if err != nil {
			return 0, hops, &BrokenError{Step: step, At: at, Err: err}
		}

		if trace {
			hops = append(hops, Hop{Step: step, At: at, Value: next})
		}

		if next.IsNull() {
			return 0, hops, &BrokenError{Step: step, At: at}
		}

		addr = next
	}

	return addr.Add(chain[last]), hops, nil
}

// Validate does a pointer-sized read at addr. Success means the address is
// mapped and readable right now, nothing about what it holds.
func Validate(mem process.MemoryAccess, addr process.ProcessMemoryAddress) error {
	if addr.IsNull() {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, addr)
	}

	if _, err := mem.ReadPOINTER(addr); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidAddress, addr, err)
	}

	return nil
}

// Select returns the first chain of set, in order, that resolves and
// validates, along with its index. Each chain is tried once.
func Select(mem process.MemoryAccess, base process.ProcessMemoryAddress, set CandidateSet) (process.ProcessMemoryAddress, int, error) {
	if len(set) == 0 {
		return 0, -1, fmt.Errorf("%w: candidate set is empty", ErrNoValidCandidate)
	}

	causes := make([]error, 0, len(set))

	for i, c := range set {
		addr, err := Resolve(mem, base, c)
		if err == nil {
			err = Validate(mem, addr)
		}

		if err == nil {
			return addr, i, nil
		}

		causes = append(causes, fmt.Errorf("candidate %d %s: %w", i, c, err))
	}

	return 0, -1, fmt.Errorf("%w: %w", ErrNoValidCandidate, errors.Join(causes...))
}

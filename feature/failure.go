package feature

import (
	"errors"
	"fmt"

	"gofreeze/process"
)

var (
	// ErrAlreadyRunning is returned by Start on a running feature.
	ErrAlreadyRunning = errors.New("feature already running")

	// ErrScanInProgress is returned by Find and ClearPairs while a scan runs.
	ErrScanInProgress = errors.New("pair scan already in progress")

	// ErrModifyActive is returned by Modify while the modify task runs.
	ErrModifyActive = errors.New("pair modify already active")

	// ErrNoPairs is returned by Modify when no pair has been found.
	ErrNoPairs = errors.New("no matched pairs")
)

// Kind classifies a failure.
type Kind string

const (
	// KindStateConflict: the operation does not apply to the current state.
	KindStateConflict Kind = "state_conflict"
	// KindResolution: no candidate chain could be followed.
	KindResolution Kind = "resolution"
	// KindValidation: the address was not readable when checked.
	KindValidation Kind = "validation"
	// KindWrite: a value write failed.
	KindWrite Kind = "write"
	// KindScanRead: a pair scan read failed.
	KindScanRead Kind = "scan_read"
)

// Failure is the error every feature operation returns.
type Failure struct {
	Kind    Kind
	Feature string
	Address process.ProcessMemoryAddress
	Err     error
}

func (f *Failure) Error() string {
	if f.Address != 0 {
		return fmt.Sprintf("feature %s: %s at %s: %v", f.Feature, f.Kind, f.Address, f.Err)
	}
	return fmt.Sprintf("feature %s: %s: %v", f.Feature, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf returns the kind of the first Failure in err's chain, or "" if none.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

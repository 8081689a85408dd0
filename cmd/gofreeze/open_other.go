//go:build !linux && !windows

package main

import (
	"context"
	"errors"

	"gofreeze/config"
	"gofreeze/process"
)

var errUnsupported = errors.New("no process backend for this platform")

func openProcess(config.Target) (process.Process, error) {
	return nil, errUnsupported
}

func saveDump(context.Context, process.ProcessID, string) error {
	return errUnsupported
}

//go:build !linux

package main

import (
	"errors"

	"memscan/process"
)

func attachProcess(pid int, name string) (process.ScannerTarget, error) {
	return nil, errors.New("attaching to a live process requires linux, use --from with a saved dump")
}

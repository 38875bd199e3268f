//go:build linux

package main

import (
	"memscan/process"
	"memscan/process_linux"
)

func attachProcess(pid int, name string) (process.ScannerTarget, error) {
	if pid == 0 {
		info, err := process_linux.OneByName(name)
		if err != nil {
			return nil, err
		}
		pid = int(info.PID)
	}

	proc, err := process_linux.NewWithPID(process.ProcessID(pid))
	if err != nil {
		return nil, err
	}
	return proc, nil
}

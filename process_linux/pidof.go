//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"memscan/process"
)

// ListByName returns all processes whose comm or exe basename equals name,
// ordered by PID. The match is case-sensitive, like pidof.
func ListByName(name string) ([]process.ProcessInfo, error) {
	if name == "" {
		return nil, errors.New("empty name")
	}

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	selfPID := os.Getpid()
	var out []process.ProcessInfo

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue // not a PID dir
		}
		if pid == selfPID {
			continue
		}

		info := describePID(process.ProcessID(pid))
		if info.Name == name || (info.Exe != "" && filepath.Base(info.Exe) == name) {
			out = append(out, info)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].PID < out[j].PID
	})

	return out, nil
}

// OneByName returns the match with the lowest PID, or os.ErrNotExist if none.
func OneByName(name string) (process.ProcessInfo, error) {
	ps, err := ListByName(name)
	if err != nil {
		return process.ProcessInfo{}, err
	}
	if len(ps) == 0 {
		return process.ProcessInfo{}, fmt.Errorf("no process named %q: %w", name, os.ErrNotExist)
	}
	return ps[0], nil
}

// describePID reads comm and the exe link; either may be empty for zombies
// or processes we lack permission for.
func describePID(pid process.ProcessID) process.ProcessInfo {
	dir := filepath.Join("/proc", strconv.Itoa(int(pid)))

	comm, _ := os.ReadFile(filepath.Join(dir, "comm"))
	exe, _ := os.Readlink(filepath.Join(dir, "exe"))

	return process.ProcessInfo{
		PID:  pid,
		Name: strings.TrimRight(string(comm), "\r\n\t "),
		Exe:  exe,
	}
}

package process

// ProcessID represents a unique identifier for a process
type ProcessID int

// ProcessInfo identifies a running process found by name
type ProcessInfo struct {
	PID  ProcessID // Process ID
	Name string    // comm or executable basename
	Exe  string    // Path to the executable, empty when unreadable
}

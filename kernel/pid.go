package kernel

import "sync"

// pidAllocator hands out strictly increasing PIDs under its own lock
// (spec.md §3 "PID allocator", §5 "pid_lock is a leaf").
type pidAllocator struct {
	mu   sync.Mutex
	next int
}

// newPIDAllocator starts PID allocation at InitPID, so the very first
// allocproc call (for the initial process) receives PID 1.
func newPIDAllocator() *pidAllocator {
	return &pidAllocator{next: InitPID}
}

// allocate returns the next PID and advances the counter. pid_lock is held
// only for the duration of this call (spec.md §5: leaf lock, released
// before suspending).
func (a *pidAllocator) allocate() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	pid := a.next
	a.next++
	return pid
}

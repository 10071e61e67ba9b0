package kernel

import "sync"

// CPU is one CPU's scheduler-visible state (spec.md §3 "Per-CPU state"):
// the currently running process, an interrupt-nesting counter, and whether
// interrupts are (simulated as) enabled before the first nested disable.
//
// Real xv6 keeps this in a per-hart struct read via a hardware
// thread-pointer register; this port has no such register, so a *CPU is
// instead threaded explicitly into every call that needs "the calling
// CPU's" identity (spec.md §9 Open Questions, "Dynamic dispatch over
// policy" / cpuid() discussion).
type CPU struct {
	id int

	mu        sync.Mutex
	current   *PCB
	noff      int
	intenaBot bool
}

// ID returns this CPU's index in Kernel.cpus.
func (c *CPU) ID() int { return c.id }

// Current returns the PCB currently RUNNING on this CPU, or nil.
func (c *CPU) Current() *PCB {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// pushOff increments the interrupt-nesting counter, recording whether
// interrupts were enabled before the first nested disable (spec.md §5
// "Interrupts are globally disabled whenever any spinlock is held"). This
// port has no real interrupt controller; pushOff/popOff exist so the lock
// discipline they encode is still checkable by tests (NoffDepth) and by
// popOff's own panic, the same contract as xv6's push_off/pop_off.
func (c *CPU) pushOff() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.noff == 0 {
		c.intenaBot = true
	}
	c.noff++
}

// popOff decrements the interrupt-nesting counter. Panics if called without
// a matching pushOff (spec.md §7 "Invariant violation ... with wrong noff").
func (c *CPU) popOff() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.noff < 1 {
		panic("kernel: popOff without pushOff")
	}
	c.noff--
}

// NoffDepth reports the current interrupt-nesting depth, for tests.
func (c *CPU) NoffDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.noff
}

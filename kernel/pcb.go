package kernel

import (
	"sync"

	"github.com/edukernel/xv6core/kernel/extern"
)

// Handle is a non-owning reference to a table slot: an index plus a
// generation counter. Comparing a Handle against a slot's current
// generation detects slot reuse after a reap, so a stale parent/child
// reference can never alias a different, later process in the same slot
// (spec.md §9 "Cyclic structures").
type Handle struct {
	Index      int32
	Generation uint32
}

// Valid reports whether h names any slot at all (NoParent, with Index -1,
// names no process — used for "no parent", i.e. init). The zero Handle is
// Valid: it names slot 0.
func (h Handle) Valid() bool { return h.Index >= 0 }

// NoParent is the handle used by the initial process, which is never
// reparented and has no parent of its own.
var NoParent = Handle{Index: -1}

// PCB is one process table slot (spec.md §3). Every mutable field except
// parent (guarded by Kernel.waitLock, see invariant 5) and kstack
// (immutable after boot) is guarded by mu.
type PCB struct {
	// index is this slot's fixed position in the table; generation is
	// bumped every time the slot returns to Unused.
	index      int32
	generation uint32

	mu sync.Mutex

	// Identity.
	pid  int
	name string

	// parent is guarded by Kernel.waitLock, not mu (invariant 5).
	parent Handle

	// Lifecycle.
	state   ProcState
	xstate  int
	killed  bool

	// Execution context (spec.md §3 "Execution context"). The real
	// register set, page table, and trap frame are out of scope
	// collaborators (spec.md §1); PCB holds only the narrow handles it
	// needs to invoke them.
	context  *extern.KernelContext
	kstack   *extern.KernelStack
	pagetbl  extern.PageTable
	memSize  int
	trapfrm  *extern.TrapFrame
	files    [NOFILE]extern.File
	cwd      extern.Inode

	// Sleep state.
	chanKey uintptr

	// Accounting.
	creationTime int
	endTime      int
	cpuRunTime   int
	dispatches   int
	traceMask    int

	// Baton-pass channels implementing the simulated context switch
	// (see context.go). Buffered 1 so a send never blocks on scheduling
	// timing; see DESIGN.md / SPEC_FULL.md §E for the rationale.
	resumeCh chan struct{}
	parkedCh chan struct{}

	// PBS-only fields (spec.md §3).
	staticPriority int
	sleepStartTime int
	sleepTime      int

	// MLFQ-only fields (spec.md §3).
	currentQ            int
	entryTimeInCurrentQ int
	qTicks              [NMLFQ]int

	// dispatchTick records when the scheduler last set this slot RUNNING,
	// so policies can compute ticks-ran-this-dispatch without a separate
	// out-of-scope timer-trap callback. Not part of spec.md §3's listed
	// fields; pure bookkeeping for preemptNow/onParked.
	dispatchTick int
}

// Chan returns the opaque numeric rendezvous key identifying this slot as
// a sleep/wakeup channel (e.g. "sleep on self", spec.md §4.2 wait()). Real
// xv6 uses the PCB's address; this port uses a stable surrogate (index+1,
// never 0) to avoid unsafe pointer arithmetic while keeping the "opaque
// pointer-valued key" contract from spec.md's GLOSSARY.
func (p *PCB) Chan() uintptr { return uintptr(p.index) + 1 }

// Handle returns this slot's current (index, generation) reference.
// Callers must hold mu or be certain the slot cannot be concurrently reaped.
func (p *PCB) Handle() Handle { return Handle{Index: p.index, Generation: p.generation} }

// PID returns the slot's process ID (0 if UNUSED). Safe without a lock:
// pid only changes under mu and only while the caller that just allocated
// the slot holds it, so racy reads can at worst observe a slightly stale
// value, never a torn one (it's a single int).
func (p *PCB) PID() int { return p.pid }

// Name returns the process's short name.
func (p *PCB) Name() string { return p.name }

// State returns the slot's current lifecycle state.
func (p *PCB) State() ProcState { return p.state }

// Killed reports whether kill(pid) has marked this slot.
func (p *PCB) Killed() bool { return p.killed }

// XState returns the exit status recorded by exit(), valid once ZOMBIE.
func (p *PCB) XState() int { return p.xstate }

// CPURunTime returns ticks spent RUNNING, accumulated by the tick updater.
func (p *PCB) CPURunTime() int { return p.cpuRunTime }

// NoOfTimesGotCPU returns the number of times the scheduler has dispatched
// this slot.
func (p *PCB) NoOfTimesGotCPU() int { return p.dispatches }

// StaticPriority returns the PBS static priority (meaningless outside PolicyPBS).
func (p *PCB) StaticPriority() int { return p.staticPriority }

// CurrentQueue returns the MLFQ queue number (meaningless outside PolicyMLFQ).
func (p *PCB) CurrentQueue() int { return p.currentQ }

// TraceMask returns the slot's syscall trace mask, set by ProcAPI.Trace and
// inherited by its children on fork.
func (p *PCB) TraceMask() int { return p.traceMask }

// Lock / Unlock expose the per-slot spinlock-equivalent for callers (the
// Table scanners in lifecycle.go and the policies) that must take locks in
// the table's documented order. Exported so package-external test helpers
// can assert invariant 2/4 without a data race.
func (p *PCB) Lock()   { p.mu.Lock() }
func (p *PCB) Unlock() { p.mu.Unlock() }

// reset clears every field back to the UNUSED zero value and bumps the
// generation so stale Handles can never alias the slot's next tenant.
// Caller must hold mu.
func (p *PCB) reset() {
	gen := p.generation + 1
	idx := p.index
	resume, parked := p.resumeCh, p.parkedCh
	*p = PCB{index: idx, generation: gen, resumeCh: resume, parkedCh: parked}
}

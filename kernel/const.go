package kernel

// Policy selects one of the four scheduling disciplines at boot. Real xv6
// picks this with a compile-time #ifdef; here it's a Config field, but the
// spec's "compile-time selection, no runtime switching" contract still
// holds — Kernel.policy is set once in NewKernel and never changed afterward.
type Policy int

const (
	// PolicyDefault is plain round-robin over the table.
	PolicyDefault Policy = iota
	// PolicyFCFS is non-preemptive first-come-first-served by creation time.
	PolicyFCFS
	// PolicyPBS is priority-based scheduling with dynamic niceness.
	PolicyPBS
	// PolicyMLFQ is a five-level multi-level feedback queue with aging.
	PolicyMLFQ
)

func (p Policy) String() string {
	switch p {
	case PolicyDefault:
		return "DEFAULT"
	case PolicyFCFS:
		return "FCFS"
	case PolicyPBS:
		return "PBS"
	case PolicyMLFQ:
		return "MLFQ"
	default:
		return "UNKNOWN"
	}
}

const (
	// NPROC is the fixed number of slots in the process table.
	NPROC = 64

	// NOFILE is the fixed size of a process's open-file table.
	NOFILE = 16

	// NMLFQ is the number of MLFQ priority levels, 0 (highest) .. NMLFQ-1.
	NMLFQ = 5

	// DefaultStaticPriority is the PBS static priority assigned at creation.
	DefaultStaticPriority = 60

	// MinPriority and MaxPriority bound both static and dynamic priority.
	MinPriority = 0
	MaxPriority = 100

	// WaitingLimit is the number of ticks a RUNNABLE MLFQ slot may wait in a
	// queue above 0 before it is promoted one level.
	WaitingLimit = 30

	// InitPID is the PID of the first, never-reparented, never-exiting
	// process (spec.md §3 invariant 7).
	InitPID = 1
)

// MLFQSlice is the implementation-defined per-queue time slice length, in
// ticks, indexed by queue number 0..NMLFQ-1. Lower queues get shorter
// slices; slice lengths only need to be positive and monotonically
// increasing, per spec.md §4.4.
var MLFQSlice = [NMLFQ]int{1, 2, 4, 8, 16}

package kernel

// ProcState is the lifecycle state of a process table slot (spec.md §4.1).
type ProcState int

const (
	// Unused marks a free slot: pid == 0, no owned resources.
	Unused ProcState = iota
	// Used marks a reserved slot mid-construction (allocproc has run, the
	// caller hasn't finished attaching resources yet).
	Used
	// Sleeping marks a slot blocked in sleep(), chan != 0.
	Sleeping
	// Runnable marks a slot eligible for dispatch.
	Runnable
	// Running marks the slot currently executing on some CPU.
	Running
	// Zombie marks a slot that has exited and is awaiting reap by wait/waitx.
	Zombie
)

func (s ProcState) String() string {
	switch s {
	case Unused:
		return "UNUSED"
	case Used:
		return "USED"
	case Sleeping:
		return "SLEEPING"
	case Runnable:
		return "RUNNABLE"
	case Running:
		return "RUNNING"
	case Zombie:
		return "ZOMBIE"
	default:
		return "INVALID"
	}
}

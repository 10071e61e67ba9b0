package kernel

import "errors"

// Sentinel errors for the taxonomy in spec.md §7. Callers compare with
// errors.Is; the kernel returns these values unwrapped, the same
// named-value-at-the-package-level shape the teacher uses for its own
// syscall error constants.
var (
	// ErrNoFreeSlot is returned by allocproc when the table has no UNUSED slot.
	ErrNoFreeSlot = errors.New("kernel: no free process slot")

	// ErrResourceExhausted covers page/page-table/trap-frame attach failure.
	ErrResourceExhausted = errors.New("kernel: resource exhausted")

	// ErrNoChildren is returned by wait/waitx when the caller has none.
	ErrNoChildren = errors.New("kernel: no children")

	// ErrKilled is returned by wait/waitx when the caller itself is killed.
	ErrKilled = errors.New("kernel: caller killed")

	// ErrBadAddr marks a copy-out failure during wait/waitx (spec.md §7:
	// "return -1 without reaping the child"). Reserved for a future
	// syscall-boundary wrapper around Wait/WaitX that accepts a raw user
	// address for the exit-status pointer; ProcAPI.Wait/WaitX return xstate
	// directly as a Go value rather than through a user pointer, since
	// address-space/copyout is the trap/return collaborator's job
	// (kernel/extern) and out of this port's scope, so nothing here
	// constructs this error yet.
	ErrBadAddr = errors.New("kernel: invalid user pointer")

	// ErrUnknownPID is returned by kill/set_priority for an unrecognized pid.
	ErrUnknownPID = errors.New("kernel: unknown pid")

	// ErrInterrupted is returned by sys_sleep when kill() fires mid-sleep.
	ErrInterrupted = errors.New("kernel: sleep interrupted by kill")

	// ErrBadPriority is returned by set_priority for an out-of-range value.
	ErrBadPriority = errors.New("kernel: priority out of range")

	// ErrWrongPolicy is returned by set_priority when the kernel wasn't
	// booted with PolicyPBS (spec.md §6: "else -1").
	ErrWrongPolicy = errors.New("kernel: syscall not supported by active policy")
)

package kernel

import "github.com/hashicorp/go-multierror"

// Yield voluntarily gives up the CPU, returning the calling process to
// RUNNABLE (spec.md §4.4 "yield"). Used both by a cooperative scheduling
// point in a process body and internally by CheckPreempt.
func (api *ProcAPI) Yield() {
	api.park(false)
}

// CheckPreempt is the process body's cooperative stand-in for the timer
// trap's forced preemption check (spec.md §9 "no real hardware interrupt
// available to this port"): a process calls it at a safe point and is
// yielded, with preempted=true threaded through to onParked, if the active
// policy's preemptNow says its slice is exhausted.
func (api *ProcAPI) CheckPreempt() {
	k, p := api.k, api.pcb
	now := k.Ticks()
	if k.policy.preemptNow(p, now) {
		api.park(true)
	}
}

// park is the shared RUNNING -> RUNNABLE transition used by Yield and
// CheckPreempt: acquire own lock (A2), notify the policy, flip state, then
// swtch out (spec.md §4.4 "yield").
func (api *ProcAPI) park(preempted bool) {
	k, p := api.k, api.pcb
	p.mu.Lock()
	now := k.Ticks()
	k.policy.onParked(p, now, preempted)
	p.state = Runnable
	k.policy.onRunnable(p, now)
	p.switchOut(false)
}

// Sleep blocks the calling process on chanKey, releasing lk (the caller's
// guard lock, e.g. a device's own mutex) around the block and reacquiring
// it on wake (spec.md §4.3 "sleep"). lk may be nil when the caller already
// holds no other lock across the sleep. It returns ErrInterrupted if
// kill() marked the process while it was blocked, mirroring sys_sleep's
// check of myproc()->killed immediately after waking in
// original_source/kernel/sysproc.c — sleep itself never refuses to return,
// it is the caller's job to notice the flag once control comes back.
func (api *ProcAPI) Sleep(chanKey uintptr, lk Locker) error {
	k, p := api.k, api.pcb

	p.mu.Lock()
	if lk != nil {
		lk.Unlock()
	}
	now := k.Ticks()
	k.policy.onParked(p, now, false)
	p.chanKey = chanKey
	p.state = Sleeping
	if k.policyID == PolicyPBS {
		p.sleepStartTime = now
	}
	p.switchOut(false)

	// Resumed: the scheduler has already set state = RUNNING and released
	// the lock is held by us again only via switchOut's own Unlock on
	// return (R1); chan is cleared here since nothing else inspects it once
	// the slot is no longer SLEEPING.
	p.chanKey = 0
	if lk != nil {
		lk.Lock()
	}
	if p.Killed() {
		return ErrInterrupted
	}
	return nil
}

// Exit terminates the calling process (spec.md §4.2 "exit"): closes its
// open files, drops its cwd, reparents its children to init, wakes its
// parent, and becomes a ZOMBIE awaiting reap. Control never returns to the
// caller — the process body should return immediately after calling this.
//
// Exiting the init process is a fatal invariant violation (spec.md §4.2,
// §7): original_source/kernel/proc.c:374 panics with "init exiting" rather
// than let init become reapable, since nothing in the system would ever
// reparent to it again.
func (api *ProcAPI) Exit(status int) {
	k, p := api.k, api.pcb

	if p.Handle() == k.initHandle {
		k.panicf("init exiting")
	}

	var closeErrs *multierror.Error
	for i := range p.files {
		if p.files[i] != nil {
			if err := p.files[i].Close(); err != nil {
				closeErrs = multierror.Append(closeErrs, err)
			}
			p.files[i] = nil
		}
	}
	if p.cwd != nil {
		if err := p.cwd.Put(); err != nil {
			closeErrs = multierror.Append(closeErrs, err)
		}
		p.cwd = nil
	}
	// A double-close is a bookkeeping bug elsewhere in the process, not a
	// reason to fail exit() itself — xv6's exit() cannot return an error —
	// so the combined error is only logged, never propagated.
	if err := closeErrs.ErrorOrNil(); err != nil {
		k.log.WithField("pid", p.pid).Warnf("exit: %v", err)
	}

	k.waitLock.Lock()
	k.reparentChildren(p)
	parent := k.table.byHandle(p.parent)
	if parent != nil {
		k.wakeup(parent.Chan(), nil)
	}

	p.mu.Lock()
	now := k.Ticks()
	k.policy.onParked(p, now, false)
	p.xstate = status
	p.endTime = now
	p.state = Zombie
	k.waitLock.Unlock()

	p.switchOut(true)
}

// PID returns the calling process's own PID (spec.md §6 sys_getpid).
func (api *ProcAPI) PID() int { return api.pcb.PID() }

// Uptime returns the kernel's current tick count (spec.md §6 sys_uptime).
func (api *ProcAPI) Uptime() int { return api.k.Ticks() }

// Trace sets the calling process's syscall trace mask, inherited by future
// children (spec.md §9 supplemented feature 5, "trace mask propagated on
// fork"). The mask's interpretation is left to the out-of-scope strace
// tool; the kernel only stores and propagates it.
func (api *ProcAPI) Trace(mask int) {
	p := api.pcb
	p.mu.Lock()
	p.traceMask = mask
	p.mu.Unlock()
}

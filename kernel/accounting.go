package kernel

// setPriority changes the PBS static priority of the process identified by
// pid (spec.md §6 "set_priority", §9 supplemented feature 4). It resets
// the target's niceness-window accounting exactly as original_source's
// implementation does — clearing cpuRunTime and sleepTime outright, not
// just reseeding them — so the next DynamicPriority computation starts
// from the fresh window the original distills to "niceness resets to 5"
// (SPEC_FULL.md §D.4, the same accounting distortion, preserved rather
// than smoothed over).
//
// Returns the process's previous static priority, its old and new dynamic
// priority (for the caller to decide whether to yield), and the target
// PCB, or an error if pid is unknown, the kernel isn't running PolicyPBS,
// or newPriority is out of [MinPriority, MaxPriority].
func (k *Kernel) setPriority(newPriority, pid int) (old, oldDP, newDP int, target *PCB, err error) {
	if k.policyID != PolicyPBS {
		return -1, -1, -1, nil, ErrWrongPolicy
	}
	if newPriority < MinPriority || newPriority > MaxPriority {
		return -1, -1, -1, nil, ErrBadPriority
	}

	k.table.ForEach(func(p *PCB) {
		if target == nil && p.pid == pid && p.state != Unused {
			target = p
		}
	})
	if target == nil {
		return -1, -1, -1, nil, ErrUnknownPID
	}

	target.mu.Lock()
	old = target.staticPriority
	oldDP = dynamicPriority(target)
	target.staticPriority = newPriority
	target.cpuRunTime = 0
	target.sleepTime = 0
	newDP = dynamicPriority(target)
	target.mu.Unlock()

	return old, oldDP, newDP, target, nil
}

// SetPriority is the administrative entry point (CLI, tests) for retuning
// any process's PBS static priority from outside any process's own
// execution context. It never forces a yield — there is no running
// process's goroutine to call Yield from here — so a just-improved
// process is picked up on the scheduler's next natural pass instead of
// immediately.
func (k *Kernel) SetPriority(newPriority, pid int) (int, error) {
	old, _, _, _, err := k.setPriority(newPriority, pid)
	return old, err
}

// SetPriority is the syscall-level entry point (spec.md §6 "set_priority"):
// a process may retune its own or another's PBS static priority. If it
// retuned itself and its own dynamic priority improved, it yields
// immediately so the scheduler can reconsider (spec.md §4.4
// "set_priority"); retuning another pid never forces a yield, since only
// the caller's own goroutine may call Yield into the baton protocol
// (context.go).
func (api *ProcAPI) SetPriority(newPriority, pid int) (int, error) {
	old, oldDP, newDP, target, err := api.k.setPriority(newPriority, pid)
	if err != nil {
		return old, err
	}
	if target == api.pcb && newDP < oldDP {
		api.Yield()
	}
	return old, nil
}

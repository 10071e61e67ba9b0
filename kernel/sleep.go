package kernel

// wakeup scans the table for every slot SLEEPING on chanKey and makes it
// RUNNABLE (spec.md §4.3 "wakeup"). except, if non-nil, is skipped — a
// process never needs to wake itself, and exit()/reparent() call this while
// already holding the waking slot's own state settled.
//
// Callers may hold Kernel.waitLock (reparent waking init, exit waking its
// parent) but must not hold any per-slot lock: wakeup takes each slot's lock
// itself, respecting the wait_lock -> per-slot ordering (spec.md §5).
func (k *Kernel) wakeup(chanKey uintptr, except *PCB) {
	now := k.Ticks()
	k.table.ForEach(func(p *PCB) {
		if p == except {
			return
		}
		p.mu.Lock()
		if p.state == Sleeping && p.chanKey == chanKey {
			if k.policyID == PolicyPBS {
				p.sleepTime += now - p.sleepStartTime
			}
			p.state = Runnable
			k.policy.onRunnable(p, now)
		}
		p.mu.Unlock()
	})
}

// Wakeup is the exported entry point for an external event source (a mock
// device, a test) to wake every process sleeping on chanKey (spec.md §4.3).
func (k *Kernel) Wakeup(chanKey uintptr) {
	k.wakeup(chanKey, nil)
}

// ChanOf looks up the "sleep on self" rendezvous key for a live pid, for an
// external driver (a test, the CLI demo) that knows a pid but not its PCB
// and wants to wake it via Wakeup.
func (k *Kernel) ChanOf(pid int) (uintptr, bool) {
	var found *PCB
	k.table.ForEach(func(p *PCB) {
		if found == nil && p.pid == pid && p.state != Unused {
			found = p
		}
	})
	if found == nil {
		return 0, false
	}
	return found.Chan(), true
}

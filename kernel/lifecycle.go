package kernel

import (
	"github.com/edukernel/xv6core/kernel/extern"
)

// allocproc finds an UNUSED slot and reserves it (spec.md §4.2 "allocproc"):
// assigns a fresh PID, a kernel stack and saved context, and an empty trap
// frame, then leaves it USED for the caller (userinit or fork) to finish
// attaching a page table, files, and cwd before flipping it RUNNABLE.
func (k *Kernel) allocproc() (*PCB, error) {
	var found *PCB
	k.table.ForEach(func(p *PCB) {
		if found != nil {
			return
		}
		p.mu.Lock()
		if p.state == Unused {
			found = p
			return
		}
		p.mu.Unlock()
	})
	if found == nil {
		return nil, ErrNoFreeSlot
	}

	p := found
	now := k.Ticks()
	p.pid = k.pids.allocate()
	p.state = Used
	p.context = &extern.KernelContext{}
	p.kstack = &extern.KernelStack{VAddr: uintptr(p.index+1) << 20}
	p.trapfrm = &extern.TrapFrame{}
	p.creationTime = now
	p.staticPriority = DefaultStaticPriority
	p.currentQ = 0
	p.entryTimeInCurrentQ = now
	p.mu.Unlock()
	return p, nil
}

// freeproc releases a ZOMBIE slot's resources and returns it to UNUSED,
// bumping its generation so stale Handles can never alias the next tenant
// (spec.md §4.2 "freeproc", §9 "Cyclic structures").
func (k *Kernel) freeproc(p *PCB) {
	if p.pagetbl != nil {
		p.pagetbl.Free()
	}
	p.mu.Lock()
	p.reset()
	p.mu.Unlock()
}

// userinit constructs the very first process (spec.md §4.1 "Initial state
// on boot"): PID 1, no parent, a fresh empty address space, and body as its
// user-mode workload. It is the only process ever created outside fork.
func (k *Kernel) userinit(body ProcBody) (*PCB, error) {
	p, err := k.allocproc()
	if err != nil {
		return nil, err
	}
	pt, err := extern.NewMockPageTable(k.pageAlloc)
	if err != nil {
		k.freeproc(p)
		return nil, ErrResourceExhausted
	}

	p.mu.Lock()
	p.pagetbl = pt
	p.name = "init"
	p.parent = NoParent
	now := k.Ticks()
	p.state = Runnable
	k.policy.onRunnable(p, now)
	p.mu.Unlock()

	go k.run(p, body)
	return p, nil
}

// Fork duplicates the calling process (spec.md §4.2 "fork"): a new slot
// with a copied page table, a cloned trap frame (child's return-value
// register forced to 0), duplicated open files and cwd, the parent's trace
// mask (spec.md §9 supplemented feature 5), and PID DefaultStaticPriority
// for PBS. On any resource-attach failure the partially built child is torn
// down and ErrResourceExhausted is returned; the parent is left unchanged.
//
// Real fork() returns twice into the *same* instruction stream, telling
// caller and child apart by return value; a goroutine has no equivalent of
// resuming "the same place" in a different body, so this port takes the
// child's body explicitly instead. childBody may be nil, matching a
// process whose control flow falls straight through to an implicit
// exit(0), the same as real fork's child reaching the end of main().
func (api *ProcAPI) Fork(childBody ProcBody) (int, error) {
	k, parent := api.k, api.pcb
	child, err := k.allocproc()
	if err != nil {
		return -1, err
	}

	childPT, err := parent.pagetbl.Copy()
	if err != nil {
		k.freeproc(child)
		return -1, ErrResourceExhausted
	}

	child.mu.Lock()
	child.pagetbl = childPT
	child.memSize = parent.memSize
	child.trapfrm = parent.trapfrm.Clone()
	child.name = parent.name
	child.traceMask = parent.traceMask
	for i, f := range parent.files {
		if f != nil {
			f.Dup()
			child.files[i] = f
		}
	}
	if parent.cwd != nil {
		parent.cwd.Dup()
		child.cwd = parent.cwd
	}
	child.mu.Unlock()

	k.waitLock.Lock()
	child.mu.Lock()
	child.parent = parent.Handle()
	now := k.Ticks()
	child.state = Runnable
	k.policy.onRunnable(child, now)
	pid := child.pid
	child.mu.Unlock()
	k.waitLock.Unlock()

	go k.run(child, childBody)
	return pid, nil
}

// run is the goroutine backing one process table slot: it waits through
// bootstrap's resume (the trampoline, spec.md §4.4) for the scheduler's
// first dispatch, runs body, and falls through to an implicit exit(0) if
// body returns (or is nil) without calling Exit itself. The initial
// process never exits: once its body returns it loops reaping children,
// sleeping on its own channel whenever it has none to reap.
func (k *Kernel) run(p *PCB, body ProcBody) {
	p.bootstrap(k)
	api := &ProcAPI{k: k, pcb: p}
	if body != nil {
		body(api)
	}
	if p.Handle() == k.initHandle {
		for {
			if _, _, err := api.Wait(); err != nil {
				_ = api.Sleep(p.Chan(), nil)
			}
		}
	}
	api.Exit(0)
}

// reparentChildren reassigns every slot parented to exited over to init,
// waking init if any were reassigned (spec.md §4.2 "exit" reparenting
// step). Caller must hold Kernel.waitLock.
func (k *Kernel) reparentChildren(exited *PCB) {
	exitedHandle := exited.Handle()
	reassigned := false
	k.table.ForEach(func(p *PCB) {
		if p == exited {
			return
		}
		p.mu.Lock()
		if p.parent == exitedHandle {
			p.parent = k.initHandle
			reassigned = true
		}
		p.mu.Unlock()
	})
	if reassigned {
		if init := k.table.byHandle(k.initHandle); init != nil {
			k.wakeup(init.Chan(), nil)
		}
	}
}

// Wait blocks until a child exits, reaps it, and returns its pid and exit
// status (spec.md §4.2 "wait"). ErrNoChildren if the caller has none;
// ErrKilled if kill() fires while blocked.
func (api *ProcAPI) Wait() (pid, xstate int, err error) {
	pid, xstate, _, _, err = api.k.waitCommon(api.pcb)
	return pid, xstate, err
}

// WaitX is Wait plus the reaped child's running time (ticks spent RUNNING)
// and wait time, in ticks (spec.md §9 supplemented feature 2, "waitx
// wait-time formula").
func (api *ProcAPI) WaitX() (pid, xstate, runtime, waittime int, err error) {
	return api.k.waitCommon(api.pcb)
}

// waitCommon implements both Wait and WaitX: spin scanning the table for a
// ZOMBIE child of caller, sleeping on caller's own channel (guarded by
// wait_lock) whenever caller still has live children but none are ready to
// reap yet (spec.md §4.2 "wait").
func (k *Kernel) waitCommon(caller *PCB) (pid, xstate, runtime, waittime int, err error) {
	k.waitLock.Lock()
	for {
		haveKids := false
		for i := int32(0); i < int32(k.table.Len()); i++ {
			child := k.table.Slot(i)
			child.mu.Lock()
			// An UNUSED or still-USED slot is nobody's child yet; its zero
			// parent handle would otherwise alias slot 0's (init's) handle.
			if child.state == Unused || child.state == Used || child.parent != caller.Handle() {
				child.mu.Unlock()
				continue
			}
			haveKids = true
			if child.state == Zombie {
				pid = child.pid
				xstate = child.xstate
				runtime = child.cpuRunTime
				waittime = waitTime(child.endTime-child.creationTime, child.cpuRunTime)
				child.mu.Unlock()
				k.waitLock.Unlock()
				k.freeproc(child)
				return pid, xstate, runtime, waittime, nil
			}
			child.mu.Unlock()
		}
		if !haveKids {
			k.waitLock.Unlock()
			return 0, 0, 0, 0, ErrNoChildren
		}

		caller.mu.Lock()
		if caller.killed {
			caller.mu.Unlock()
			k.waitLock.Unlock()
			return 0, 0, 0, 0, ErrKilled
		}
		now := k.Ticks()
		k.policy.onParked(caller, now, false)
		caller.chanKey = caller.Chan()
		caller.state = Sleeping
		if k.policyID == PolicyPBS {
			caller.sleepStartTime = now
		}
		k.waitLock.Unlock()
		caller.switchOut(false)
		caller.chanKey = 0

		k.waitLock.Lock()
	}
}

// waitTime is the pure wait-time formula recovered from original_source's
// waitx (spec.md §9 supplemented feature 2): total lifetime minus the
// fraction actually spent RUNNING, i.e. time spent RUNNABLE or SLEEPING.
func waitTime(runtime, cpuRunTime int) int {
	wt := runtime - cpuRunTime
	if wt < 0 {
		return 0
	}
	return wt
}

// Kill marks the process with the given pid for termination (spec.md §4.2
// "kill"): sets killed, and if it is SLEEPING, wakes it so it observes the
// flag promptly instead of waiting out whatever it was blocked on.
func (k *Kernel) Kill(pid int) error {
	var target *PCB
	k.table.ForEach(func(p *PCB) {
		if target == nil && p.pid == pid && p.state != Unused {
			target = p
		}
	})
	if target == nil {
		return ErrUnknownPID
	}

	target.mu.Lock()
	target.killed = true
	wasSleeping := target.state == Sleeping
	now := k.Ticks()
	if wasSleeping {
		if k.policyID == PolicyPBS {
			target.sleepTime += now - target.sleepStartTime
		}
		target.state = Runnable
		k.policy.onRunnable(target, now)
	}
	target.mu.Unlock()
	return nil
}

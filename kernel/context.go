package kernel

// Locker is satisfied by sync.Mutex and by Kernel's own wait-lock wrapper.
// sleep(chan, lk) takes one as the caller's guard lock to release/reacquire
// around the block (spec.md §4.3).
type Locker interface {
	Lock()
	Unlock()
}

// ProcBody is the user-mode workload a test or the CLI attaches to a
// process. It receives a ProcAPI bound to its own PCB and runs until it
// either calls Exit or simply returns (treated as an implicit exit(0),
// matching how a real process falling off the end of main() still reaches
// the kernel's exit path via a libc wrapper). The initial process is the
// exception: when its body returns it stays alive reaping children, since
// init never exits.
type ProcBody func(api *ProcAPI)

// ProcAPI is the set of operations a running process may perform on
// itself: the syscall thunks' implementation, minus argument marshalling
// (spec.md §2 "System-call thunks" are the marshalling layer above this).
type ProcAPI struct {
	k   *Kernel
	pcb *PCB
}

// PCB returns the underlying process control block.
func (api *ProcAPI) PCB() *PCB { return api.pcb }

// switchOut is the process side of one swtch() round trip (spec.md §4.4):
// it signals the dispatching scheduler that this process has parked, then
// — unless terminal — blocks until redispatched and releases the per-slot
// lock immediately on resume, mirroring forkret/yield's
// release(&p->lock) as the first action after control returns.
//
// Precondition: the caller already holds pcb.mu (this is the process's own
// "acquire own per-slot lock" step of whichever transition is parking it).
func (pcb *PCB) switchOut(terminal bool) {
	pcb.parkedCh <- struct{}{}
	if terminal {
		return
	}
	<-pcb.resumeCh
	pcb.mu.Unlock()
}

// switchIn is the scheduler side of one swtch() round trip: it wakes the
// process (starting it, on its very first dispatch, or resuming it from
// wherever it last parked) and blocks until the process parks again.
//
// Precondition: the caller holds pcb.mu (acquired by dispatch before
// calling this) and has already set state = RUNNING.
func (cpu *CPU) switchIn(pcb *PCB) {
	pcb.resumeCh <- struct{}{}
	<-pcb.parkedCh
}

// bootstrap is the trampoline-equivalent for a process's very first
// dispatch (spec.md §4.4 "lands in a trampoline that releases the lock
// held by the scheduler, performs one-shot filesystem initialization
// (exactly on the first-ever dispatch), and enters user space"). It must
// run exactly once, in the process's own goroutine, before the body
// begins. Whichever process is dispatched first runs k.fs.Init(); every
// later first-dispatch across the table's lifetime is a no-op, mirroring
// forkret's first-flag guard around fsinit(ROOTDEV) in
// original_source/kernel/proc.c.
func (pcb *PCB) bootstrap(k *Kernel) {
	<-pcb.resumeCh
	pcb.mu.Unlock()
	k.fsInitOnce.Do(func() {
		if err := k.fs.Init(); err != nil {
			k.panicf("filesystem init failed: %v", err)
		}
	})
}

package kernel

import (
	"context"
	"time"
)

// schedulerLoop is one CPU's scheduler (spec.md §4.4 "scheduler"): forever,
// it asks the active policy for a RUNNABLE slot, dispatches it, and waits
// for it to park before picking again. It returns only when ctx is
// cancelled (Kernel.Shutdown).
func (k *Kernel) schedulerLoop(ctx context.Context, cpu *CPU) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		cpu.pushOff()
		now := k.Ticks()
		candidate := k.policy.pick(k.table, now)
		if candidate == nil {
			cpu.popOff()
			// No RUNNABLE slot anywhere: avoid a hot spin. Real xv6 halts
			// the hart (wfi) here; this port has no such instruction, so it
			// backs off briefly instead.
			time.Sleep(time.Millisecond)
			continue
		}
		k.dispatch(cpu, candidate)
		cpu.popOff()
	}
}

// dispatch commits one policy pick to actually running (spec.md §4.4
// "scheduler"). It re-validates RUNNABLE under the slot's own lock — pick
// may have raced with another CPU's dispatch or a concurrent wakeup/kill —
// then swtch()es in and blocks until the process parks again.
//
// Lock choreography (SPEC_FULL.md §E, replacing register-level swtch()):
// A1 here acquires p.mu and hands it to the process via switchIn's resumeCh
// send; the process releases it immediately on wake (R1, bootstrap or
// switchOut's resume branch), runs free with no lock held, reacquires it
// right before parking again (A2, in Yield/Sleep/Exit/CheckPreempt), and
// this function releases it (R2) once switchIn's parkedCh receive confirms
// the park — mirroring scheduler()'s release(&p->lock) right after swtch()
// returns.
func (k *Kernel) dispatch(cpu *CPU, p *PCB) {
	p.mu.Lock() // A1
	if p.state != Runnable {
		p.mu.Unlock()
		return
	}

	p.dispatches++
	p.state = Running
	now := k.Ticks()
	k.policy.onDispatched(p, now)

	cpu.mu.Lock()
	cpu.current = p
	cpu.mu.Unlock()

	cpu.switchIn(p)

	if p.kstack != nil && p.kstack.GuardHit {
		k.panicf("kernel stack guard page hit on pid %d (%s)", p.pid, p.name)
	}

	p.mu.Unlock() // R2

	cpu.mu.Lock()
	cpu.current = nil
	cpu.mu.Unlock()
}

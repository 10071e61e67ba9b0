package kernel

// fcfsPolicy is PolicyFCFS (spec.md §4.4): selects the RUNNABLE slot with
// the minimum creationTime, ties broken by table index. Non-preemptive:
// preemptNow always reports false, so the timer tick never forces a yield
// under this policy (spec.md §4.4 "the only policy that suppresses
// preemption").
type fcfsPolicy struct{}

func (*fcfsPolicy) id() Policy { return PolicyFCFS }

// pick deliberately reads state/creationTime without taking each slot's
// lock (spec.md §9 Open Questions: "FCFS selects without holding any lock
// during the scan... Two CPUs may select the same slot; the recheck
// prevents double-dispatch but wastes one loop. Acceptable."). The
// scheduler's dispatch re-validates RUNNABLE under the slot's lock before
// committing, so this race never produces a double-dispatch, only a
// wasted pick.
func (*fcfsPolicy) pick(t *Table, now int) *PCB {
	var best *PCB
	t.ForEach(func(p *PCB) {
		if p.state != Runnable {
			return
		}
		if best == nil || p.creationTime < best.creationTime {
			best = p
		}
	})
	return best
}

func (*fcfsPolicy) onRunnable(p *PCB, now int)   {}
func (*fcfsPolicy) onDispatched(p *PCB, now int) {}
func (*fcfsPolicy) preemptNow(p *PCB, now int) bool {
	return false
}
func (*fcfsPolicy) onParked(p *PCB, now int, _ bool) {}

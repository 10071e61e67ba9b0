package kernel

// policy is the tagged-variant interface the four scheduling disciplines
// implement (spec.md §9 "Dynamic dispatch over policy"). The scheduler
// loop in scheduler.go is identical for all four; only these hooks differ.
type policy interface {
	// id reports which Policy constant this implements.
	id() Policy

	// pick chooses a RUNNABLE slot to dispatch next, or nil if none is
	// ready. Called without any slot lock held (spec.md §9: "FCFS selects
	// without holding any lock during the scan"); the scheduler re-checks
	// RUNNABLE under the slot's own lock before committing.
	pick(t *Table, now int) *PCB

	// onRunnable fires whenever a slot transitions into RUNNABLE: fresh
	// creation, a yield or forced preemption, wakeup, or a kill-forced
	// wake. MLFQ aging does not call it. Caller holds p's lock.
	onRunnable(p *PCB, now int)

	// onDispatched fires immediately after the scheduler sets a slot
	// RUNNING, before switching in. Caller holds p's lock.
	onDispatched(p *PCB, now int)

	// preemptNow is polled cooperatively by the running process itself
	// (standing in for the timer trap's preemption check, since this port
	// has no real hardware interrupt) to ask whether it should yield now.
	// Caller holds no lock.
	preemptNow(p *PCB, now int) bool

	// onParked fires when a RUNNING slot gives up the CPU for any reason,
	// just before the state change, with p's lock held. preempted is true
	// only when CheckPreempt forced the yield (MLFQ slice exhaustion).
	onParked(p *PCB, now int, preempted bool)
}

func newPolicy(id Policy, waitingLimit int, slice [NMLFQ]int) policy {
	switch id {
	case PolicyFCFS:
		return &fcfsPolicy{}
	case PolicyPBS:
		return &pbsPolicy{}
	case PolicyMLFQ:
		return newMLFQPolicy(waitingLimit, slice)
	default:
		return &roundRobinPolicy{}
	}
}

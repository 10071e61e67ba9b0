package kernel

import "github.com/google/btree"

// mlfqCandidate orders RUNNABLE slots for MLFQ selection: lowest queue
// number wins; within a queue, earliest entryTimeInCurrentQ wins (FIFO on
// enqueue time), spec.md §4.4 "MLFQ" selection.
type mlfqCandidate struct {
	p *PCB
	q int
	t int
}

func (c mlfqCandidate) Less(than btree.Item) bool {
	o := than.(mlfqCandidate)
	if c.q != o.q {
		return c.q < o.q
	}
	if c.t != o.t {
		return c.t < o.t
	}
	return c.p.index < o.p.index
}

// mlfqPolicy is PolicyMLFQ (spec.md §4.4): five priority levels with aging.
type mlfqPolicy struct {
	waitingLimit int
	slice        [NMLFQ]int
}

func newMLFQPolicy(waitingLimit int, slice [NMLFQ]int) *mlfqPolicy {
	allZero := true
	for _, s := range slice {
		if s != 0 {
			allZero = false
		}
	}
	if allZero {
		slice = MLFQSlice
	}
	return &mlfqPolicy{waitingLimit: waitingLimit, slice: slice}
}

func (*mlfqPolicy) id() Policy { return PolicyMLFQ }

// pick runs the aging pass required "before each selection pass" (spec.md
// §4.4), then picks the lowest-numbered non-empty queue's earliest entrant
// via a btree ordered by (queue, entryTimeInCurrentQ, index).
func (m *mlfqPolicy) pick(t *Table, now int) *PCB {
	t.ForEach(func(p *PCB) {
		p.mu.Lock()
		if p.state == Runnable && p.currentQ > 0 && now-p.entryTimeInCurrentQ > m.waitingLimit {
			p.qTicks[p.currentQ] += now - p.entryTimeInCurrentQ
			p.currentQ--
			p.entryTimeInCurrentQ = now
		}
		p.mu.Unlock()
	})

	bt := btree.New(8)
	t.ForEach(func(p *PCB) {
		p.mu.Lock()
		runnable := p.state == Runnable
		q, et := p.currentQ, p.entryTimeInCurrentQ
		p.mu.Unlock()
		if runnable {
			bt.ReplaceOrInsert(mlfqCandidate{p: p, q: q, t: et})
		}
	})
	if bt.Len() == 0 {
		return nil
	}
	return bt.Min().(mlfqCandidate).p
}

// onRunnable resets the queue-entry clock whenever a slot (re)enters the
// ready queue — on creation (queue 0, spec.md §4.4 "every slot starts at
// queue 0"), on wakeup, and on a kill-forced wake. Its queue NUMBER is left
// unchanged here (only aging/promotion and forced demotion move it); only
// the FIFO/aging clock restarts.
func (*mlfqPolicy) onRunnable(p *PCB, now int) {
	p.entryTimeInCurrentQ = now
}

func (*mlfqPolicy) onDispatched(p *PCB, now int) {
	p.dispatchTick = now
}

// preemptNow reports whether p has exhausted its current queue's time
// slice while still RUNNING (spec.md §4.4 "Demotion policy", enforced here
// as the explicit stand-in for the out-of-scope timer trap).
func (m *mlfqPolicy) preemptNow(p *PCB, now int) bool {
	ran := now - p.dispatchTick
	return ran >= m.slice[p.currentQ]
}

// onParked credits elapsed ticks to the queue the slot is leaving, then —
// only if this park was a forced preemption — demotes it one level,
// bounded at NMLFQ-1 (spec.md §4.4 "bounded at 4"). A voluntary park
// (sleep, or a yield before slice exhaustion) leaves the queue number
// unchanged (spec.md §4.4 "stays in its current queue").
func (m *mlfqPolicy) onParked(p *PCB, now int, preempted bool) {
	p.qTicks[p.currentQ] += now - p.dispatchTick
	if preempted && p.currentQ < NMLFQ-1 {
		p.currentQ++
	}
}

package kernel

import "github.com/google/btree"

// pbsCandidate orders RUNNABLE slots for PBS selection: lower dynamic
// priority wins; ties broken by fewer prior dispatches, then earlier
// creation time (spec.md §4.4 "PBS" tie-breaks).
type pbsCandidate struct {
	p  *PCB
	dp int
}

func (c pbsCandidate) Less(than btree.Item) bool {
	o := than.(pbsCandidate)
	if c.dp != o.dp {
		return c.dp < o.dp
	}
	if c.p.dispatches != o.p.dispatches {
		return c.p.dispatches < o.p.dispatches
	}
	if c.p.creationTime != o.p.creationTime {
		return c.p.creationTime < o.p.creationTime
	}
	return c.p.index < o.p.index
}

// Niceness computes spec.md §4.4's PBS niceness value. The formula is kept
// bit-for-bit as specified (SPEC_FULL.md §D.3): integer division of two
// small tick counts, multiplied by 10 only after truncating, means this
// very nearly always evaluates to 0 for realistic sleep/run ratios — a
// likely bug in the source this was distilled from, preserved rather than
// "fixed" per spec.md §9.
func Niceness(p *PCB) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return niceness(p)
}

func niceness(p *PCB) int {
	total := p.cpuRunTime + p.sleepTime
	if total == 0 {
		return 5
	}
	return (p.sleepTime / total) * 10
}

// DynamicPriority computes spec.md §4.4's PBS DP: clamp(staticPriority -
// niceness + 5, 0, 100), lower wins.
func DynamicPriority(p *PCB) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return dynamicPriority(p)
}

func dynamicPriority(p *PCB) int {
	dp := p.staticPriority - niceness(p) + 5
	if dp < MinPriority {
		return MinPriority
	}
	if dp > MaxPriority {
		return MaxPriority
	}
	return dp
}

// pbsPolicy is PolicyPBS (spec.md §4.4): priority with niceness,
// non-preemptive except when a process's set_priority call improves its
// own DP (handled directly in accounting.go's ProcAPI.SetPriority via an
// explicit Yield, not through preemptNow). Lowering another process's DP
// does not preempt the caller; the change takes effect at the next pick.
type pbsPolicy struct{}

func (*pbsPolicy) id() Policy { return PolicyPBS }

// pick scans the whole table on every call, builds a btree ordered by the
// PBS tie-break key over every currently RUNNABLE slot, and returns its
// minimum.
func (*pbsPolicy) pick(t *Table, now int) *PCB {
	bt := btree.New(8)
	t.ForEach(func(p *PCB) {
		p.mu.Lock()
		runnable := p.state == Runnable
		var dp int
		if runnable {
			dp = dynamicPriority(p)
		}
		p.mu.Unlock()
		if runnable {
			bt.ReplaceOrInsert(pbsCandidate{p: p, dp: dp})
		}
	})
	if bt.Len() == 0 {
		return nil
	}
	return bt.Min().(pbsCandidate).p
}

func (*pbsPolicy) onRunnable(p *PCB, now int)   {}
func (*pbsPolicy) onDispatched(p *PCB, now int) {}
func (*pbsPolicy) preemptNow(p *PCB, now int) bool {
	return false
}
func (*pbsPolicy) onParked(p *PCB, now int, _ bool) {}

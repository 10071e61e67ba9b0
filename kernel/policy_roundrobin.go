package kernel

// roundRobinPolicy is PolicyDefault (spec.md §4.4): a plain linear scan
// dispatching every RUNNABLE slot in table-index order. No priority state
// is consulted.
type roundRobinPolicy struct{}

func (*roundRobinPolicy) id() Policy { return PolicyDefault }

func (*roundRobinPolicy) pick(t *Table, now int) *PCB {
	var found *PCB
	t.ForEach(func(p *PCB) {
		if found != nil {
			return
		}
		p.mu.Lock()
		if p.state == Runnable {
			found = p
		}
		p.mu.Unlock()
	})
	return found
}

func (*roundRobinPolicy) onRunnable(p *PCB, now int)         {}
func (*roundRobinPolicy) onDispatched(p *PCB, now int)       {}
func (*roundRobinPolicy) preemptNow(p *PCB, now int) bool    { return false }
func (*roundRobinPolicy) onParked(p *PCB, now int, _ bool)   {}

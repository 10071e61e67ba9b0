package kernel

// Table is the fixed-size process table (spec.md §3): NPROC slots exist for
// the life of the kernel and are reused, never reallocated.
type Table struct {
	slots [NPROC]PCB
}

// newTable builds a table with every slot's index pre-assigned and its
// baton channels constructed, ready to be reused by the first allocproc.
func newTable() *Table {
	t := &Table{}
	for i := range t.slots {
		t.slots[i].index = int32(i)
		t.slots[i].resumeCh = make(chan struct{}, 1)
		t.slots[i].parkedCh = make(chan struct{}, 1)
	}
	return t
}

// Slot returns the slot at table index i.
func (t *Table) Slot(i int32) *PCB { return &t.slots[i] }

// Len returns NPROC.
func (t *Table) Len() int { return len(t.slots) }

// ForEach calls fn for every slot in index order, without taking any lock.
// Used by lock-free introspection (the panic dump) and by scans that take
// each slot's lock themselves inside fn (allocproc, Snapshot, wakeup, kill).
func (t *Table) ForEach(fn func(*PCB)) {
	for i := range t.slots {
		fn(&t.slots[i])
	}
}

// byHandle returns the slot named by h, or nil if h is stale (the slot's
// generation has moved on) or invalid.
func (t *Table) byHandle(h Handle) *PCB {
	if h.Index < 0 || int(h.Index) >= len(t.slots) {
		return nil
	}
	p := &t.slots[h.Index]
	if p.generation != h.Generation {
		return nil
	}
	return p
}

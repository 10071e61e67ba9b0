package kernel

import "testing"

func TestHandleStaleAfterReuse(t *testing.T) {
	table := newTable()
	p := table.Slot(4)
	p.pid = 99
	p.state = Used
	h := p.Handle()

	if got := table.byHandle(h); got != p {
		t.Fatal("byHandle should resolve a fresh handle to its slot")
	}

	p.reset() // simulates freeproc's generation bump

	if got := table.byHandle(h); got != nil {
		t.Fatal("byHandle must reject a handle whose generation is stale")
	}

	newGen := p.Handle()
	if newGen.Generation == h.Generation {
		t.Fatal("reset must bump the generation")
	}
	if got := table.byHandle(newGen); got != p {
		t.Fatal("byHandle should resolve the slot's current generation")
	}
}

func TestNoParentIsNeverValid(t *testing.T) {
	if NoParent.Valid() {
		t.Fatal("NoParent must never be Valid")
	}
}

func TestPBSPicksLowestDynamicPriority(t *testing.T) {
	table := newTable()
	table.slots[0].state = Runnable
	table.slots[0].staticPriority = 60
	table.slots[1].state = Runnable
	table.slots[1].staticPriority = 20

	p := (&pbsPolicy{}).pick(table, 0)
	if p == nil || p.index != 1 {
		t.Fatalf("pbs picked index %v, want 1 (lower static priority -> lower DP)", indexOf(p))
	}
}

func TestPBSTieBreaksByDispatchesThenCreation(t *testing.T) {
	table := newTable()
	table.slots[0].state = Runnable
	table.slots[0].staticPriority = 60
	table.slots[0].dispatches = 3
	table.slots[0].creationTime = 1

	table.slots[1].state = Runnable
	table.slots[1].staticPriority = 60
	table.slots[1].dispatches = 1
	table.slots[1].creationTime = 5

	p := (&pbsPolicy{}).pick(table, 0)
	if p == nil || p.index != 1 {
		t.Fatalf("pbs tie-break picked index %v, want 1 (fewer prior dispatches)", indexOf(p))
	}
}

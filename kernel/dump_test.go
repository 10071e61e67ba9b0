package kernel_test

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"

	"github.com/edukernel/xv6core/kernel"
)

func findPCB(t *testing.T, k *kernel.Kernel, pid int) *kernel.PCB {
	t.Helper()
	var found *kernel.PCB
	k.Table().ForEach(func(p *kernel.PCB) {
		if found == nil && p.PID() == pid {
			found = p
		}
	})
	if found == nil {
		t.Fatalf("no slot found for pid %d", pid)
	}
	return found
}

func TestSnapshotCarriesBaseColumnsForDefaultPolicy(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyDefault)

	spawned := make(chan struct{})
	parked := make(chan struct{})
	var childPID int
	init := func(api *kernel.ProcAPI) {
		pid, err := api.Fork(func(child *kernel.ProcAPI) {
			close(spawned)
			<-parked
			child.Exit(0)
		})
		assert.NilError(t, err)
		childPID = pid
		_, _, err = api.Wait()
		assert.NilError(t, err)
	}
	assert.NilError(t, k.Boot(init))
	<-spawned

	var child kernel.Row
	found := false
	for _, r := range k.Snapshot() {
		if r.PID == childPID {
			child = r
			found = true
			break
		}
	}
	if !found {
		close(parked)
		t.Fatal("expected the live child's row in the snapshot before it exits")
	}
	// Read the PCB's own accessors before unblocking the child, so they
	// describe the exact same moment the snapshot above was taken.
	pcb := findPCB(t, k, childPID)
	wantRTime := strconv.Itoa(pcb.CPURunTime())
	wantNRun := strconv.Itoa(pcb.NoOfTimesGotCPU())
	close(parked)

	// DEFAULT carries exactly the base RTIME/WTIME/NRUN columns (spec.md
	// §4.5/§6: "default/fcfs: pid, state, rtime, wtime, nrun") — no
	// policy-specific extras on top. Cross-checked against the PCB's own
	// exported accessors rather than re-deriving from the same row.
	if len(child.Extra) != 3 {
		t.Fatalf("len(Extra) = %d, want 3 (rtime, wtime, nrun only)", len(child.Extra))
	}
	want := []string{wantRTime, child.Extra[1], wantNRun}
	if diff := cmp.Diff(want, child.Extra); diff != "" {
		t.Fatalf("unexpected Extra columns (-want +got):\n%s", diff)
	}
	if wtime, err := strconv.Atoi(child.Extra[1]); err != nil || wtime < 0 {
		t.Fatalf("wtime column = %q, want a non-negative integer", child.Extra[1])
	}
}

func TestSnapshotReportsQueueMinusOneForZombieUnderMLFQ(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyMLFQ)

	childPID := make(chan int, 1)
	okToReap := make(chan struct{})
	reaped := make(chan struct{})
	init := func(api *kernel.ProcAPI) {
		pid, err := api.Fork(func(child *kernel.ProcAPI) {
			child.Exit(0)
		})
		assert.NilError(t, err)
		childPID <- pid
		// Park until the child's exit wakes init: on one CPU the child can
		// only run (and become a ZOMBIE) while init is not RUNNING.
		api.Sleep(api.PCB().Chan(), nil)
		<-okToReap // don't race the test's snapshot of the ZOMBIE row below
		_, _, err = api.Wait()
		assert.NilError(t, err)
		close(reaped)
	}
	assert.NilError(t, k.Boot(init))
	pid := <-childPID
	waitFor(t, func() bool {
		for _, r := range k.Snapshot() {
			if r.PID == pid && r.State == "ZOMBIE" {
				return true
			}
		}
		return false
	})

	var zombieRow kernel.Row
	found := false
	for _, r := range k.Snapshot() {
		if r.PID == pid {
			zombieRow = r
			found = true
			break
		}
	}
	close(okToReap)
	<-reaped
	if !found {
		t.Fatal("expected the zombie child's row before init reaps it")
	}
	// Extra is [RTIME, WTIME, NRUN, QUEUE, Q0..Q4]; QUEUE must read -1 for a
	// ZOMBIE slot regardless of the queue it last ran in (original_source's
	// procdump: "if (p->state == ZOMBIE) current_queue = -1").
	assert.Equal(t, zombieRow.Extra[3], "-1")
}

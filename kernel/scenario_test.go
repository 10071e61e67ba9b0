package kernel_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/edukernel/xv6core/kernel"
)

// TestFCFSReapsChildrenInCreationOrder is S4: under FCFS, three children
// doing identical, never-yielding busy work must complete (and be reaped)
// in the exact order they were forked, since fcfsPolicy.preemptNow always
// reports false (policy_fcfs.go) and pick always returns the RUNNABLE slot
// with the smallest creationTime.
func TestFCFSReapsChildrenInCreationOrder(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyFCFS)
	done := make(chan struct{})

	init := func(api *kernel.ProcAPI) {
		var pids [3]int
		for i := 0; i < 3; i++ {
			pid, err := api.Fork(func(c *kernel.ProcAPI) {
				sum := 0
				for j := 0; j < 1000; j++ {
					sum += j
				}
				_ = sum
				c.Exit(c.PID())
			})
			assert.NilError(t, err)
			pids[i] = pid
		}

		for i := 0; i < 3; i++ {
			pid, xstate, err := api.Wait()
			assert.NilError(t, err)
			assert.Equal(t, pid, pids[i])
			assert.Equal(t, xstate, pids[i])
		}
		close(done)
	}

	assert.NilError(t, k.Boot(init))
	<-done
}

// TestPBSSetPriorityLetsHigherPriorityChildRunFirst is S5: child X (default
// staticPriority 60) is retuned to 10 — "X continues" (accounting.go's
// ProcAPI.SetPriority never yields when retuning another pid). Child Y is
// then created and retuned to 5, a better dynamic priority than X's.
// Neither child is dispatched until the parent's first Wait parks it, so
// PBS's own pick — lowest dynamic priority wins (policy_pbs.go) — decides
// the order: Y must finish before X despite X having been forked first.
// Completion order is recorded by the children themselves, because Wait
// reaps whichever ZOMBIE child sits at the lowest table index.
func TestPBSSetPriorityLetsHigherPriorityChildRunFirst(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyPBS)
	finished := make(chan int, 2)
	done := make(chan struct{})

	init := func(api *kernel.ProcAPI) {
		xpid, err := api.Fork(func(x *kernel.ProcAPI) {
			for i := 0; i < 3; i++ {
				x.Yield()
			}
			finished <- x.PID()
			x.Exit(0)
		})
		assert.NilError(t, err)

		_, err = api.SetPriority(10, xpid)
		assert.NilError(t, err)

		ypid, err := api.Fork(func(y *kernel.ProcAPI) {
			finished <- y.PID()
			y.Exit(0)
		})
		assert.NilError(t, err)

		_, err = api.SetPriority(5, ypid)
		assert.NilError(t, err)

		_, _, err = api.Wait()
		assert.NilError(t, err)
		assert.Equal(t, <-finished, ypid)

		_, _, err = api.Wait()
		assert.NilError(t, err)
		assert.Equal(t, <-finished, xpid)
		close(done)
	}

	assert.NilError(t, k.Boot(init))
	<-done
}

// TestMLFQPromotesShortJobAheadOfCPUHog is S6: a CPU-bound child ticks the
// clock itself (removing any dependency on wall-clock scheduling) while
// calling CheckPreempt every iteration, driving itself down through all
// five queues to the bottom one, where mlfqPolicy.onParked bounds it
// (spec.md §4.4 "bounded at 4"). Partway through, it forks a second,
// trivial child, which starts fresh at queue 0. The very next time the CPU
// hog's own CheckPreempt call returns — which can only happen once the
// scheduler has parked it and dispatched something else — is therefore
// guaranteed, by queue 0 always outranking queue 4 in mlfqPolicy.pick, to
// be after the new child has already run to completion: a single-CPU
// table has no way to interleave the two, so whichever runs next when the
// hog parks must be the short job, start to finish.
func TestMLFQPromotesShortJobAheadOfCPUHog(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyMLFQ)

	verified := make(chan bool, 1)
	done := make(chan struct{})

	init := func(api *kernel.ProcAPI) {
		_, err := api.Fork(func(a *kernel.ProcAPI) {
			var bpid int
			for i := 0; i < 80; i++ {
				k.Tick()
				a.CheckPreempt()
				if i == 39 {
					pid, err := a.Fork(func(b *kernel.ProcAPI) {
						b.Exit(0)
					})
					assert.NilError(t, err)
					bpid = pid
				}
				if i == 70 {
					bZombie := false
					for _, row := range k.Snapshot() {
						if row.PID == bpid && row.State == "ZOMBIE" {
							bZombie = true
						}
					}
					verified <- bZombie
				}
			}
			a.Exit(0)
		})
		assert.NilError(t, err)

		_, _, err = api.Wait()
		assert.NilError(t, err)
		close(done)
	}

	assert.NilError(t, k.Boot(init))
	assert.Assert(t, <-verified)
	<-done
}

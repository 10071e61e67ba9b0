package kernel_test

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/edukernel/xv6core/kernel"
)

func newTestKernel(t *testing.T, policy kernel.Policy) *kernel.Kernel {
	t.Helper()
	k := kernel.NewKernel(kernel.BootConfig{
		Policy:  policy,
		NumCPUs: 1,
	})
	stop := make(chan struct{})
	t.Cleanup(func() {
		close(stop)
		_ = k.Shutdown()
	})
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				k.Tick()
			}
		}
	}()
	return k
}

// waitFor polls cond until it becomes true or the deadline passes, failing
// the test on timeout — the concurrency-test equivalent of a condition
// variable for a simulated scheduler with no synchronous "step" primitive.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestForkExitWaitReapsChild(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyDefault)

	reaped := make(chan [2]int, 1)
	done := make(chan struct{})

	init := func(api *kernel.ProcAPI) {
		_, err := api.Fork(func(child *kernel.ProcAPI) {
			child.Exit(7)
		})
		assert.NilError(t, err)

		pid, xstate, err := api.Wait()
		assert.NilError(t, err)
		reaped <- [2]int{pid, xstate}
		close(done)
	}

	assert.NilError(t, k.Boot(init))
	<-done

	got := <-reaped
	assert.Equal(t, got[1], 7)
}

func TestWaitWithNoChildrenFails(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyDefault)
	done := make(chan error, 1)

	init := func(api *kernel.ProcAPI) {
		_, _, err := api.Wait()
		done <- err
	}

	assert.NilError(t, k.Boot(init))
	err := <-done
	assert.ErrorIs(t, err, kernel.ErrNoChildren)
}

func TestOrphanReparentsToInit(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyDefault)

	grandchildPID := make(chan int, 1)
	parentDone := make(chan struct{})
	reapedGrandchild := make(chan struct{})

	init := func(api *kernel.ProcAPI) {
		_, err := api.Fork(func(mid *kernel.ProcAPI) {
			gcPID, err := mid.Fork(func(gc *kernel.ProcAPI) {
				// Outlives its immediate parent; gets reparented to init.
				time.Sleep(100 * time.Millisecond)
				gc.Exit(0)
			})
			assert.NilError(t, err)
			grandchildPID <- gcPID
			mid.Exit(0) // orphans the grandchild immediately.
		})
		assert.NilError(t, err)
		close(parentDone)

		// Read the grandchild's pid only after the first Wait has parked
		// init: on one CPU, mid cannot run (and send it) while init is
		// RUNNING and blocked on a Go channel.
		gcPID := -1
		for {
			pid, _, err := api.Wait()
			if err != nil {
				break
			}
			if gcPID < 0 {
				gcPID = <-grandchildPID
			}
			if pid == gcPID {
				close(reapedGrandchild)
				break
			}
		}
	}

	assert.NilError(t, k.Boot(init))
	<-parentDone

	select {
	case <-reapedGrandchild:
	case <-time.After(3 * time.Second):
		t.Fatal("init never reaped the reparented grandchild")
	}
}

func TestKillWakesSleepingProcess(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyDefault)

	victimPID := make(chan int, 1)
	result := make(chan int, 1)
	done := make(chan struct{})

	init := func(api *kernel.ProcAPI) {
		pid, err := api.Fork(func(victim *kernel.ProcAPI) {
			status := 0
			if err := victim.Sleep(victim.PCB().Chan(), nil); err != nil {
				assert.ErrorIs(t, err, kernel.ErrInterrupted)
				status = -1
			}
			victim.Exit(status)
		})
		assert.NilError(t, err)
		victimPID <- pid

		_, xstate, err := api.Wait()
		assert.NilError(t, err)
		result <- xstate
		close(done)
	}

	assert.NilError(t, k.Boot(init))
	pid := <-victimPID

	waitFor(t, func() bool {
		var found bool
		for _, row := range k.Snapshot() {
			if row.PID == pid && row.State == "SLEEPING" {
				found = true
			}
		}
		return found
	})

	assert.NilError(t, k.Kill(pid))
	<-done
	assert.Equal(t, <-result, -1)
}

func TestWakeupResumesSleeper(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyDefault)

	sleeperPID := make(chan int, 1)
	done := make(chan struct{})

	init := func(api *kernel.ProcAPI) {
		pid, err := api.Fork(func(s *kernel.ProcAPI) {
			s.Sleep(s.PCB().Chan(), nil)
			s.Exit(0)
		})
		assert.NilError(t, err)
		sleeperPID <- pid

		_, xstate, err := api.Wait()
		assert.NilError(t, err)
		assert.Equal(t, xstate, 0)
		close(done)
	}

	assert.NilError(t, k.Boot(init))
	pid := <-sleeperPID

	waitFor(t, func() bool {
		for _, row := range k.Snapshot() {
			if row.PID == pid && row.State == "SLEEPING" {
				return true
			}
		}
		return false
	})

	ch, ok := k.ChanOf(pid)
	assert.Assert(t, ok)
	k.Wakeup(ch)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("sleeper was never reaped after wakeup")
	}
}

func TestTraceMaskInheritedByChild(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyDefault)

	childMask := make(chan int, 1)
	done := make(chan struct{})

	init := func(api *kernel.ProcAPI) {
		api.Trace(0x5)
		_, err := api.Fork(func(child *kernel.ProcAPI) {
			childMask <- child.PCB().TraceMask()
			child.Exit(0)
		})
		assert.NilError(t, err)
		_, _, err = api.Wait()
		assert.NilError(t, err)
		close(done)
	}

	assert.NilError(t, k.Boot(init))
	<-done
	assert.Equal(t, <-childMask, 0x5)
}

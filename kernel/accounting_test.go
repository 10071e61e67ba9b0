package kernel_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/edukernel/xv6core/kernel"
)

func TestSetPriorityRejectsWrongPolicy(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyDefault)
	parked := make(chan struct{})
	assert.NilError(t, k.Boot(func(api *kernel.ProcAPI) {
		close(parked)
		api.Sleep(api.PCB().Chan(), nil)
	}))
	<-parked

	_, err := k.SetPriority(30, 1)
	assert.ErrorIs(t, err, kernel.ErrWrongPolicy)
}

func TestSetPriorityValidatesRangeAndPID(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyPBS)
	parked := make(chan struct{})
	assert.NilError(t, k.Boot(func(api *kernel.ProcAPI) {
		close(parked)
		api.Sleep(api.PCB().Chan(), nil)
	}))
	<-parked

	_, err := k.SetPriority(kernel.MaxPriority+1, 1)
	assert.ErrorIs(t, err, kernel.ErrBadPriority)

	_, err = k.SetPriority(30, 999)
	assert.ErrorIs(t, err, kernel.ErrUnknownPID)
}

func TestSetPriorityAdministrativeDoesNotBlock(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyPBS)
	parked := make(chan struct{})
	assert.NilError(t, k.Boot(func(api *kernel.ProcAPI) {
		close(parked)
		api.Sleep(api.PCB().Chan(), nil)
	}))
	<-parked

	// init is pid 1; lowering its static priority (raising its number)
	// administratively must return promptly without needing init's own
	// goroutine to cooperate, since Kernel.SetPriority never yields.
	old, err := k.SetPriority(70, 1)
	assert.NilError(t, err)
	assert.Equal(t, old, 60) // spec.md §9 default static priority
}

func TestProcAPISetPriorityYieldsOnSelfImprovement(t *testing.T) {
	k := newTestKernel(t, kernel.PolicyPBS)
	done := make(chan struct{})
	assert.NilError(t, k.Boot(func(api *kernel.ProcAPI) {
		before := api.PCB().NoOfTimesGotCPU()
		_, err := api.SetPriority(0, api.PID()) // best possible static priority
		assert.NilError(t, err)
		// SetPriority yielded internally; being redispatched bumps the
		// counter even on a single-CPU PBS run.
		waitFor(t, func() bool { return api.PCB().NoOfTimesGotCPU() > before })
		close(done)
	}))
	<-done
}

package kernel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/edukernel/xv6core/kernel/extern"
)

// BootConfig is the subset of boot-time configuration the core needs. The
// config package decodes this shape from TOML; config imports kernel and
// kernel never imports config, keeping the dependency one-way.
type BootConfig struct {
	Policy             Policy
	NumCPUs            int
	WaitingLimit       int
	MLFQSlice          [NMLFQ]int
	PageBudgetFraction float64
	Log                *logrus.Logger
}

// ParsePolicy maps a config string to a Policy, for the CLI/config layer.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "default", "DEFAULT":
		return PolicyDefault, nil
	case "fcfs", "FCFS":
		return PolicyFCFS, nil
	case "pbs", "PBS":
		return PolicyPBS, nil
	case "mlfq", "MLFQ":
		return PolicyMLFQ, nil
	default:
		return 0, fmt.Errorf("kernel: unknown policy %q", s)
	}
}

// Kernel is the single context value holding every piece of global mutable
// state (spec.md §9 "Global mutable state"): the process table, the per-CPU
// array, the PID allocator, wait_lock, the active policy, and the boot
// configuration. Every kernel operation takes a *Kernel explicitly rather
// than reaching for package-level statics.
type Kernel struct {
	table *Table
	pids  *pidAllocator
	cpus  []*CPU

	// waitLock exclusively guards PCB.parent and the wait/exit rendezvous
	// (spec.md §3 invariant 5, §5 lock ordering: wait_lock -> per-slot).
	waitLock sync.Mutex

	// tickLock guards ticks (spec.md §5 "tickslock", a leaf lock).
	tickLock sync.Mutex
	ticks    int

	policy   policy
	policyID Policy

	// initHandle names the slot holding the initial process, the target of
	// every orphan reparent (spec.md §4.2, invariant 7).
	initHandle Handle

	pageAlloc extern.PageAllocator

	// fs and fsInitOnce back the trampoline's one-shot filesystem-init step
	// (spec.md §4.4, mirroring forkret's first-dispatch-only
	// fsinit(ROOTDEV)); Init runs at most once across the Kernel's lifetime
	// regardless of which process is first dispatched.
	fs         extern.FileSystem
	fsInitOnce sync.Once

	log *logrus.Entry

	eg     *errgroup.Group
	egCtx  context.Context
	cancel context.CancelFunc
}

// NewKernel constructs an unbooted Kernel: the table exists but no process
// runs yet. Boot must be called once before the scheduler loops start.
func NewKernel(cfg BootConfig) *Kernel {
	if cfg.NumCPUs < 1 {
		cfg.NumCPUs = 1
	}
	if cfg.WaitingLimit <= 0 {
		cfg.WaitingLimit = WaitingLimit
	}
	logger := cfg.Log
	if logger == nil {
		logger = logrus.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	eg, egCtx := errgroup.WithContext(ctx)

	k := &Kernel{
		table:     newTable(),
		pids:      newPIDAllocator(),
		policyID:  cfg.Policy,
		pageAlloc: extern.NewMockPageAllocator(cfg.PageBudgetFraction),
		fs:        extern.NewMockFileSystem(),
		log:       logger.WithField("component", "kernel"),
		eg:        eg,
		egCtx:     egCtx,
		cancel:    cancel,
	}
	k.policy = newPolicy(cfg.Policy, cfg.WaitingLimit, cfg.MLFQSlice)
	k.cpus = make([]*CPU, cfg.NumCPUs)
	for i := range k.cpus {
		k.cpus[i] = &CPU{id: i}
	}
	return k
}

// Table exposes the process table for introspection (Dump, tests).
func (k *Kernel) Table() *Table { return k.table }

// CPUs exposes the per-CPU array for introspection.
func (k *Kernel) CPUs() []*CPU { return k.cpus }

// PolicyID reports which scheduling policy this Kernel was booted with.
func (k *Kernel) PolicyID() Policy { return k.policyID }

// Ticks returns the current tick count (spec.md §6 sys_uptime).
func (k *Kernel) Ticks() int {
	k.tickLock.Lock()
	defer k.tickLock.Unlock()
	return k.ticks
}

// Tick is the timer-tick handler's entry point into the core (spec.md §4.5
// "Tick updater"): it advances the global tick count and credits every
// RUNNING slot's cpuRunTime.
func (k *Kernel) Tick() {
	k.tickLock.Lock()
	k.ticks++
	k.tickLock.Unlock()
	k.table.ForEach(func(p *PCB) {
		p.mu.Lock()
		if p.state == Running {
			p.cpuRunTime++
		}
		p.mu.Unlock()
	})
}

// Boot attaches the initial process (spec.md §4.1 "Initial state on boot")
// and starts the per-CPU scheduler goroutines. The resource-attach retried
// here (page table + trap frame for the embedded init program) is the one
// place spec.md §7's "resource exhausted" path gets a bounded number of
// extra chances before the kernel gives up and panics — mirroring how a
// real boot sequence tolerates a transient allocation failure from a pool
// that hasn't finished warming up, but not an indefinitely broken one.
func (k *Kernel) Boot(initBody ProcBody) error {
	var initPCB *PCB
	op := func() error {
		p, err := k.userinit(initBody)
		if err != nil {
			return err
		}
		initPCB = p
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Second
	if err := backoff.Retry(op, bo); err != nil {
		k.panicf("boot: failed to attach init process resources: %v", err)
		return err
	}
	k.initHandle = initPCB.Handle()
	k.log.WithField("pid", initPCB.pid).Info("init process booted")

	for _, cpu := range k.cpus {
		cpu := cpu
		k.eg.Go(func() error {
			return k.schedulerLoop(k.egCtx, cpu)
		})
	}
	return nil
}

// Shutdown stops every per-CPU scheduler loop and waits for them to return.
func (k *Kernel) Shutdown() error {
	k.cancel()
	return k.eg.Wait()
}

// panicf logs a fatal invariant violation (spec.md §7) with a full dump of
// the process table for diagnosis, then halts the process — the one panic
// a reader of this kernel should ever see.
func (k *Kernel) panicf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	k.log.WithField("table", spew.Sdump(k.snapshotForPanic())).Error(msg)
	panic("kernel: " + msg)
}

// snapshotForPanic copies just the non-UNUSED slots' exported-ish state for
// the panic dump; it does not take any lock (best-effort, matching Dump's
// own "lock-free console listing" contract in spec.md §4.5) since a fatal
// invariant violation means the table may already be inconsistent.
func (k *Kernel) snapshotForPanic() []map[string]any {
	var out []map[string]any
	k.table.ForEach(func(p *PCB) {
		if p.state == Unused {
			return
		}
		out = append(out, map[string]any{
			"pid": p.pid, "name": p.name, "state": p.state.String(),
			"killed": p.killed, "chan": p.chanKey,
		})
	})
	return out
}

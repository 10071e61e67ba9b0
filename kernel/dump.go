package kernel

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/time/rate"
)

// dumpLimiter throttles repeated dump calls (e.g. a CLI watch loop) to at
// most two per second, the same "don't let a diagnostic flood the console"
// contract the teacher's debug tooling applies to its own periodic state
// dumps.
var dumpLimiter = rate.NewLimiter(rate.Limit(2), 1)

// Row is one process's snapshot for Dump (spec.md §4.5 "procdump" /
// sys_ps): always pid, name, state; plus the fields the active scheduling
// policy makes meaningful (spec.md §6 "dump").
type Row struct {
	PID   int
	Name  string
	State string
	Extra []string
}

// dumpHeader returns the extra column headers for the Kernel's active
// policy, matching the Extra slice order Row.Extra populates: every policy
// carries the base RTIME/WTIME/NRUN columns (spec.md §4.5/§6 "default/fcfs:
// pid, state, rtime, wtime, nrun"), PBS adds its current dynamic priority,
// and MLFQ adds the current queue plus the per-queue tick histogram.
func (k *Kernel) dumpHeader() []string {
	base := []string{"RTIME", "WTIME", "NRUN"}
	switch k.policyID {
	case PolicyPBS:
		return append(base, "DP")
	case PolicyMLFQ:
		return append(base, "QUEUE", "Q0", "Q1", "Q2", "Q3", "Q4")
	default:
		return base
	}
}

// Snapshot walks the table lock-by-lock (spec.md §4.5: "a lock-free console
// listing" is explicitly out of scope for correctness guarantees, but
// taking each slot's own lock while reading it is cheap and avoids reading
// a torn record) and returns one Row per non-UNUSED slot, in index order.
func (k *Kernel) Snapshot() []Row {
	now := k.Ticks()
	var rows []Row
	k.table.ForEach(func(p *PCB) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.state == Unused {
			return
		}
		runtime := now - p.creationTime
		if p.state == Zombie {
			runtime = p.endTime - p.creationTime
		}
		extra := []string{
			strconv.Itoa(p.cpuRunTime),
			strconv.Itoa(waitTime(runtime, p.cpuRunTime)),
			strconv.Itoa(p.dispatches),
		}
		switch k.policyID {
		case PolicyPBS:
			extra = append(extra, strconv.Itoa(dynamicPriority(p)))
		case PolicyMLFQ:
			currentQ := p.currentQ
			if p.state == Zombie {
				currentQ = -1
			}
			extra = append(extra, strconv.Itoa(currentQ))
			for _, t := range p.qTicks {
				extra = append(extra, strconv.Itoa(t))
			}
		}
		rows = append(rows, Row{PID: p.pid, Name: p.name, State: p.state.String(), Extra: extra})
	})
	return rows
}

// Dump renders the process table to the console as a formatted table
// (spec.md §4.5 "procdump"), rate-limited so a caller polling in a tight
// loop cannot flood stdout.
func (k *Kernel) Dump(w io.Writer) {
	if !dumpLimiter.Allow() {
		return
	}
	header := append([]string{"PID", "NAME", "STATE"}, k.dumpHeader()...)
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	for _, row := range k.Snapshot() {
		table.Append(append([]string{strconv.Itoa(row.PID), row.Name, row.State}, row.Extra...))
	}
	table.Render()
}

// DumpToFile appends a plain tab-separated snapshot to path, holding an
// advisory file lock for the duration of the write (spec.md §9 "a
// file-redirected dump must not interleave with another writer's"). Unlike
// Dump, this is not rate-limited: a file-redirected trace is expected to
// capture every tick a caller asks for.
func (k *Kernel) DumpToFile(path string) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("kernel: dump: acquire lock: %w", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("kernel: dump: open %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	fmt.Fprintf(&sb, "# tick=%d policy=%s at=%s\n", k.Ticks(), k.policyID, time.Now().UTC().Format(time.RFC3339))
	header := append([]string{"PID", "NAME", "STATE"}, k.dumpHeader()...)
	sb.WriteString(strings.Join(header, "\t"))
	sb.WriteByte('\n')
	for _, row := range k.Snapshot() {
		fields := append([]string{strconv.Itoa(row.PID), row.Name, row.State}, row.Extra...)
		sb.WriteString(strings.Join(fields, "\t"))
		sb.WriteByte('\n')
	}
	_, err = f.WriteString(sb.String())
	return err
}

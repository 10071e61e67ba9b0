// Copyright 2026 The xv6core Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package extern declares the narrow interfaces the lifecycle core invokes
// on collaborators spec.md §1 places out of scope: virtual memory, the
// trap/return path, the file and inode layers, the physical page allocator,
// and the timer-tick source. No console-driver or syscall-dispatcher
// interface is declared here. The package also provides the simple
// in-memory stand-ins (MockPageAllocator, MockPageTable, MockFile,
// MockInode, MockFileSystem) that kernel/ constructs at boot.
package extern

import "errors"

// ErrOutOfMemory is returned by PageTable.Grow and PageAllocator.Alloc when
// the simulated physical page pool (or virtual memory region) is exhausted.
// It is the "resource exhausted" cause named in spec.md §7 for the page
// allocator / page-table-build collaborator.
var ErrOutOfMemory = errors.New("kernel: out of memory")

// KernelContext is the saved callee-saved register set used to resume a
// kernel thread (spec.md §3 "saved callee-saved register set"). It has no
// fields here because this port simulates the swtch() handoff with
// goroutines and channels (see kernel/context.go, SPEC_FULL.md §E) rather
// than literal register state; it is kept as a named type so PCB's shape
// matches the original data model even though the core never inspects it.
type KernelContext struct{}

// KernelStack is the pre-mapped kernel stack handle for one process, with a
// guard page above it (spec.md §3, §9 supplemented feature 6). GuardHit is
// set by the (out-of-scope) VM collaborator if it ever detects the guard
// page was touched; the core treats that as a fatal invariant violation.
type KernelStack struct {
	VAddr     uintptr
	GuardHit  bool
}

// PageTable is the out-of-scope VM collaborator's handle for a process's
// user address space (spec.md §1 "page-table create/free, copy, grow/shrink").
type PageTable interface {
	// Copy duplicates this page table's mappings and backing memory into a
	// freshly constructed child page table, for fork.
	Copy() (PageTable, error)
	// Grow extends the mapped region by delta bytes (delta may be negative
	// to shrink), returning the new total size, for sbrk.
	Grow(delta int) (newSize int, err error)
	// Free releases every mapping and the table itself, for exit/freeproc.
	Free()
}

// TrapFrame is the out-of-scope trap/return collaborator's user-register
// save area (spec.md §1 "the trap/return path").
type TrapFrame struct {
	// ReturnValue is the register fork/exec write the child/replaced
	// process's return value into (forced to 0 in the child by fork).
	ReturnValue uint64
}

// Clone duplicates a trap frame for fork, per spec.md §4.2 ("duplicates the
// trap frame, forcing the child's return-value register to 0").
func (t *TrapFrame) Clone() *TrapFrame {
	clone := *t
	clone.ReturnValue = 0
	return &clone
}

// ErrDoubleClose is returned by File.Close/Inode.Put when called on a
// handle whose refcount had already reached zero — a bookkeeping bug in
// the caller (fork/exit's dup/close pairing), never expected in practice,
// but worth surfacing rather than silently ignoring.
var ErrDoubleClose = errors.New("kernel: double close of a refcounted handle")

// File is the out-of-scope file-layer collaborator's open-file handle
// (spec.md §1 "file and inode layers").
type File interface {
	// Dup increments the file's refcount, for fork.
	Dup()
	// Close decrements the file's refcount, releasing it at zero, for exit.
	Close() error
}

// Inode is the out-of-scope file-layer collaborator's handle for a process's
// current working directory.
type Inode interface {
	// Dup increments the inode's refcount, for fork.
	Dup()
	// Put decrements the inode's refcount under a filesystem transaction,
	// for exit.
	Put() error
}

// FileSystem is the out-of-scope file-layer collaborator's mount/init
// entry point (spec.md §1 "file and inode layers"). The trampoline a
// process's very first dispatch lands in calls Init exactly once, system
// wide, mirroring forkret's first-dispatch-only fsinit(ROOTDEV) call in
// original_source/kernel/proc.c.
type FileSystem interface {
	// Init performs one-shot mount/log-recovery setup. Called at most once
	// per booted Kernel.
	Init() error
}

// PageAllocator is the out-of-scope physical page allocator collaborator
// (spec.md §1). allocproc calls it (indirectly, via PageTable construction)
// when attaching a fresh process's address space.
type PageAllocator interface {
	// Alloc reserves one physical page, returning ErrOutOfMemory if the
	// pool is exhausted.
	Alloc() error
	// Free releases one previously allocated page back to the pool.
	Free()
}

// TickSource is the out-of-scope timer-tick collaborator (spec.md §1). The
// kernel does not consult a TickSource: it keeps its own tick counter,
// advanced only via Kernel.Tick (the tick handler's entry point,
// spec.md §4.5).
type TickSource interface {
	// Now returns the current tick count.
	Now() int
}

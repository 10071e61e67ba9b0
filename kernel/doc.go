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

// Package kernel implements the process lifecycle and CPU scheduling core of
// a small teaching-grade preemptive kernel: a fixed-size process table with
// per-slot locking, fork/exit/wait/reparent/kill, the sleep/wakeup rendezvous,
// and four interchangeable scheduling policies over one shared data model.
//
// Real register-level context switching and real hardware interrupts have no
// portable Go equivalent, so kernel threads are modeled as goroutines and the
// swtch() handoff between a per-CPU scheduler loop and a process is modeled
// as a baton pass over a pair of channels (see context.go). Every lock
// acquisition, release, and ordering rule described by the original design is
// preserved exactly across that substitution.
package kernel

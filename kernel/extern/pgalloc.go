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

package extern

import (
	"sync"

	"github.com/pbnjay/memory"
)

// PageSize mirrors a typical 4KiB hardware page. It's only used to turn a
// real host memory figure into a plausible page count for the mock pool
// below; the kernel core never interprets it as a real address-space unit.
const PageSize = 4096

// MockPageAllocator is a trivial physical-page-allocator stand-in for the
// out-of-scope collaborator named in spec.md §1. Its pool size is derived
// from the host's real total memory (via pbnjay/memory) scaled down by
// budgetFraction, so exhausting it under test load exercises the
// "resource exhausted" error path (spec.md §7) against a real, if
// approximate, capacity rather than an arbitrary magic constant.
type MockPageAllocator struct {
	mu       sync.Mutex
	free     int
}

// NewMockPageAllocator sizes the pool at budgetFraction of host memory.
// budgetFraction of 0 or less defaults to a small fixed pool (useful for
// tests that want to force exhaustion quickly).
func NewMockPageAllocator(budgetFraction float64) *MockPageAllocator {
	if budgetFraction <= 0 {
		return &MockPageAllocator{free: NPROC * 8}
	}
	total := memory.TotalMemory()
	pages := int(float64(total) * budgetFraction / PageSize)
	if pages < 1 {
		pages = 1
	}
	return &MockPageAllocator{free: pages}
}

// NPROC mirrors kernel.NPROC without importing the kernel package (which
// imports this one). The two constants are kept equal by hand; nothing
// checks that they match.
const NPROC = 64

// Alloc implements PageAllocator.
func (m *MockPageAllocator) Alloc() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.free <= 0 {
		return ErrOutOfMemory
	}
	m.free--
	return nil
}

// Free implements PageAllocator.
func (m *MockPageAllocator) Free() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.free++
}

// Available reports the number of free pages remaining, for introspection
// and tests.
func (m *MockPageAllocator) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.free
}

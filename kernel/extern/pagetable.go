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

// MockPageTable is a minimal PageTable backed by a page allocator, enough
// to exercise allocproc/fork/exit's resource-attach and rollback paths
// without a real MMU.
type MockPageTable struct {
	alloc  PageAllocator
	pages  int
	size   int
}

// NewMockPageTable builds an empty user address space, reserving one page
// from alloc for the trampoline/trapframe mapping (spec.md §4.2).
func NewMockPageTable(alloc PageAllocator) (*MockPageTable, error) {
	if err := alloc.Alloc(); err != nil {
		return nil, err
	}
	return &MockPageTable{alloc: alloc, pages: 1}, nil
}

// Copy implements PageTable.
func (pt *MockPageTable) Copy() (PageTable, error) {
	child, err := NewMockPageTable(pt.alloc)
	if err != nil {
		return nil, err
	}
	for i := 1; i < pt.pages; i++ {
		if err := pt.alloc.Alloc(); err != nil {
			child.Free()
			return nil, err
		}
		child.pages++
	}
	child.size = pt.size
	return child, nil
}

// Grow implements PageTable.
func (pt *MockPageTable) Grow(delta int) (int, error) {
	if delta > 0 {
		need := (pt.size+delta)/PageSize - pt.size/PageSize
		for i := 0; i < need; i++ {
			if err := pt.alloc.Alloc(); err != nil {
				return pt.size, err
			}
			pt.pages++
		}
	}
	pt.size += delta
	if pt.size < 0 {
		pt.size = 0
	}
	return pt.size, nil
}

// Free implements PageTable.
func (pt *MockPageTable) Free() {
	for i := 0; i < pt.pages; i++ {
		pt.alloc.Free()
	}
	pt.pages = 0
}

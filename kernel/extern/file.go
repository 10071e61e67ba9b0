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

import "sync"

// MockFile is a refcounted stand-in for the out-of-scope file layer's open
// file object, enough to exercise fork's dup-on-copy and exit's
// close-on-drop refcounting (spec.md §4.2).
type MockFile struct {
	mu  sync.Mutex
	ref int
}

// NewMockFile returns an open file with a refcount of 1.
func NewMockFile() *MockFile { return &MockFile{ref: 1} }

// Dup implements File.
func (f *MockFile) Dup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ref++
}

// Close implements File.
func (f *MockFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ref <= 0 {
		return ErrDoubleClose
	}
	f.ref--
	return nil
}

// RefCount reports the current refcount, for tests.
func (f *MockFile) RefCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ref
}

// MockInode is the equivalent stand-in for a cwd handle.
type MockInode struct {
	mu  sync.Mutex
	ref int
}

// NewMockInode returns an inode handle with a refcount of 1.
func NewMockInode() *MockInode { return &MockInode{ref: 1} }

// Dup implements Inode.
func (i *MockInode) Dup() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ref++
}

// Put implements Inode.
func (i *MockInode) Put() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ref <= 0 {
		return ErrDoubleClose
	}
	i.ref--
	return nil
}

// RefCount reports the current refcount, for tests.
func (i *MockInode) RefCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ref
}

// MockFileSystem is a no-op stand-in for the out-of-scope file layer's
// mount/log-recovery step: there is no disk image to recover in this
// in-memory simulation, but the call still happens exactly once so the
// trampoline's ordering contract (spec.md §4.4) holds.
type MockFileSystem struct {
	mu       sync.Mutex
	initDone bool
}

// NewMockFileSystem returns an uninitialized mock file system.
func NewMockFileSystem() *MockFileSystem { return &MockFileSystem{} }

// Init implements FileSystem.
func (fs *MockFileSystem) Init() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.initDone = true
	return nil
}

// Initialized reports whether Init has run, for tests.
func (fs *MockFileSystem) Initialized() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.initDone
}

// Copyright 2026 The gVisor Authors.
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

// Package procfs provides a small registry of synthetic, procfs-style files
// whose contents are generated on access.
//
// Each file is an Entry. Opening an Entry yields a FileImpl holding per-open
// state; File wraps a FileImpl with the name it was opened under.
package procfs

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"

	"gvisor.dev/critmon/pkg/abi/linux"
	"gvisor.dev/critmon/pkg/errors/linuxerr"
)

// Entry is a node that can be opened and stat'd.
type Entry interface {
	// Open returns a new open handle. flags are open(2) flags.
	Open(ctx context.Context, flags uint32) (FileImpl, error)

	// OpenDir opens the entry as a directory.
	OpenDir(ctx context.Context) (FileImpl, error)

	// Stat returns the entry's attributes.
	Stat(ctx context.Context) (linux.Stat, error)
}

// FileImpl contains the per-open state and operations of an Entry.
//
// Operations on a single FileImpl must be serialized by the caller. Calling
// any method after Close is a caller bug.
type FileImpl interface {
	// Read copies the next bytes of the file into dst and advances the file
	// offset by the number of bytes copied. A zero count with a nil error
	// marks the end of the file.
	Read(ctx context.Context, dst []byte) (int, error)

	// Write writes src at the file offset.
	Write(ctx context.Context, src []byte) (int, error)

	// Seek changes the file offset. whence is one of linux.SEEK_*.
	Seek(ctx context.Context, offset int64, whence int32) (int64, error)

	// Poll returns the subset of events that are ready.
	Poll(ctx context.Context, events uint32) (uint32, error)

	// ReadDir returns the names of directory entries.
	ReadDir(ctx context.Context) ([]string, error)

	// Dup returns a new handle with a copy of this handle's state.
	Dup(ctx context.Context) (FileImpl, error)

	// Close releases the handle.
	Close(ctx context.Context) error
}

// Registry maps names to entries. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// cleanName canonicalizes a name relative to the registry root.
func cleanName(name string) (string, error) {
	name = path.Clean("/" + name)[1:]
	if name == "" {
		return "", linuxerr.EINVAL
	}
	return name, nil
}

// Register adds e under name. Names are relative paths; leading slashes are
// ignored. Registering an existing name returns EEXIST.
func (r *Registry) Register(name string, e Entry) error {
	clean, err := cleanName(name)
	if err != nil {
		return fmt.Errorf("registering %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[clean]; ok {
		return fmt.Errorf("registering %q: %w", clean, linuxerr.EEXIST)
	}
	r.entries[clean] = e
	return nil
}

// Lookup returns the entry registered under name, or ENOENT.
func (r *Registry) Lookup(name string) (Entry, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, linuxerr.ENOENT
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[clean]
	if !ok {
		return nil, linuxerr.ENOENT
	}
	return e, nil
}

// Names returns the registered names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Open opens the entry registered under name.
func (r *Registry) Open(ctx context.Context, name string, flags uint32) (*File, error) {
	e, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	impl, err := e.Open(ctx, flags)
	if err != nil {
		return nil, err
	}
	return &File{name: name, impl: impl}, nil
}

// Stat returns the attributes of the entry registered under name.
func (r *Registry) Stat(ctx context.Context, name string) (linux.Stat, error) {
	e, err := r.Lookup(name)
	if err != nil {
		return linux.Stat{}, err
	}
	return e.Stat(ctx)
}

// File is an open handle on a registry entry.
type File struct {
	name string
	impl FileImpl
}

// Name returns the name the file was opened under.
func (f *File) Name() string {
	return f.name
}

// Impl returns the underlying handle.
func (f *File) Impl() FileImpl {
	return f.impl
}

// Read forwards to FileImpl.Read.
func (f *File) Read(ctx context.Context, dst []byte) (int, error) {
	return f.impl.Read(ctx, dst)
}

// Seek forwards to FileImpl.Seek.
func (f *File) Seek(ctx context.Context, offset int64, whence int32) (int64, error) {
	return f.impl.Seek(ctx, offset, whence)
}

// Dup returns an independent handle positioned where f is.
func (f *File) Dup(ctx context.Context) (*File, error) {
	impl, err := f.impl.Dup(ctx)
	if err != nil {
		return nil, err
	}
	return &File{name: f.name, impl: impl}, nil
}

// Close forwards to FileImpl.Close.
func (f *File) Close(ctx context.Context) error {
	return f.impl.Close(ctx)
}

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

// Package fusefs serves a procfs.Registry as a read-only FUSE filesystem.
//
// Every registry entry appears as a file; names containing slashes appear
// under intermediate directories. Files are opened with direct I/O so that
// the kernel passes every read through to the entry and never caches the
// generated contents.
package fusefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"gvisor.dev/critmon/pkg/abi/linux"
	"gvisor.dev/critmon/pkg/errors/linuxerr"
	"gvisor.dev/critmon/pkg/log"
	"gvisor.dev/critmon/pkg/procfs"
)

// Options configures Mount.
type Options struct {
	// Mountpoint is the directory to mount on. It is created if missing.
	Mountpoint string

	// Registry holds the entries to serve.
	Registry *procfs.Registry

	// FsName is reported as the mount source. Defaults to "critmon".
	FsName string

	// AllowOther permits other users to access the mount. Requires
	// user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Debug enables go-fuse request tracing.
	Debug bool
}

// Mount mounts the registry at opts.Mountpoint. The caller must Unmount the
// returned server when done.
func Mount(opts Options) (*fuse.Server, error) {
	if opts.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.FsName == "" {
		opts.FsName = "critmon"
	}
	if err := os.MkdirAll(opts.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", opts.Mountpoint, err)
	}

	// Attributes never change, but contents do; direct I/O handles the
	// latter.
	entryTimeout := time.Second
	attrTimeout := time.Second
	server, err := gofuse.Mount(opts.Mountpoint, NewRoot(opts.Registry), &gofuse.Options{
		EntryTimeout: &entryTimeout,
		AttrTimeout:  &attrTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     opts.FsName,
			Name:       "critmon",
			AllowOther: opts.AllowOther,
			Debug:      opts.Debug,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", opts.Mountpoint, err)
	}
	log.Infof("Mounted %v at %s", opts.Registry.Names(), opts.Mountpoint)
	return server, nil
}

// NewRoot returns the root directory node for r. Entries are read from r
// when the root is added to a mounted tree; later registrations are not
// visible.
func NewRoot(r *procfs.Registry) gofuse.InodeEmbedder {
	return &rootNode{registry: r}
}

// toErrno converts an error returned by a procfs entry to an errno.
func toErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	if errno, ok := linuxerr.Errno(err); ok {
		return syscall.Errno(errno)
	}
	switch {
	case errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, os.ErrPermission):
		return syscall.EPERM
	default:
		return syscall.EIO
	}
}

// dirNode is a read-only directory. Its children are added by rootNode.
type dirNode struct {
	gofuse.Inode
}

var _ gofuse.NodeGetattrer = (*dirNode)(nil)

// Getattr implements gofuse.NodeGetattrer.
func (d *dirNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = syscall.S_IFDIR | 0o555
	return 0
}

// rootNode is the filesystem root.
type rootNode struct {
	dirNode
	registry *procfs.Registry
}

var _ gofuse.NodeOnAdder = (*rootNode)(nil)

// OnAdd implements gofuse.NodeOnAdder.
func (r *rootNode) OnAdd(ctx context.Context) {
	for _, name := range r.registry.Names() {
		e, err := r.registry.Lookup(name)
		if err != nil {
			continue
		}
		parent := &r.Inode
		components := strings.Split(name, "/")
		for _, dir := range components[:len(components)-1] {
			child := parent.GetChild(dir)
			if child == nil {
				child = parent.NewPersistentInode(ctx, &dirNode{}, gofuse.StableAttr{Mode: syscall.S_IFDIR})
				parent.AddChild(dir, child, true)
			}
			parent = child
		}
		file := parent.NewPersistentInode(ctx, &entryNode{name: name, entry: e}, gofuse.StableAttr{Mode: syscall.S_IFREG})
		parent.AddChild(components[len(components)-1], file, true)
	}
}

// entryNode exposes one registry entry as a file.
type entryNode struct {
	gofuse.Inode
	name  string
	entry procfs.Entry
}

var _ gofuse.NodeGetattrer = (*entryNode)(nil)
var _ gofuse.NodeOpener = (*entryNode)(nil)

// Getattr implements gofuse.NodeGetattrer.
func (n *entryNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	stat, err := n.entry.Stat(ctx)
	if err != nil {
		return toErrno(err)
	}
	out.Mode = uint32(stat.Mode)
	out.Nlink = uint32(stat.Nlink)
	out.Uid = stat.UID
	out.Gid = stat.GID
	out.Size = uint64(stat.Size)
	out.Blksize = uint32(stat.Blksize)
	out.Blocks = uint64(stat.Blocks)
	return 0
}

// Open implements gofuse.NodeOpener.
func (n *entryNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	impl, err := n.entry.Open(ctx, flags)
	if err != nil {
		log.Debugf("Open %s with flags %#x: %v", n.name, flags, err)
		return nil, 0, toErrno(err)
	}
	return &fileHandle{name: n.name, impl: impl}, fuse.FOPEN_DIRECT_IO, 0
}

// fileHandle adapts a procfs.FileImpl to positional FUSE reads.
type fileHandle struct {
	name string

	// mu serializes operations on impl, which is not safe for concurrent
	// use.
	mu   sync.Mutex
	impl procfs.FileImpl
	pos  int64
}

var _ gofuse.FileReader = (*fileHandle)(nil)
var _ gofuse.FileReleaser = (*fileHandle)(nil)

// Read implements gofuse.FileReader. If off is not where the previous read
// ended the handle is repositioned first.
func (h *fileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if off != h.pos {
		if _, err := h.impl.Seek(ctx, off, linux.SEEK_SET); err != nil {
			return nil, toErrno(err)
		}
		h.pos = off
	}
	n, err := h.impl.Read(ctx, dest)
	if err != nil {
		return nil, toErrno(err)
	}
	h.pos += int64(n)
	return fuse.ReadResultData(dest[:n]), 0
}

// Release implements gofuse.FileReleaser.
func (h *fileHandle) Release(ctx context.Context) syscall.Errno {
	h.mu.Lock()
	defer h.mu.Unlock()
	return toErrno(h.impl.Close(ctx))
}

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

package procfs

import (
	"context"
	"fmt"
	"time"

	"github.com/mohae/deepcopy"
	"gvisor.dev/critmon/pkg/abi/linux"
	"gvisor.dev/critmon/pkg/atomicbitops"
	"gvisor.dev/critmon/pkg/critmon"
	"gvisor.dev/critmon/pkg/errors/linuxerr"
	"gvisor.dev/critmon/pkg/log"
)

// CritmonName is the name the critmon file is conventionally registered
// under.
const CritmonName = "critmon"

// readLogInterval limits read logging, which happens on every read.
const readLogInterval = time.Second

// CritmonOptions configures a Critmon entry.
type CritmonOptions struct {
	// Source provides the marks. It is required.
	Source critmon.Source

	// Columns selects the reported marks.
	Columns critmon.Columns

	// MaxHandles bounds the number of simultaneously open handles. Open and
	// Dup beyond the bound fail with ENOMEM. Zero means no bound.
	MaxHandles int64

	// Logger receives the entry's log output. If nil, the global logger is
	// used.
	Logger log.Logger
}

// Critmon is a read-only file reporting per-CPU latency marks, one record
// per CPU:
//
//	cpu[,preempt_max][,crit_max]\n
//
// where each mark is rendered as sec.nsec with a nine digit fraction, e.g.
//
//	0,1.500000000,0.000000000
//	1,0.000000000,2.250000000
//
// Reading a mark clears it.
type Critmon struct {
	EntryNoDirectory

	source     critmon.Source
	kinds      []critmon.Kind
	columns    critmon.Columns
	maxHandles int64
	logger     log.Logger
	readLog    *log.RateLimited

	// handles is the number of open handles.
	handles atomicbitops.Int64
}

var _ Entry = (*Critmon)(nil)

// NewCritmon returns a new Critmon entry.
//
// Preconditions: opts.Source != nil.
func NewCritmon(opts CritmonOptions) *Critmon {
	if opts.Source == nil {
		panic("critmon entry requires a source")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Log()
	}
	return &Critmon{
		source:     opts.Source,
		kinds:      opts.Columns.Kinds(),
		columns:    opts.Columns,
		maxHandles: opts.MaxHandles,
		logger:     logger,
		readLog:    log.RateLimitedLogger(logger, readLogInterval),
	}
}

// Columns returns the reported marks.
func (c *Critmon) Columns() critmon.Columns {
	return c.columns
}

// OpenHandles returns the number of handles not yet closed.
func (c *Critmon) OpenHandles() int64 {
	return c.handles.Load()
}

// reserve accounts for a new handle, returning false if the handle budget is
// exhausted.
func (c *Critmon) reserve() bool {
	return c.handles.IncUnlessAtLeast(c.maxHandles)
}

func (c *Critmon) release() {
	if c.handles.Add(-1) < 0 {
		panic("critmon handle count underflow")
	}
}

// Open implements Entry.Open. Only read-only opens are permitted.
func (c *Critmon) Open(ctx context.Context, flags uint32) (FileImpl, error) {
	if linux.AccessMode(flags) != linux.O_RDONLY {
		c.logger.Warningf("critmon: open with flags %#x rejected: write access requested", flags)
		return nil, linuxerr.EACCES
	}
	if !c.reserve() {
		c.logger.Warningf("critmon: open failed: %d handles already open", c.handles.Load())
		return nil, linuxerr.ENOMEM
	}
	c.logger.Debugf("critmon: opened, flags %#x", flags)
	return &critmonFD{node: c}, nil
}

// Stat implements Entry.Stat. The size is always zero since the contents are
// only known once generated.
func (c *Critmon) Stat(ctx context.Context) (linux.Stat, error) {
	return linux.Stat{
		Mode:  linux.ModeRegular | linux.ModeUserRead | linux.ModeGroupRead | linux.ModeOtherRead,
		Nlink: 1,
	}, nil
}

// critmonState is the copyable state of a handle. Fields are exported so that
// deepcopy carries them over on Dup.
type critmonState struct {
	// Offset is the position of the next byte to read.
	Offset int64

	// Line holds the most recently rendered field; LineSize is its length.
	Line     [critmonLineLen]byte
	LineSize int
}

// critmonFD is an open handle on a Critmon.
type critmonFD struct {
	FileDefaultImpl

	node   *Critmon
	closed bool
	state  critmonState
}

var _ FileImpl = (*critmonFD)(nil)

// checkValid panics if fd may not be used.
func (fd *critmonFD) checkValid(op string) {
	if fd == nil || fd.node == nil {
		panic(fmt.Sprintf("critmon: %s on nil handle", op))
	}
	if fd.closed {
		panic(fmt.Sprintf("critmon: %s on closed handle", op))
	}
}

// render stores a field produced by appendField in the line buffer and
// returns it.
func (fd *critmonFD) render(appendField func([]byte) []byte) []byte {
	line := appendField(fd.state.Line[:0])
	fd.state.LineSize = copy(fd.state.Line[:], line)
	return fd.state.Line[:fd.state.LineSize]
}

// Read implements FileImpl.Read.
//
// Every call regenerates the document from CPU 0 and stops as soon as dst is
// full. Each mark is taken from the source, and so cleared, when its field is
// rendered, including fields that lie entirely before the current offset.
func (fd *critmonFD) Read(ctx context.Context, dst []byte) (int, error) {
	fd.checkValid("Read")
	c := fd.node
	cur := newCursor(dst, fd.state.Offset)
	ncpus := c.source.NumCPUs()
	for cpu := 0; cpu < ncpus && !cur.full(); cpu++ {
		cur.write(fd.render(func(b []byte) []byte { return appendCPUField(b, cpu) }))
		for _, kind := range c.kinds {
			if cur.full() {
				break
			}
			ts := c.source.TakeMax(cpu, kind)
			cur.write(fd.render(func(b []byte) []byte { return appendDurationField(b, ts) }))
		}
		if cur.full() {
			break
		}
		cur.write(fd.render(appendEndField))
	}
	c.readLog.Debugf("critmon: read %d of %d bytes at offset %d", cur.n, len(dst), fd.state.Offset)
	fd.state.Offset += int64(cur.n)
	return cur.n, nil
}

// Seek implements FileImpl.Seek. Only SEEK_SET and SEEK_CUR are supported,
// as for seq files.
func (fd *critmonFD) Seek(ctx context.Context, offset int64, whence int32) (int64, error) {
	fd.checkValid("Seek")
	switch whence {
	case linux.SEEK_SET:
		// Use offset as given.
	case linux.SEEK_CUR:
		offset += fd.state.Offset
	default:
		return 0, linuxerr.EINVAL
	}
	if offset < 0 {
		return 0, linuxerr.EINVAL
	}
	fd.state.Offset = offset
	return offset, nil
}

// Dup implements FileImpl.Dup. The new handle starts with a copy of fd's
// offset and line buffer and is independent of fd afterwards.
func (fd *critmonFD) Dup(ctx context.Context) (FileImpl, error) {
	fd.checkValid("Dup")
	c := fd.node
	if !c.reserve() {
		c.logger.Warningf("critmon: dup failed: %d handles already open", c.handles.Load())
		return nil, linuxerr.ENOMEM
	}
	dup := &critmonFD{
		node:  c,
		state: deepcopy.Copy(fd.state).(critmonState),
	}
	c.logger.Debugf("critmon: dup at offset %d", dup.state.Offset)
	return dup, nil
}

// Close implements FileImpl.Close.
func (fd *critmonFD) Close(ctx context.Context) error {
	fd.checkValid("Close")
	fd.closed = true
	fd.node.release()
	return nil
}

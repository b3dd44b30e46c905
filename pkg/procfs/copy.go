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

// cursor copies a window of a byte stream into dst. The stream is offered
// piece by piece as it is generated; bytes before the window start are
// skipped without being copied, so a read may resume in the middle of any
// piece.
type cursor struct {
	dst []byte

	// n is the number of bytes copied into dst.
	n int

	// skip is the number of stream bytes still to pass over before the
	// window starts.
	skip int64
}

func newCursor(dst []byte, offset int64) cursor {
	return cursor{dst: dst, skip: offset}
}

// full returns true if dst has no room left.
func (c *cursor) full() bool {
	return c.n >= len(c.dst)
}

// write offers the next piece of the stream and returns the number of its
// bytes copied into dst.
func (c *cursor) write(piece []byte) int {
	if c.skip >= int64(len(piece)) {
		c.skip -= int64(len(piece))
		return 0
	}
	piece = piece[c.skip:]
	c.skip = 0
	n := copy(c.dst[c.n:], piece)
	c.n += n
	return n
}

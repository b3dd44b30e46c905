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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCursor(t *testing.T) {
	pieces := []string{"ab", "cde", "f", "", "ghij"}
	const stream = "abcdefghij"
	for _, test := range []struct {
		name   string
		offset int64
		size   int
	}{
		{"whole", 0, 100},
		{"exact", 0, len(stream)},
		{"first byte", 0, 1},
		{"piece boundary", 2, 3},
		{"mid piece", 3, 4},
		{"mid piece to end", 7, 10},
		{"last byte", 9, 1},
		{"at end", 10, 4},
		{"past end", 20, 4},
		{"empty buffer", 3, 0},
	} {
		t.Run(test.name, func(t *testing.T) {
			c := newCursor(make([]byte, test.size), test.offset)
			for _, p := range pieces {
				if c.full() {
					break
				}
				c.write([]byte(p))
			}
			start := min(int(test.offset), len(stream))
			want := stream[start:min(start+test.size, len(stream))]
			if diff := cmp.Diff(want, string(c.dst[:c.n])); diff != "" {
				t.Errorf("copied bytes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCursorSkipAccounting(t *testing.T) {
	c := newCursor(make([]byte, 4), 5)
	if n := c.write([]byte("abc")); n != 0 || c.skip != 2 {
		t.Fatalf("write(abc) = %d with skip %d, want 0 with skip 2", n, c.skip)
	}
	if n := c.write([]byte("defg")); n != 2 || c.skip != 0 {
		t.Fatalf("write(defg) = %d with skip %d, want 2 with skip 0", n, c.skip)
	}
	if n := c.write([]byte("hijk")); n != 2 || !c.full() {
		t.Fatalf("write(hijk) = %d, full %t; want 2, true", n, c.full())
	}
	if got := string(c.dst); got != "fghi" {
		t.Errorf("dst = %q, want %q", got, "fghi")
	}
}

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

// Package critmon tracks per-CPU scheduling-latency high-water marks: the
// longest interval with preemption disabled and the longest interval spent in
// a critical section.
//
// Marks are get-and-reset: a value handed out by TakeMax is cleared, so each
// elevated maximum is reported at most once.
package critmon

import (
	"fmt"

	"gvisor.dev/critmon/pkg/abi/linux"
)

// Kind identifies one of the per-CPU high-water marks.
type Kind int

const (
	// PreemptMax is the maximum time preemption was disabled.
	PreemptMax Kind = iota

	// CritSectionMax is the maximum time spent in a critical section.
	CritSectionMax

	numKinds
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case PreemptMax:
		return "preempt_max"
	case CritSectionMax:
		return "crit_max"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Columns selects which marks are reported. It is fixed for the lifetime of
// the process and shared by every reader.
type Columns struct {
	PreemptMax     bool
	CritSectionMax bool
}

// AllColumns reports both marks.
var AllColumns = Columns{PreemptMax: true, CritSectionMax: true}

// Kinds returns the enabled kinds in report order.
func (c Columns) Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	if c.PreemptMax {
		kinds = append(kinds, PreemptMax)
	}
	if c.CritSectionMax {
		kinds = append(kinds, CritSectionMax)
	}
	return kinds
}

// String implements fmt.Stringer.
func (c Columns) String() string {
	return fmt.Sprintf("preempt_max=%t,crit_max=%t", c.PreemptMax, c.CritSectionMax)
}

// Source provides high-water marks to readers.
type Source interface {
	// NumCPUs returns the number of CPUs tracked. It never changes.
	NumCPUs() int

	// TakeMax atomically reads and clears the mark of the given kind for
	// cpu. Updates racing with TakeMax are either returned by this call or
	// retained for the next one; they are never lost.
	TakeMax(cpu int, kind Kind) linux.Timespec
}

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

package critmon

import (
	"fmt"
	"time"

	"gvisor.dev/critmon/pkg/abi/linux"
	"gvisor.dev/critmon/pkg/atomicbitops"
	"gvisor.dev/critmon/pkg/errors/linuxerr"
)

// Monitor is a Source backed by in-memory per-CPU counters. Record may be
// called concurrently with TakeMax from any goroutine.
type Monitor struct {
	clock PerfClock

	// marks holds raw tick counts, indexed by CPU then Kind.
	marks [][numKinds]atomicbitops.Uint64
}

var _ Source = (*Monitor)(nil)

// NewMonitor returns a Monitor tracking ncpus CPUs whose counters tick at
// clock.Frequency.
func NewMonitor(ncpus int, clock PerfClock) (*Monitor, error) {
	if ncpus <= 0 {
		return nil, fmt.Errorf("invalid CPU count %d: %w", ncpus, linuxerr.EINVAL)
	}
	if err := clock.Validate(); err != nil {
		return nil, fmt.Errorf("invalid perf clock frequency %d: %w", clock.Frequency, err)
	}
	return &Monitor{
		clock: clock,
		marks: make([][numKinds]atomicbitops.Uint64, ncpus),
	}, nil
}

// Clock returns the clock used to convert recorded ticks.
func (m *Monitor) Clock() PerfClock {
	return m.clock
}

// NumCPUs implements Source.NumCPUs.
func (m *Monitor) NumCPUs() int {
	return len(m.marks)
}

func (m *Monitor) mark(cpu int, kind Kind) *atomicbitops.Uint64 {
	if cpu < 0 || cpu >= len(m.marks) {
		panic(fmt.Sprintf("CPU %d out of range [0, %d)", cpu, len(m.marks)))
	}
	if kind < 0 || kind >= numKinds {
		panic(fmt.Sprintf("invalid %v", kind))
	}
	return &m.marks[cpu][kind]
}

// Record raises the mark of the given kind for cpu to ticks. Smaller values
// are ignored. It returns true if the mark was raised.
func (m *Monitor) Record(cpu int, kind Kind, ticks uint64) bool {
	return m.mark(cpu, kind).StoreMax(ticks)
}

// RecordDuration is equivalent to Record(cpu, kind, m.Clock().Ticks(d)).
func (m *Monitor) RecordDuration(cpu int, kind Kind, d time.Duration) bool {
	return m.Record(cpu, kind, m.clock.Ticks(d))
}

// TakeMax implements Source.TakeMax.
func (m *Monitor) TakeMax(cpu int, kind Kind) linux.Timespec {
	ticks := m.mark(cpu, kind).Swap(0)
	if ticks == 0 {
		return linux.Timespec{}
	}
	return m.clock.Convert(ticks)
}

// Peek returns the current mark without clearing it.
func (m *Monitor) Peek(cpu int, kind Kind) linux.Timespec {
	return m.clock.Convert(m.mark(cpu, kind).Load())
}

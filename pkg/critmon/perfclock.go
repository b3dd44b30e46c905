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
	"math"
	"math/bits"
	"time"

	"gvisor.dev/critmon/pkg/abi/linux"
	"gvisor.dev/critmon/pkg/errors/linuxerr"
)

// PerfClock converts between performance counter ticks and wall time.
type PerfClock struct {
	// Frequency is the counter rate in ticks per second.
	Frequency uint64
}

// NanosecondClock is a PerfClock whose ticks are nanoseconds.
var NanosecondClock = PerfClock{Frequency: uint64(time.Second)}

// Validate returns EINVAL if the clock cannot convert ticks.
func (c PerfClock) Validate() error {
	if c.Frequency == 0 {
		return linuxerr.EINVAL
	}
	return nil
}

// Convert returns the duration of ticks.
//
// Precondition: c.Validate() == nil.
func (c PerfClock) Convert(ticks uint64) linux.Timespec {
	sec := ticks / c.Frequency
	rem := ticks % c.Frequency
	// rem < Frequency, so rem*1e9/Frequency < 1e9 and Div64 cannot overflow.
	hi, lo := bits.Mul64(rem, uint64(time.Second))
	nsec, _ := bits.Div64(hi, lo, c.Frequency)
	if sec > math.MaxInt64 {
		return linux.Timespec{Sec: math.MaxInt64, Nsec: int64(time.Second) - 1}
	}
	return linux.Timespec{Sec: int64(sec), Nsec: int64(nsec)}
}

// Ticks returns the number of ticks in d, saturating at math.MaxUint64.
// Non-positive durations are zero ticks.
//
// Precondition: c.Validate() == nil.
func (c PerfClock) Ticks(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(d), c.Frequency)
	if hi >= uint64(time.Second) {
		return math.MaxUint64
	}
	ticks, _ := bits.Div64(hi, lo, uint64(time.Second))
	return ticks
}

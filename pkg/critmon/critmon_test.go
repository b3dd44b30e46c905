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
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/unix"
	"gvisor.dev/critmon/pkg/abi/linux"
	"gvisor.dev/critmon/pkg/errors/linuxerr"
)

func TestColumnsKinds(t *testing.T) {
	for _, test := range []struct {
		cols Columns
		want []Kind
	}{
		{Columns{}, []Kind{}},
		{Columns{PreemptMax: true}, []Kind{PreemptMax}},
		{Columns{CritSectionMax: true}, []Kind{CritSectionMax}},
		{AllColumns, []Kind{PreemptMax, CritSectionMax}},
	} {
		t.Run(test.cols.String(), func(t *testing.T) {
			if diff := cmp.Diff(test.want, test.cols.Kinds()); diff != "" {
				t.Errorf("Kinds() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPerfClockConvert(t *testing.T) {
	for _, test := range []struct {
		name  string
		freq  uint64
		ticks uint64
		want  linux.Timespec
	}{
		{"zero", 1e9, 0, linux.Timespec{}},
		{"ns", 1e9, 1_500_000_000, linux.Timespec{Sec: 1, Nsec: 500_000_000}},
		{"khz", 1000, 2250, linux.Timespec{Sec: 2, Nsec: 250_000_000}},
		{"3ghz", 3e9, 4_500_000_001, linux.Timespec{Sec: 1, Nsec: 500_000_000}},
		{"odd", 7, 10, linux.Timespec{Sec: 1, Nsec: 428_571_428}},
		{"max", 1e9, math.MaxUint64, linux.Timespec{Sec: 18446744073, Nsec: 709_551_615}},
		{"saturate", 1, math.MaxUint64, linux.Timespec{Sec: math.MaxInt64, Nsec: 999_999_999}},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := PerfClock{Frequency: test.freq}.Convert(test.ticks)
			if got != test.want {
				t.Errorf("Convert(%d) at %d Hz = %+v, want %+v", test.ticks, test.freq, got, test.want)
			}
			if !got.Valid() {
				t.Errorf("Convert(%d) at %d Hz = %+v is not a valid timespec", test.ticks, test.freq, got)
			}
		})
	}
}

func TestPerfClockTicks(t *testing.T) {
	for _, test := range []struct {
		freq uint64
		d    time.Duration
		want uint64
	}{
		{1e9, 1500 * time.Millisecond, 1_500_000_000},
		{1000, 2250 * time.Millisecond, 2250},
		{1000, -time.Second, 0},
		{1000, 0, 0},
		{math.MaxUint64, math.MaxInt64, math.MaxUint64},
	} {
		if got := (PerfClock{Frequency: test.freq}).Ticks(test.d); got != test.want {
			t.Errorf("Ticks(%v) at %d Hz = %d, want %d", test.d, test.freq, got, test.want)
		}
	}
}

func TestPerfClockValidate(t *testing.T) {
	if err := (PerfClock{}).Validate(); !linuxerr.Equals(linuxerr.EINVAL, err) {
		t.Errorf("Validate() of zero clock = %v, want EINVAL", err)
	}
	if err := NanosecondClock.Validate(); err != nil {
		t.Errorf("NanosecondClock.Validate() = %v", err)
	}
}

func TestNewMonitorErrors(t *testing.T) {
	for _, ncpus := range []int{0, -1} {
		_, err := NewMonitor(ncpus, NanosecondClock)
		if !errors.Is(err, linuxerr.EINVAL) {
			t.Errorf("NewMonitor(%d, ...) = %v, want EINVAL", ncpus, err)
		}
		if errno, ok := linuxerr.Errno(err); !ok || errno != unix.EINVAL {
			t.Errorf("Errno(NewMonitor(%d, ...)) = (%v, %t), want (EINVAL, true)", ncpus, errno, ok)
		}
	}
	if _, err := NewMonitor(1, PerfClock{}); !errors.Is(err, linuxerr.EINVAL) {
		t.Errorf("NewMonitor with zero frequency = %v, want EINVAL", err)
	}
}

func newTestMonitor(t *testing.T, ncpus int) *Monitor {
	t.Helper()
	m, err := NewMonitor(ncpus, NanosecondClock)
	if err != nil {
		t.Fatalf("NewMonitor(%d): %v", ncpus, err)
	}
	return m
}

func TestMonitorTakeMaxResets(t *testing.T) {
	m := newTestMonitor(t, 2)
	m.RecordDuration(0, PreemptMax, 1500*time.Millisecond)
	m.RecordDuration(0, PreemptMax, time.Second)
	m.RecordDuration(1, CritSectionMax, 2250*time.Millisecond)

	if got, want := m.Peek(0, PreemptMax), (linux.Timespec{Sec: 1, Nsec: 500_000_000}); got != want {
		t.Errorf("Peek(0, %v) = %+v, want %+v", PreemptMax, got, want)
	}
	if got, want := m.TakeMax(0, PreemptMax), (linux.Timespec{Sec: 1, Nsec: 500_000_000}); got != want {
		t.Errorf("TakeMax(0, %v) = %+v, want %+v", PreemptMax, got, want)
	}
	if got := m.TakeMax(0, PreemptMax); got != (linux.Timespec{}) {
		t.Errorf("second TakeMax(0, %v) = %+v, want zero", PreemptMax, got)
	}
	if got := m.TakeMax(0, CritSectionMax); got != (linux.Timespec{}) {
		t.Errorf("TakeMax(0, %v) = %+v, want zero", CritSectionMax, got)
	}
	if got, want := m.TakeMax(1, CritSectionMax), (linux.Timespec{Sec: 2, Nsec: 250_000_000}); got != want {
		t.Errorf("TakeMax(1, %v) = %+v, want %+v", CritSectionMax, got, want)
	}
}

func TestMonitorConcurrentRecordNotLost(t *testing.T) {
	m := newTestMonitor(t, 1)
	const n = 1000
	var wg sync.WaitGroup
	var mu sync.Mutex
	var best uint64
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i++ {
			m.Record(0, CritSectionMax, uint64(i))
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			got := uint64(m.TakeMax(0, CritSectionMax).ToNsec())
			mu.Lock()
			best = max(best, got)
			mu.Unlock()
		}
	}()
	wg.Wait()
	best = max(best, uint64(m.TakeMax(0, CritSectionMax).ToNsec()))
	if best != n {
		t.Errorf("largest value observed = %d, want %d", best, n)
	}
}

func TestMonitorOutOfRangePanics(t *testing.T) {
	m := newTestMonitor(t, 1)
	for _, test := range []struct {
		name string
		cpu  int
		kind Kind
	}{
		{"negative cpu", -1, PreemptMax},
		{"cpu too large", 1, PreemptMax},
		{"bad kind", 0, numKinds},
	} {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("TakeMax(%d, %v) did not panic", test.cpu, test.kind)
				}
			}()
			m.TakeMax(test.cpu, test.kind)
		})
	}
}

func TestLoadSnapshot(t *testing.T) {
	const doc = `
cpus:
- cpu: 0
  preempt_max: 1.5s
- cpu: 1
  crit_max: 2.25s
`
	s, err := LoadSnapshot(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	want := &Snapshot{CPUs: []CPUSnapshot{
		{CPU: 0, PreemptMax: 1500 * time.Millisecond},
		{CPU: 1, CritMax: 2250 * time.Millisecond},
	}}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("LoadSnapshot mismatch (-want +got):\n%s", diff)
	}

	m := newTestMonitor(t, 2)
	if err := s.Apply(m); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := []linux.Timespec{
		m.TakeMax(0, PreemptMax), m.TakeMax(0, CritSectionMax),
		m.TakeMax(1, PreemptMax), m.TakeMax(1, CritSectionMax),
	}
	wantMarks := []linux.Timespec{
		{Sec: 1, Nsec: 500_000_000}, {},
		{}, {Sec: 2, Nsec: 250_000_000},
	}
	if diff := cmp.Diff(wantMarks, got); diff != "" {
		t.Errorf("marks after Apply mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSnapshotEmpty(t *testing.T) {
	s, err := LoadSnapshot(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadSnapshot(\"\"): %v", err)
	}
	if len(s.CPUs) != 0 {
		t.Errorf("LoadSnapshot(\"\") = %+v, want empty", s)
	}
}

func TestLoadSnapshotUnknownField(t *testing.T) {
	if _, err := LoadSnapshot(strings.NewReader("cpus:\n- cpu: 0\n  bogus: 1s\n")); err == nil {
		t.Errorf("LoadSnapshot with unknown field succeeded")
	}
}

func TestSnapshotApplyRejectsOutOfRange(t *testing.T) {
	m := newTestMonitor(t, 1)
	s := &Snapshot{CPUs: []CPUSnapshot{
		{CPU: 0, PreemptMax: time.Second},
		{CPU: 1, PreemptMax: time.Second},
	}}
	if err := s.Apply(m); !errors.Is(err, linuxerr.EINVAL) {
		t.Fatalf("Apply = %v, want EINVAL", err)
	}
	if got := m.Peek(0, PreemptMax); got != (linux.Timespec{}) {
		t.Errorf("failed Apply recorded %+v for CPU 0", got)
	}
}

func TestSnapshotApplyRejectsNegativeDuration(t *testing.T) {
	m := newTestMonitor(t, 2)
	s := &Snapshot{CPUs: []CPUSnapshot{
		{CPU: 0, PreemptMax: time.Second},
		{CPU: 1, CritMax: -time.Nanosecond},
	}}
	if err := s.Apply(m); !errors.Is(err, linuxerr.EINVAL) {
		t.Fatalf("Apply = %v, want EINVAL", err)
	}
	if got := m.Peek(0, PreemptMax); got != (linux.Timespec{}) {
		t.Errorf("failed Apply recorded %+v for CPU 0", got)
	}
}

func TestTakeSnapshot(t *testing.T) {
	m := newTestMonitor(t, 3)
	m.RecordDuration(0, PreemptMax, 1500*time.Millisecond)
	m.RecordDuration(2, CritSectionMax, 2250*time.Millisecond)

	s := TakeSnapshot(m)
	want := &Snapshot{CPUs: []CPUSnapshot{
		{CPU: 0, PreemptMax: 1500 * time.Millisecond},
		{CPU: 2, CritMax: 2250 * time.Millisecond},
	}}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("TakeSnapshot mismatch (-want +got):\n%s", diff)
	}
	if got, want := m.Peek(0, PreemptMax), (linux.Timespec{Sec: 1, Nsec: 500_000_000}); got != want {
		t.Errorf("TakeSnapshot cleared a mark: Peek(0, %v) = %+v, want %+v", PreemptMax, got, want)
	}

	var b strings.Builder
	if err := s.Save(&b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadSnapshot(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("LoadSnapshot(%q): %v", b.String(), err)
	}
	if diff := cmp.Diff(want, loaded); diff != "" {
		t.Errorf("saved snapshot %q reloads differently (-want +got):\n%s", b.String(), diff)
	}
}

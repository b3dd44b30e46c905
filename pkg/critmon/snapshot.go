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
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gvisor.dev/critmon/pkg/abi/linux"
	"gvisor.dev/critmon/pkg/errors/linuxerr"
)

// Snapshot is a set of marks to seed a Monitor with, e.g.
//
//	cpus:
//	- cpu: 0
//	  preempt_max: 1.5s
//	- cpu: 1
//	  crit_max: 2.25s
type Snapshot struct {
	CPUs []CPUSnapshot `yaml:"cpus"`
}

// CPUSnapshot holds the marks for one CPU. Zero values leave the mark
// unchanged.
type CPUSnapshot struct {
	CPU        int           `yaml:"cpu"`
	PreemptMax time.Duration `yaml:"preempt_max,omitempty"`
	CritMax    time.Duration `yaml:"crit_max,omitempty"`
}

// TakeSnapshot returns the current marks of m without clearing them. CPUs
// without any mark are left out. Marks beyond the range of time.Duration are
// capped.
func TakeSnapshot(m *Monitor) *Snapshot {
	s := &Snapshot{}
	for cpu := 0; cpu < m.NumCPUs(); cpu++ {
		c := CPUSnapshot{
			CPU:        cpu,
			PreemptMax: m.Peek(cpu, PreemptMax).ToDuration(),
			CritMax:    m.Peek(cpu, CritSectionMax).ToDuration(),
		}
		if c.PreemptMax != 0 || c.CritMax != 0 {
			s.CPUs = append(s.CPUs, c)
		}
	}
	return s
}

// Save encodes s to w in the format read by LoadSnapshot.
func (s *Snapshot) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return enc.Close()
}

// SaveFile writes s to path, replacing any existing file.
func (s *Snapshot) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// LoadSnapshot decodes a Snapshot from r. Unknown keys are an error. An empty
// document yields an empty Snapshot.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	s := &Snapshot{}
	if err := dec.Decode(s); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return s, nil
}

// LoadSnapshotFile decodes the Snapshot stored at path.
func LoadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := LoadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Apply records every mark in s into m. Nothing is recorded unless every
// entry names a CPU tracked by m and carries non-negative durations;
// otherwise Apply returns EINVAL.
func (s *Snapshot) Apply(m *Monitor) error {
	for _, c := range s.CPUs {
		if c.CPU < 0 || c.CPU >= m.NumCPUs() {
			return fmt.Errorf("snapshot CPU %d out of range [0, %d): %w", c.CPU, m.NumCPUs(), linuxerr.EINVAL)
		}
		if !linux.DurationToTimespec(c.PreemptMax).Valid() || !linux.DurationToTimespec(c.CritMax).Valid() {
			return fmt.Errorf("snapshot CPU %d has a negative duration: %w", c.CPU, linuxerr.EINVAL)
		}
	}
	for _, c := range s.CPUs {
		m.RecordDuration(c.CPU, PreemptMax, c.PreemptMax)
		m.RecordDuration(c.CPU, CritSectionMax, c.CritMax)
	}
	return nil
}

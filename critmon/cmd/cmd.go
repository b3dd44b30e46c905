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

// Package cmd holds implementations of the critmon commands.
package cmd

import (
	"fmt"

	"gvisor.dev/critmon/critmon/config"
	"gvisor.dev/critmon/pkg/critmon"
	"gvisor.dev/critmon/pkg/log"
	"gvisor.dev/critmon/pkg/procfs"
)

// node is the critmon file together with the monitor backing it.
type node struct {
	monitor  *critmon.Monitor
	critmon  *procfs.Critmon
	registry *procfs.Registry
}

// newNode builds the monitor and file described by conf. If snapshot is not
// empty, the monitor is seeded with the marks in that YAML file.
func newNode(conf *config.Config, snapshot string) (*node, error) {
	m, err := critmon.NewMonitor(conf.NumCPUs, conf.Clock())
	if err != nil {
		return nil, err
	}
	if snapshot != "" {
		s, err := critmon.LoadSnapshotFile(snapshot)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		if err := s.Apply(m); err != nil {
			return nil, fmt.Errorf("applying snapshot %q: %w", snapshot, err)
		}
		log.Infof("Seeded %d CPUs from %q", len(s.CPUs), snapshot)
	}
	c := procfs.NewCritmon(procfs.CritmonOptions{
		Source:     m,
		Columns:    conf.Columns(),
		MaxHandles: conf.MaxHandles,
	})
	r := procfs.NewRegistry()
	if err := r.Register(procfs.CritmonName, c); err != nil {
		return nil, err
	}
	return &node{monitor: m, critmon: c, registry: r}, nil
}

// saveMarks writes the current marks of n to the YAML file at path without
// clearing them.
func (n *node) saveMarks(path string) error {
	s := critmon.TakeSnapshot(n.monitor)
	if err := s.SaveFile(path); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	log.Infof("Saved marks of %d CPUs to %q", len(s.CPUs), path)
	return nil
}

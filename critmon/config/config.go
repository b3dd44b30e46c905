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

// Package config provides basic infrastructure to set configuration settings
// for critmon. Each setting that can be changed from the command line must
// have a corresponding flag, registered in flags.go, and a field in Config
// tagged with the flag name.
package config

import (
	"fmt"

	"gvisor.dev/critmon/pkg/critmon"
	"gvisor.dev/critmon/pkg/log"
)

// Config holds configuration that is not part of the critmon file itself.
type Config struct {
	// LogFilename is the filename to log to, if not empty.
	LogFilename string `flag:"log"`

	// LogFormat is the log format: "text" or "json".
	LogFormat string `flag:"log-format"`

	// Debug indicates that debug logging should be enabled.
	Debug bool `flag:"debug"`

	// AlsoLogToStderr allows log messages to be sent to stderr.
	AlsoLogToStderr bool `flag:"alsologtostderr"`

	// NumCPUs is the number of CPUs the monitor tracks.
	NumCPUs int `flag:"ncpus"`

	// PreemptMax enables the maximum preemption-disabled time column.
	PreemptMax bool `flag:"preempt-max"`

	// CritSectionMax enables the maximum critical section time column.
	CritSectionMax bool `flag:"crit-max"`

	// PerfFrequency is the rate, in Hz, of the counter marks are recorded
	// in.
	PerfFrequency uint64 `flag:"perf-frequency"`

	// MaxHandles bounds the number of open handles on the critmon file. Zero
	// means unbounded.
	MaxHandles int64 `flag:"max-handles"`

	// ConfigFile is a TOML file whose [flags] table supplies values for flags
	// not given on the command line.
	ConfigFile string `flag:"config"`
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, must be 'text' or 'json'", c.LogFormat)
	}
	if c.NumCPUs <= 0 {
		return fmt.Errorf("ncpus must be positive, got %d", c.NumCPUs)
	}
	if err := c.Clock().Validate(); err != nil {
		return fmt.Errorf("perf-frequency must be positive: %w", err)
	}
	if c.MaxHandles < 0 {
		return fmt.Errorf("max-handles must not be negative, got %d", c.MaxHandles)
	}
	return nil
}

// Columns returns the marks the critmon file reports.
func (c *Config) Columns() critmon.Columns {
	return critmon.Columns{
		PreemptMax:     c.PreemptMax,
		CritSectionMax: c.CritSectionMax,
	}
}

// Clock returns the perf counter clock marks are recorded against.
func (c *Config) Clock() critmon.PerfClock {
	return critmon.PerfClock{Frequency: c.PerfFrequency}
}

// Log logs important aspects of the configuration to the given log function.
func (c *Config) Log() {
	log.Infof("Config:")
	for _, f := range c.ToFlags() {
		log.Infof("\t%s", f)
	}
	log.Infof("\tcolumns: %v, clock: %d Hz", c.Columns(), c.PerfFrequency)
}

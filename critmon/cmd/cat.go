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

package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
	"gvisor.dev/critmon/critmon/cmd/util"
	"gvisor.dev/critmon/critmon/config"
	"gvisor.dev/critmon/pkg/abi/linux"
	"gvisor.dev/critmon/pkg/critmon"
	"gvisor.dev/critmon/pkg/procfs"
)

// Cat implements subcommands.Command for the "cat" command.
type Cat struct {
	bufSize       int
	snapshot      string
	saveSnapshot  string
	probe         time.Duration
	probeInterval time.Duration
}

// Name implements subcommands.Command.Name.
func (*Cat) Name() string {
	return "cat"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Cat) Synopsis() string {
	return "print the critmon file"
}

// Usage implements subcommands.Command.Usage.
func (*Cat) Usage() string {
	return `cat [flags] - read the critmon file to the end and print it.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *Cat) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.bufSize, "bufsize", 4096, "size in bytes of each read.")
	f.StringVar(&c.snapshot, "snapshot", "", "YAML file of marks to seed the monitor with.")
	f.StringVar(&c.saveSnapshot, "save-snapshot", "", "YAML file to save the marks to before they are read, and so cleared.")
	f.DurationVar(&c.probe, "probe", 0, "run the latency probe for this long before reading.")
	f.DurationVar(&c.probeInterval, "probe-interval", critmon.DefaultProbeInterval, "probe sleep interval.")
}

// Execute implements subcommands.Command.Execute.
func (c *Cat) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	if err := c.run(ctx, conf, os.Stdout); err != nil {
		return util.Errorf("cat: %v", err)
	}
	return subcommands.ExitSuccess
}

func (c *Cat) run(ctx context.Context, conf *config.Config, out io.Writer) error {
	if c.bufSize < 1 {
		return fmt.Errorf("bufsize must be positive, got %d", c.bufSize)
	}
	n, err := newNode(conf, c.snapshot)
	if err != nil {
		return err
	}
	if c.probe > 0 {
		probeCtx, cancel := context.WithTimeout(ctx, c.probe)
		defer cancel()
		p := &critmon.Probe{Monitor: n.monitor, Interval: c.probeInterval}
		if err := p.Run(probeCtx); err != nil {
			return fmt.Errorf("running probe: %w", err)
		}
	}
	if c.saveSnapshot != "" {
		if err := n.saveMarks(c.saveSnapshot); err != nil {
			return err
		}
	}

	file, err := n.registry.Open(ctx, procfs.CritmonName, linux.O_RDONLY)
	if err != nil {
		return fmt.Errorf("opening %s: %w", procfs.CritmonName, err)
	}
	defer file.Close(ctx)

	buf := make([]byte, c.bufSize)
	for {
		nr, err := file.Read(ctx, buf)
		if err != nil {
			return fmt.Errorf("reading %s: %w", procfs.CritmonName, err)
		}
		if nr == 0 {
			return nil
		}
		if _, err := out.Write(buf[:nr]); err != nil {
			return err
		}
	}
}

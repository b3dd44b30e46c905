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

	"github.com/google/subcommands"
	"gvisor.dev/critmon/critmon/cmd/util"
	"gvisor.dev/critmon/critmon/config"
)

// Stat implements subcommands.Command for the "stat" command.
type Stat struct{}

// Name implements subcommands.Command.Name.
func (*Stat) Name() string {
	return "stat"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Stat) Synopsis() string {
	return "print the attributes of the critmon file"
}

// Usage implements subcommands.Command.Usage.
func (*Stat) Usage() string {
	return `stat - print the mode, link count and size of each served file.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Stat) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (s *Stat) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	if err := s.run(ctx, conf, os.Stdout); err != nil {
		return util.Errorf("stat: %v", err)
	}
	return subcommands.ExitSuccess
}

func (*Stat) run(ctx context.Context, conf *config.Config, out io.Writer) error {
	n, err := newNode(conf, "")
	if err != nil {
		return err
	}
	for _, name := range n.registry.Names() {
		stat, err := n.registry.Stat(ctx, name)
		if err != nil {
			return fmt.Errorf("stat %s: %w", name, err)
		}
		if _, err := fmt.Fprintf(out, "%s\tmode=%v\tnlink=%d\tsize=%d\n", name, stat.Mode, stat.Nlink, stat.Size); err != nil {
			return err
		}
	}
	return nil
}

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
	"os/signal"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"gvisor.dev/critmon/critmon/cmd/util"
	"gvisor.dev/critmon/critmon/config"
	"gvisor.dev/critmon/pkg/cleanup"
	"gvisor.dev/critmon/pkg/critmon"
	"gvisor.dev/critmon/pkg/fusefs"
	"gvisor.dev/critmon/pkg/log"
	"gvisor.dev/critmon/pkg/procfs"
)

// Mount implements subcommands.Command for the "mount" command.
type Mount struct {
	probe         bool
	probeInterval time.Duration
	snapshot      string
	saveSnapshot  string
	allowOther    bool
	fuseDebug     bool
}

// Name implements subcommands.Command.Name.
func (*Mount) Name() string {
	return "mount"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Mount) Synopsis() string {
	return "serve the critmon file over FUSE"
}

// Usage implements subcommands.Command.Usage.
func (*Mount) Usage() string {
	return `mount [flags] <mountpoint> - serve the critmon file at <mountpoint>/critmon until interrupted.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (m *Mount) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&m.probe, "probe", false, "record wake-up latency with the latency probe while mounted.")
	f.DurationVar(&m.probeInterval, "probe-interval", critmon.DefaultProbeInterval, "probe sleep interval.")
	f.StringVar(&m.snapshot, "snapshot", "", "YAML file of marks to seed the monitor with.")
	f.StringVar(&m.saveSnapshot, "save-snapshot", "", "YAML file to save the unread marks to on unmount, for a later -snapshot.")
	f.BoolVar(&m.allowOther, "allow-other", false, "allow other users to access the mount. Requires user_allow_other in /etc/fuse.conf.")
	f.BoolVar(&m.fuseDebug, "fuse-debug", false, "trace FUSE requests.")
}

// Execute implements subcommands.Command.Execute.
func (m *Mount) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	mountpoint := f.Arg(0)
	conf := args[0].(*config.Config)

	n, err := newNode(conf, m.snapshot)
	if err != nil {
		return util.Errorf("mount: %v", err)
	}
	server, err := fusefs.Mount(fusefs.Options{
		Mountpoint: mountpoint,
		Registry:   n.registry,
		AllowOther: m.allowOther,
		Debug:      m.fuseDebug,
	})
	if err != nil {
		return util.Errorf("mount: %v", err)
	}
	cu := cleanup.Make(func() {
		if err := server.Unmount(); err != nil {
			log.Warningf("Unmounting %s: %v", mountpoint, err)
		}
	})
	defer cu.Clean()
	util.Infof("Serving %s at %s", procfs.CritmonName, mountpoint)

	ctx, stop := signal.NotifyContext(ctx, unix.SIGINT, unix.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	probeCtx, cancelProbe := context.WithCancel(ctx)
	defer cancelProbe()
	served := make(chan struct{})

	g.Go(func() error {
		server.Wait()
		close(served)
		cancelProbe()
		return nil
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			log.Infof("Unmounting %s", mountpoint)
			return server.Unmount()
		case <-served:
			return nil
		}
	})
	if m.probe {
		p := &critmon.Probe{Monitor: n.monitor, Interval: m.probeInterval}
		g.Go(func() error {
			return p.Run(probeCtx)
		})
	}

	err = g.Wait()
	// server.Wait has returned, so the filesystem is already unmounted.
	cu.Release()
	if err != nil {
		return util.Errorf("mount: %v", err)
	}
	log.Infof("Served %s; %d handles still open", mountpoint, n.critmon.OpenHandles())
	if m.saveSnapshot != "" {
		if err := n.saveMarks(m.saveSnapshot); err != nil {
			return util.Errorf("mount: %v", err)
		}
		util.Infof("Saved marks to %s", m.saveSnapshot)
	}
	return subcommands.ExitSuccess
}

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
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gvisor.dev/critmon/pkg/hostcpu"
	"gvisor.dev/critmon/pkg/log"
)

// DefaultProbeInterval is the probe sleep interval used when none is given.
const DefaultProbeInterval = time.Millisecond

// Probe approximates scheduling latency from user space. One worker runs per
// tracked CPU, sleeps for Interval, and records how late it woke up as
// PreemptMax for that CPU.
type Probe struct {
	Monitor  *Monitor
	Interval time.Duration
}

// Run starts the workers and blocks until ctx is cancelled or a worker fails.
// It returns nil on cancellation.
func (p *Probe) Run(ctx context.Context) error {
	if err := probeSupported(); err != nil {
		return err
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	cpus := p.cpus()
	log.Infof("Starting latency probe on CPUs %v, interval %v", cpus, interval)

	g, ctx := errgroup.WithContext(ctx)
	for _, cpu := range cpus {
		cpu := cpu
		g.Go(func() error {
			return p.work(ctx, cpu, interval)
		})
	}
	return g.Wait()
}

// cpus returns the online CPUs tracked by the monitor, or every tracked CPU if
// the host does not say which are online.
func (p *Probe) cpus() []int {
	n := p.Monitor.NumCPUs()
	var cpus []int
	online, err := hostcpu.OnlineCPUs()
	if err != nil {
		log.Warningf("Reading online CPUs: %v, probing all %d", err, n)
	}
	for _, c := range online {
		if int(c) < n {
			cpus = append(cpus, int(c))
		}
	}
	if len(cpus) == 0 {
		for c := 0; c < n; c++ {
			cpus = append(cpus, c)
		}
	}
	return cpus
}

func (p *Probe) work(ctx context.Context, cpu int, interval time.Duration) error {
	// The thread is never unlocked, so it exits with the goroutine instead of
	// returning to the scheduler with a narrowed affinity.
	runtime.LockOSThread()
	if err := pinToCPU(cpu); err != nil {
		// Unpinned samples still measure wake-up latency, just not
		// attributed precisely.
		log.Warningf("Pinning probe to CPU %d: %v", cpu, err)
	}

	t := time.NewTimer(interval)
	defer t.Stop()
	for {
		start := time.Now()
		t.Reset(interval)
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
		if late := time.Since(start) - interval; late > 0 {
			if p.Monitor.RecordDuration(cpu, PreemptMax, late) {
				log.Debugf("CPU %d: new %v %v", cpu, PreemptMax, late)
			}
		}
	}
}

// String implements fmt.Stringer.
func (p *Probe) String() string {
	return fmt.Sprintf("probe{cpus=%d, interval=%v}", p.Monitor.NumCPUs(), p.Interval)
}

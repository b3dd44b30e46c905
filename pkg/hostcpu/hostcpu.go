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

// Package hostcpu provides utilities for working with CPU information provided
// by a host Linux kernel.
package hostcpu

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gvisor.dev/critmon/pkg/errors/linuxerr"
)

const (
	possiblePath = "/sys/devices/system/cpu/possible"
	onlinePath   = "/sys/devices/system/cpu/online"
)

// maxCPUs is the largest CONFIG_NR_CPUS Linux accepts. CPU numbers in a
// bitmap list are below it.
const maxCPUs = 8192

// MaxPossibleCPU returns the highest possible CPU number, which is guaranteed
// not to change for the lifetime of the host kernel.
func MaxPossibleCPU() (uint32, error) {
	cpus, err := readCPUList(possiblePath)
	if err != nil {
		return 0, err
	}
	return cpus[len(cpus)-1], nil
}

// OnlineCPUs returns the CPU numbers the host kernel reports as online, in
// ascending order.
func OnlineCPUs() ([]uint32, error) {
	return readCPUList(onlinePath)
}

// NumCPUs returns the number of CPU slots a per-CPU table needs on this host:
// one more than the highest possible CPU number. If sysfs is unavailable it
// falls back to runtime.NumCPU.
func NumCPUs() int {
	max, err := MaxPossibleCPU()
	if err != nil {
		return runtime.NumCPU()
	}
	return int(max) + 1
}

func readCPUList(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Linux: drivers/base/cpu.c:show_cpus_attr() =>
	// include/linux/cpumask.h:cpumask_print_to_pagebuf() =>
	// lib/bitmap.c:bitmap_print_to_pagebuf()
	cpus, err := parseLinuxBitmapList(string(data))
	if err != nil {
		return nil, fmt.Errorf("invalid %s (%q): %w", path, data, err)
	}
	return cpus, nil
}

// parseLinuxBitmapList returns the values specified in str, which is a string
// emitted by Linux's lib/bitmap.c:bitmap_print_to_pagebuf(list=true), e.g.
// "0-3,8-11". Values are returned in the order they appear, which is
// ascending for well-formed input. CPU numbers of maxCPUs or more, or lists
// naming more than maxCPUs CPUs, are rejected with EINVAL.
func parseLinuxBitmapList(str string) ([]uint32, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, fmt.Errorf("empty list")
	}
	var cpus []uint32
	for _, part := range strings.Split(str, ",") {
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.ParseUint(lo, 10, 32)
		if err != nil {
			return nil, err
		}
		last := first
		if isRange {
			if last, err = strconv.ParseUint(hi, 10, 32); err != nil {
				return nil, err
			}
			if last < first {
				return nil, fmt.Errorf("descending range %q", part)
			}
		}
		if last >= maxCPUs {
			return nil, fmt.Errorf("CPU %d in %q exceeds the limit of %d CPUs: %w", last, part, maxCPUs, linuxerr.EINVAL)
		}
		if len(cpus)+int(last-first+1) > maxCPUs {
			return nil, fmt.Errorf("list names more than %d CPUs: %w", maxCPUs, linuxerr.EINVAL)
		}
		for c := first; c <= last; c++ {
			cpus = append(cpus, uint32(c))
		}
	}
	return cpus, nil
}

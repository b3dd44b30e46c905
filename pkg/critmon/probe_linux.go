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

//go:build linux
// +build linux

package critmon

import (
	"golang.org/x/sys/unix"
	"gvisor.dev/critmon/pkg/errors/linuxerr"
)

func probeSupported() error {
	return nil
}

// pinToCPU binds the calling thread to cpu.
//
// Preconditions: the calling goroutine is locked to its thread.
func pinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		if errno, ok := err.(unix.Errno); ok {
			return linuxerr.ErrorFromUnix(errno)
		}
		return err
	}
	return nil
}

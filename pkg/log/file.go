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

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileOpts contains options for creating a log file.
type FileOpts interface {
	// Build constructs the log file path based on the given pattern.
	Build(logPattern string) string
}

// CommandFileOpts expands the placeholders of a log pattern:
//
//	%COMMAND%  the subcommand name
//	%PID%      PID, or the current process id when PID is zero
type CommandFileOpts struct {
	Command string
	PID     int
}

// Build implements FileOpts.Build.
func (o CommandFileOpts) Build(logPattern string) string {
	pid := o.PID
	if pid == 0 {
		pid = os.Getpid()
	}
	return strings.NewReplacer(
		"%COMMAND%", o.Command,
		"%PID%", strconv.Itoa(pid),
	).Replace(logPattern)
}

// OpenFile creates the directory of the expanded pattern and opens the log
// file in it with flags. An empty pattern means no log file: (nil, nil).
func OpenFile(logPattern string, flags int, opts FileOpts) (*os.File, error) {
	if logPattern == "" {
		return nil, nil
	}
	path := opts.Build(logPattern)
	if err := os.MkdirAll(filepath.Dir(path), 0775); err != nil {
		return nil, fmt.Errorf("creating log directory for %q: %w", path, err)
	}
	f, err := os.OpenFile(path, flags, 0664)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", path, err)
	}
	return f, nil
}

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
	"os"
	"path/filepath"
	"testing"
)

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "logs", "critmon.%COMMAND%.log")
	f, err := OpenFile(pattern, os.O_WRONLY|os.O_CREATE|os.O_APPEND, CommandFileOpts{Command: "cat"})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if want := filepath.Join(dir, "logs", "critmon.cat.log"); f.Name() != want {
		t.Errorf("OpenFile created %q, want %q", f.Name(), want)
	}

	if got, want := (CommandFileOpts{Command: "mount", PID: 42}).Build("/tmp/%COMMAND%-%PID%.log"), "/tmp/mount-42.log"; got != want {
		t.Errorf("Build = %q, want %q", got, want)
	}

	f, err = OpenFile("", os.O_WRONLY, CommandFileOpts{})
	if f != nil || err != nil {
		t.Errorf("OpenFile(\"\") = (%v, %v), want (nil, nil)", f, err)
	}
}
